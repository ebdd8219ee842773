package scan

import (
	"context"
	"log/slog"

	"github.com/ijo-project/ijo-backend/internal/dependencies/clock"
	"github.com/ijo-project/ijo-backend/internal/metrics"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

// Reward rules
const (
	// RewardCoins is credited for every reported scan
	RewardCoins = 10
	// TicketPrice is the coin balance converted into one game ticket
	TicketPrice = 30
	// RewardLabel is shown to the student after a scan
	RewardLabel = "+10 Coins"
)

// Result summarises a rewarded scan
type Result struct {
	Message        string
	Category       string
	Reward         string
	RewardCoins    int
	NewCoinBalance int
	Tickets        int
	TicketMinted   bool
}

// Service awards coins for sorted trash and converts coins into tickets
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new scan Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// ReportScan credits RewardCoins to the account. If the balance then reaches TicketPrice,
// exactly one ticket is minted per scan. The category is echoed back unchecked.
func (s *Service) ReportScan(ctx context.Context, id model.AccountID, category string) (*Result, error) {
	var minted bool
	now := s.clock.Now()
	account, err := s.storage.UpdateAccount(ctx, id, func(a *model.Account) error {
		minted = applyReward(a)
		a.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordScan(RewardCoins, minted)
	s.logger.Info("scan rewarded",
		slog.String("account_id", string(id)),
		slog.String("category", category),
		slog.Int("coins", account.Coins),
		slog.Int("tickets", account.Tickets),
		slog.Bool("ticket_minted", minted),
	)

	return &Result{
		Message:        "Trash sorted successfully!",
		Category:       category,
		Reward:         RewardLabel,
		RewardCoins:    RewardCoins,
		NewCoinBalance: account.Coins,
		Tickets:        account.Tickets,
		TicketMinted:   minted,
	}, nil
}

// applyReward adds the scan reward and performs at most one coin-to-ticket conversion
func applyReward(a *model.Account) bool {
	a.Coins += RewardCoins
	if a.Coins >= TicketPrice {
		a.Coins -= TicketPrice
		a.Tickets++
		return true
	}
	return false
}
