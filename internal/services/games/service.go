package games

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ijo-project/ijo-backend/internal/dependencies/clock"
	"github.com/ijo-project/ijo-backend/internal/metrics"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

// LeaderboardLimit is the number of entries a leaderboard shows
const LeaderboardLimit = 10

// errNoRecord aborts a score update that would not raise the stored best
var errNoRecord = errors.New("score is not a new record")

// StartResult is returned when a ticket is spent
type StartResult struct {
	Message          string
	RemainingTickets int
}

// ScoreResult summarises a reported score
type ScoreResult struct {
	Message    string
	GameType   string
	YourScore  int
	NewRecord  bool
	TotalScore int
}

// CompanionSummary is the public view of a companion shown on leaderboards
type CompanionSummary struct {
	Type  model.ItemType
	Name  string
	Level int
}

// LeaderboardEntry is one ranked account
type LeaderboardEntry struct {
	Rank        int
	AccountID   model.AccountID
	FullName    string
	SchoolClass string
	Score       int
	TotalScore  int
	GameScores  map[string]int
	Companion   *CompanionSummary
}

// Service gates game sessions behind tickets and keeps best scores
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new games Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// StartGame spends one ticket
func (s *Service) StartGame(ctx context.Context, id model.AccountID) (*StartResult, error) {
	now := s.clock.Now()
	account, err := s.storage.UpdateAccount(ctx, id, func(a *model.Account) error {
		if a.Tickets < 1 {
			return model.ErrTicketsExhausted
		}
		a.Tickets--
		a.UpdatedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrTicketsExhausted) {
			metrics.RecordGameStart(false)
		}
		return nil, err
	}

	metrics.RecordGameStart(true)
	s.logger.Info("game started",
		slog.String("account_id", string(id)),
		slog.Int("remaining_tickets", account.Tickets),
	)
	return &StartResult{Message: "Game Start!", RemainingTickets: account.Tickets}, nil
}

// ReportScore keeps score as the best for gameType when it beats the stored best.
// The aggregate is always recomputed from the per-game map.
func (s *Service) ReportScore(ctx context.Context, id model.AccountID, gameType string, score int) (*ScoreResult, error) {
	if _, ok := model.LookupGameVariant(gameType); !ok {
		return nil, model.ErrUnknownGameVariant
	}
	if score < 0 || score > model.MaxScore {
		return nil, model.ErrInvalidScore
	}

	now := s.clock.Now()
	account, err := s.storage.UpdateAccount(ctx, id, func(a *model.Account) error {
		if score <= a.BestScore(gameType) {
			return errNoRecord
		}
		if a.GameScores == nil {
			a.GameScores = model.NewGameScores()
		}
		a.GameScores[gameType] = score
		a.RecomputeTotalScore()
		a.UpdatedAt = now
		return nil
	})

	newRecord := true
	if errors.Is(err, errNoRecord) {
		newRecord = false
		account, err = s.storage.GetAccount(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordScore(gameType, newRecord)
	message := "Score saved (no new record)"
	if newRecord {
		message = fmt.Sprintf("New high score for %s!", gameType)
		s.logger.Info("new high score",
			slog.String("account_id", string(id)),
			slog.String("game", gameType),
			slog.Int("score", score),
			slog.Int("total_score", account.TotalScore),
		)
	}

	return &ScoreResult{
		Message:    message,
		GameType:   gameType,
		YourScore:  score,
		NewRecord:  newRecord,
		TotalScore: account.TotalScore,
	}, nil
}

// Leaderboard ranks students by one game's best score, or by total score for
// model.LeaderboardAll and the empty string
func (s *Service) Leaderboard(ctx context.Context, gameType string) ([]*LeaderboardEntry, error) {
	if gameType == "" {
		gameType = model.LeaderboardAll
	}
	if gameType != model.LeaderboardAll {
		if _, ok := model.LookupGameVariant(gameType); !ok {
			return nil, model.ErrUnknownGameVariant
		}
	}

	accounts, err := s.storage.TopAccounts(ctx, storage.LeaderboardQuery{Variant: gameType, Limit: LeaderboardLimit})
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(accounts))
	for i, a := range accounts {
		companion, err := s.companionSummary(ctx, a)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &LeaderboardEntry{
			Rank:        i + 1,
			AccountID:   a.ID,
			FullName:    a.FullName,
			SchoolClass: a.SchoolClass,
			Score:       storage.ScoreFor(a, gameType),
			TotalScore:  a.TotalScore,
			GameScores:  a.GameScores,
			Companion:   companion,
		})
	}
	return entries, nil
}

// companionSummary resolves an account's companion; a dangling reference counts as none
func (s *Service) companionSummary(ctx context.Context, a *model.Account) (*CompanionSummary, error) {
	if !a.HasCompanion() {
		return nil, nil
	}
	item, err := s.storage.GetItem(ctx, a.CompanionID)
	if err != nil {
		if errors.Is(err, model.ErrItemNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &CompanionSummary{Type: item.Type, Name: item.Name, Level: item.Level}, nil
}
