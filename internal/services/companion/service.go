package companion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ijo-project/ijo-backend/internal/dependencies/clock"
	"github.com/ijo-project/ijo-backend/internal/dependencies/random"
	"github.com/ijo-project/ijo-backend/internal/metrics"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

// CheckInXP is the experience gained per daily check-in
const CheckInXP = 15

// CheckInResult summarises a daily check-in
type CheckInResult struct {
	Message     string
	GainedXP    int
	LevelUp     bool
	Level       int
	CurrentXP   int
	NextLevelXP int
	StreakDays  int
}

// Service lets a student adopt one companion and raise it with daily check-ins
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new companion Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// Choose creates the account's companion. An account can only ever have one.
func (s *Service) Choose(ctx context.Context, owner model.AccountID, itemType model.ItemType, name, personality string) (*model.Item, error) {
	if !itemType.IsValid() {
		return nil, model.ErrInvalidItemType
	}
	name = strings.TrimSpace(name)
	personality = strings.TrimSpace(personality)
	if name == "" || personality == "" {
		return nil, model.ErrInvalidItem
	}

	item := model.NewItem(model.ItemID(s.random.ID("itm_")), owner, itemType, name, personality, s.clock.Now())
	if err := s.storage.CreateItemForAccount(ctx, item); err != nil {
		return nil, err
	}

	metrics.RecordCompanionChosen(string(itemType))
	s.logger.Info("companion chosen",
		slog.String("account_id", string(owner)),
		slog.String("item_id", string(item.ID)),
		slog.String("type", string(itemType)),
	)
	return item, nil
}

// Get returns the account's companion
func (s *Service) Get(ctx context.Context, owner model.AccountID) (*model.Item, error) {
	account, err := s.storage.GetAccount(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !account.HasCompanion() {
		return nil, model.ErrNoCompanion
	}
	return s.storage.GetItem(ctx, account.CompanionID)
}

// CheckIn grants CheckInXP once per calendar day, in the clock's time zone
func (s *Service) CheckIn(ctx context.Context, owner model.AccountID) (*CheckInResult, error) {
	account, err := s.storage.GetAccount(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !account.HasCompanion() {
		return nil, model.ErrNoCompanion
	}

	now := s.clock.Now()
	var levelUp bool
	item, err := s.storage.UpdateItem(ctx, account.CompanionID, func(i *model.Item) error {
		if i.LastCheckInAt != nil && sameDay(*i.LastCheckInAt, now) {
			return model.ErrAlreadyCheckedIn
		}
		i.StreakDays = nextStreak(i, now)
		levelUp = addXP(i, CheckInXP)
		checkedIn := now
		i.LastCheckInAt = &checkedIn
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrItemNotFound) {
			return nil, model.ErrNoCompanion
		}
		return nil, err
	}

	metrics.RecordCheckIn(levelUp)
	s.logger.Info("companion checked in",
		slog.String("account_id", string(owner)),
		slog.String("item_id", string(item.ID)),
		slog.Int("level", item.Level),
		slog.Bool("level_up", levelUp),
		slog.Int("streak_days", item.StreakDays),
	)

	return &CheckInResult{
		Message:     "Check-in succeeded",
		GainedXP:    CheckInXP,
		LevelUp:     levelUp,
		Level:       item.Level,
		CurrentXP:   item.CurrentXP,
		NextLevelXP: item.NextLevelXP,
		StreakDays:  item.StreakDays,
	}, nil
}

// addXP adds xp and levels up as long as the threshold is met. Each level needs
// half again as much XP as the previous one, rounded down.
func addXP(i *model.Item, xp int) bool {
	levelUp := false
	i.CurrentXP += xp
	for i.NextLevelXP > 0 && i.CurrentXP >= i.NextLevelXP {
		i.Level++
		i.CurrentXP -= i.NextLevelXP
		i.NextLevelXP = i.NextLevelXP * 3 / 2
		levelUp = true
	}
	return levelUp
}

// nextStreak continues the streak when the previous check-in was yesterday
func nextStreak(i *model.Item, now time.Time) int {
	if i.LastCheckInAt != nil && sameDay(*i.LastCheckInAt, now.AddDate(0, 0, -1)) {
		return i.StreakDays + 1
	}
	return 1
}

// sameDay compares calendar dates in ref's location
func sameDay(t, ref time.Time) bool {
	t = t.In(ref.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
