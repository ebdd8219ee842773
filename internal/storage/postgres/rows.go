package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ijo-project/ijo-backend/internal/model"
)

const accountColumns = `id, email, password_hash, full_name, school_class, role, status, language,
	coins, tickets, game_scores, total_score, companion_id, created_at, updated_at`

const itemColumns = `id, owner_id, type, name, personality, level, current_xp, next_level_xp,
	last_check_in_at, streak_days, created_at`

type accountRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FullName     string         `db:"full_name"`
	SchoolClass  string         `db:"school_class"`
	Role         string         `db:"role"`
	Status       string         `db:"status"`
	Language     string         `db:"language"`
	Coins        int            `db:"coins"`
	Tickets      int            `db:"tickets"`
	GameScores   string         `db:"game_scores"`
	TotalScore   int            `db:"total_score"`
	CompanionID  sql.NullString `db:"companion_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func newAccountRow(a *model.Account) (*accountRow, error) {
	scores, err := json.Marshal(a.GameScores)
	if err != nil {
		return nil, err
	}
	return &accountRow{
		ID:           string(a.ID),
		Email:        model.NormalizeEmail(a.Email),
		PasswordHash: a.PasswordHash,
		FullName:     a.FullName,
		SchoolClass:  a.SchoolClass,
		Role:         string(a.Role),
		Status:       string(a.Status),
		Language:     a.Language,
		Coins:        a.Coins,
		Tickets:      a.Tickets,
		GameScores:   string(scores),
		TotalScore:   a.TotalScore,
		CompanionID:  sql.NullString{String: string(a.CompanionID), Valid: a.CompanionID != ""},
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}, nil
}

func (r *accountRow) toModel() (*model.Account, error) {
	scores := model.NewGameScores()
	if r.GameScores != "" {
		if err := json.Unmarshal([]byte(r.GameScores), &scores); err != nil {
			return nil, err
		}
	}
	return &model.Account{
		ID:           model.AccountID(r.ID),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		SchoolClass:  r.SchoolClass,
		Role:         model.Role(r.Role),
		Status:       model.Status(r.Status),
		Language:     r.Language,
		Coins:        r.Coins,
		Tickets:      r.Tickets,
		GameScores:   scores,
		TotalScore:   r.TotalScore,
		CompanionID:  model.ItemID(r.CompanionID.String),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

type itemRow struct {
	ID            string       `db:"id"`
	OwnerID       string       `db:"owner_id"`
	Type          string       `db:"type"`
	Name          string       `db:"name"`
	Personality   string       `db:"personality"`
	Level         int          `db:"level"`
	CurrentXP     int          `db:"current_xp"`
	NextLevelXP   int          `db:"next_level_xp"`
	LastCheckInAt sql.NullTime `db:"last_check_in_at"`
	StreakDays    int          `db:"streak_days"`
	CreatedAt     time.Time    `db:"created_at"`
}

func newItemRow(i *model.Item) *itemRow {
	row := &itemRow{
		ID:          string(i.ID),
		OwnerID:     string(i.OwnerID),
		Type:        string(i.Type),
		Name:        i.Name,
		Personality: i.Personality,
		Level:       i.Level,
		CurrentXP:   i.CurrentXP,
		NextLevelXP: i.NextLevelXP,
		StreakDays:  i.StreakDays,
		CreatedAt:   i.CreatedAt,
	}
	if i.LastCheckInAt != nil {
		row.LastCheckInAt = sql.NullTime{Time: *i.LastCheckInAt, Valid: true}
	}
	return row
}

func (r *itemRow) toModel() *model.Item {
	item := &model.Item{
		ID:          model.ItemID(r.ID),
		OwnerID:     model.AccountID(r.OwnerID),
		Type:        model.ItemType(r.Type),
		Name:        r.Name,
		Personality: r.Personality,
		Level:       r.Level,
		CurrentXP:   r.CurrentXP,
		NextLevelXP: r.NextLevelXP,
		StreakDays:  r.StreakDays,
		CreatedAt:   r.CreatedAt,
	}
	if r.LastCheckInAt.Valid {
		t := r.LastCheckInAt.Time
		item.LastCheckInAt = &t
	}
	return item
}

type contentRow struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
