package response

import (
	"encoding/json"
	"time"

	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/services/auth"
	"github.com/ijo-project/ijo-backend/internal/services/companion"
	"github.com/ijo-project/ijo-backend/internal/services/games"
	"github.com/ijo-project/ijo-backend/internal/services/scan"
)

// Item represents a companion in API responses
type Item struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"ownerId"`
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Personality   string     `json:"personality"`
	Level         int        `json:"level"`
	CurrentXP     int        `json:"currentXp"`
	NextLevelXP   int        `json:"nextLevelXp"`
	LastCheckInAt *time.Time `json:"lastCheckInAt"`
	StreakDays    int        `json:"streakDays"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ItemFromModel converts a model.Item to a response Item
func ItemFromModel(i *model.Item) Item {
	return Item{
		ID:            string(i.ID),
		OwnerID:       string(i.OwnerID),
		Type:          string(i.Type),
		Name:          i.Name,
		Personality:   i.Personality,
		Level:         i.Level,
		CurrentXP:     i.CurrentXP,
		NextLevelXP:   i.NextLevelXP,
		LastCheckInAt: i.LastCheckInAt,
		StreakDays:    i.StreakDays,
		CreatedAt:     i.CreatedAt,
	}
}

// Account represents an account in API responses. The password hash is never exposed.
type Account struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	FullName    string         `json:"fullName"`
	SchoolClass string         `json:"schoolClass"`
	Role        string         `json:"role"`
	Status      string         `json:"status"`
	Language    string         `json:"language"`
	Coins       int            `json:"coins"`
	Tickets     int            `json:"tickets"`
	GameScores  map[string]int `json:"gameScores"`
	TotalScore  int            `json:"totalScore"`
	ActiveItem  *string        `json:"activeItem"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	var activeItem *string
	if a.HasCompanion() {
		id := string(a.CompanionID)
		activeItem = &id
	}
	return Account{
		ID:          string(a.ID),
		Email:       a.Email,
		FullName:    a.FullName,
		SchoolClass: a.SchoolClass,
		Role:        string(a.Role),
		Status:      string(a.Status),
		Language:    a.Language,
		Coins:       a.Coins,
		Tickets:     a.Tickets,
		GameScores:  a.GameScores,
		TotalScore:  a.TotalScore,
		ActiveItem:  activeItem,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromModel converts a list of accounts
func AccountsFromModel(accounts []*model.Account) []Account {
	out := make([]Account, len(accounts))
	for i, a := range accounts {
		out[i] = AccountFromModel(a)
	}
	return out
}

// Profile is an account with its companion expanded
type Profile struct {
	Account
	Companion *Item `json:"companion"`
}

// ProfileFromService converts an auth.Profile
func ProfileFromService(p *auth.Profile) Profile {
	var item *Item
	if p.Companion != nil {
		i := ItemFromModel(p.Companion)
		item = &i
	}
	return Profile{Account: AccountFromModel(p.Account), Companion: item}
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Message     string    `json:"message"`
	AccessToken string    `json:"accessToken"`
	Role        string    `json:"role"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// LoginResponseFromSession creates a LoginResponse from a session
func LoginResponseFromSession(s *auth.Session) LoginResponse {
	return LoginResponse{
		Message:     "Login succeeded",
		AccessToken: s.Token,
		Role:        string(s.Account.Role),
		ExpiresAt:   s.ExpiresAt,
	}
}

// ScanResponse is returned after a scan is rewarded
type ScanResponse struct {
	Message        string `json:"message"`
	Category       string `json:"category"`
	Reward         string `json:"reward"`
	RewardCoins    int    `json:"rewardCoins"`
	NewCoinBalance int    `json:"newCoinBalance"`
	Tickets        int    `json:"tickets"`
	TicketMinted   bool   `json:"ticketMinted"`
}

// ScanResponseFromResult converts a scan.Result
func ScanResponseFromResult(r *scan.Result) ScanResponse {
	return ScanResponse{
		Message:        r.Message,
		Category:       r.Category,
		Reward:         r.Reward,
		RewardCoins:    r.RewardCoins,
		NewCoinBalance: r.NewCoinBalance,
		Tickets:        r.Tickets,
		TicketMinted:   r.TicketMinted,
	}
}

// StartGameResponse is returned when a ticket is spent
type StartGameResponse struct {
	Message          string `json:"message"`
	RemainingTickets int    `json:"remainingTickets"`
}

// StartGameResponseFromResult converts a games.StartResult
func StartGameResponseFromResult(r *games.StartResult) StartGameResponse {
	return StartGameResponse{Message: r.Message, RemainingTickets: r.RemainingTickets}
}

// ScoreResponse is returned after a score is reported
type ScoreResponse struct {
	Message          string `json:"message"`
	GameType         string `json:"gameType"`
	YourScore        int    `json:"yourScore"`
	NewRecord        bool   `json:"newRecord"`
	TotalGlobalScore int    `json:"totalGlobalScore"`
}

// ScoreResponseFromResult converts a games.ScoreResult
func ScoreResponseFromResult(r *games.ScoreResult) ScoreResponse {
	return ScoreResponse{
		Message:          r.Message,
		GameType:         r.GameType,
		YourScore:        r.YourScore,
		NewRecord:        r.NewRecord,
		TotalGlobalScore: r.TotalScore,
	}
}

// LeaderboardCompanion is the part of a companion shown on the leaderboard
type LeaderboardCompanion struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// LeaderboardEntry is one ranked student
type LeaderboardEntry struct {
	Rank        int                   `json:"rank"`
	ID          string                `json:"id"`
	FullName    string                `json:"fullName"`
	SchoolClass string                `json:"schoolClass"`
	Score       int                   `json:"score"`
	TotalScore  int                   `json:"totalScore"`
	GameScores  map[string]int        `json:"gameScores"`
	ActiveItem  *LeaderboardCompanion `json:"activeItem"`
	IsYou       bool                  `json:"isYou,omitempty"`
}

// LeaderboardFromEntries converts the ranked entries
func LeaderboardFromEntries(entries []*games.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		var c *LeaderboardCompanion
		if e.Companion != nil {
			c = &LeaderboardCompanion{Type: string(e.Companion.Type), Name: e.Companion.Name, Level: e.Companion.Level}
		}
		out[i] = LeaderboardEntry{
			Rank:        e.Rank,
			ID:          string(e.AccountID),
			FullName:    e.FullName,
			SchoolClass: e.SchoolClass,
			Score:       e.Score,
			TotalScore:  e.TotalScore,
			GameScores:  e.GameScores,
			ActiveItem:  c,
		}
	}
	return out
}

// CheckInResponse is returned after a daily check-in
type CheckInResponse struct {
	Message     string `json:"message"`
	GainedXP    int    `json:"gainedXp"`
	LevelUp     bool   `json:"levelUp"`
	Level       int    `json:"level"`
	CurrentXP   int    `json:"currentXp"`
	NextLevelXP int    `json:"nextLevelXp"`
	StreakDays  int    `json:"streakDays"`
}

// CheckInResponseFromResult converts a companion.CheckInResult
func CheckInResponseFromResult(r *companion.CheckInResult) CheckInResponse {
	return CheckInResponse{
		Message:     r.Message,
		GainedXP:    r.GainedXP,
		LevelUp:     r.LevelUp,
		Level:       r.Level,
		CurrentXP:   r.CurrentXP,
		NextLevelXP: r.NextLevelXP,
		StreakDays:  r.StreakDays,
	}
}

// StatusResponse is returned after an admin changes an account's status
type StatusResponse struct {
	Message string  `json:"message"`
	User    Account `json:"user"`
}

// ContentEntry is a stored CMS block
type ContentEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ContentEntryFromModel converts a model.ContentEntry
func ContentEntryFromModel(e *model.ContentEntry) ContentEntry {
	return ContentEntry{Key: e.Key, Value: e.Value, UpdatedAt: e.UpdatedAt}
}

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}
