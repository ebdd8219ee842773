package model

import (
	"strings"
	"time"
)

// AccountID uniquely identifies an account across the system
type AccountID string

// Role is fixed when the account is created
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Status tracks the admin-driven approval lifecycle
type Status string

const (
	StatusPending  Status = "pending"  // Registered, waiting for an admin
	StatusActive   Status = "active"   // May use the system
	StatusRejected Status = "rejected" // Permanently blocked
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRejected:
		return true
	}
	return false
}

// DefaultLanguage is the UI language assigned to new accounts
const DefaultLanguage = "id"

// Account is a registered person together with their economy state
type Account struct {
	ID           AccountID
	Email        string // unique, normalised with NormalizeEmail
	PasswordHash string // bcrypt hash
	FullName     string
	SchoolClass  string
	Role         Role
	Status       Status
	Language     string

	// Economy
	Coins   int
	Tickets int

	// Scoring: best score per game variant, TotalScore is always their sum
	GameScores map[string]int
	TotalScore int

	// CompanionID is set once when the account chooses a companion
	CompanionID ItemID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount returns an account with zeroed economy and a score slot for every game variant
func NewAccount(id AccountID, email, passwordHash, fullName, schoolClass string, role Role, status Status, now time.Time) *Account {
	return &Account{
		ID:           id,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		FullName:     fullName,
		SchoolClass:  schoolClass,
		Role:         role,
		Status:       status,
		Language:     DefaultLanguage,
		GameScores:   NewGameScores(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasCompanion returns true if the account already owns an item
func (a *Account) HasCompanion() bool {
	return a.CompanionID != ""
}

// IsAdmin returns true for admin accounts
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// BestScore returns the stored best score for a variant, 0 if never played
func (a *Account) BestScore(variant string) int {
	return a.GameScores[variant]
}

// RecomputeTotalScore sets TotalScore to the sum of all registered variants' best scores
func (a *Account) RecomputeTotalScore() {
	total := 0
	for _, v := range GameVariants {
		total += a.GameScores[v.Name]
	}
	a.TotalScore = total
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	c := *a
	c.GameScores = make(map[string]int, len(a.GameScores))
	for k, v := range a.GameScores {
		c.GameScores[k] = v
	}
	return &c
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
