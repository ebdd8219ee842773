package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ijo-project/ijo-backend/internal/dependencies/mocks"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/services/auth"
	"github.com/ijo-project/ijo-backend/internal/storage"
	"github.com/ijo-project/ijo-backend/internal/storage/memory"
)

// TestPassword is the password given to accounts created by the TestApp helpers
const TestPassword = "password123"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an in-memory App with mocked clock and ids
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a TestApp on top of store, e.g. a miniredis-backed one
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = "test-secret"
	authCfg.BcryptCost = bcrypt.MinCost

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app := newWithDependencies(store, mockClock, mockRandom, authCfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// CreateStudent registers a student and approves it, returning the active account
func (t *TestApp) CreateStudent(ctx context.Context, email, fullName, schoolClass string) (*model.Account, error) {
	account, err := t.AuthService.Register(ctx, auth.RegisterInput{
		Email:       email,
		Password:    TestPassword,
		FullName:    fullName,
		SchoolClass: schoolClass,
	})
	if err != nil {
		return nil, err
	}
	return t.UsersService.SetStatus(ctx, account.ID, model.StatusActive)
}

// CreateAdmin provisions an admin with TestPassword
func (t *TestApp) CreateAdmin(ctx context.Context, email string) (*model.Account, error) {
	return t.AuthService.CreateAdmin(ctx, email, TestPassword, "Admin")
}

// Token logs in with TestPassword and returns the access token
func (t *TestApp) Token(ctx context.Context, email string) (string, error) {
	session, err := t.AuthService.Login(ctx, email, TestPassword)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}
