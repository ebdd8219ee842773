package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ijo-project/ijo-backend/internal/dependencies/clock"
	"github.com/ijo-project/ijo-backend/internal/dependencies/random"
	"github.com/ijo-project/ijo-backend/internal/metrics"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// Claims are the JWT claims carried by an access token
type Claims struct {
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	FullName string     `json:"fullName"`
	jwt.RegisteredClaims
}

// AccountID returns the subject of the token
func (c *Claims) AccountID() model.AccountID {
	return model.AccountID(c.Subject)
}

// Session is the result of a successful login
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *model.Account
}

// Profile is an account together with its companion, if any
type Profile struct {
	Account   *model.Account
	Companion *model.Item
}

// RegisterInput holds the fields a student provides when signing up
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	SchoolClass string
}

// Service handles registration, login and bearer token validation
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	secret     []byte
	issuer     string
	tokenTTL   time.Duration
	bcryptCost int
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs access tokens with HS256
	Secret     string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Secret:     "change-me",
		Issuer:     "ijo",
		TokenTTL:   24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.Secret == "" {
		cfg.Secret = defaults.Secret
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		random:     random,
		logger:     logger,
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a pending student account that an admin has to approve before it can log in
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	account, err := s.newAccount(in.Email, in.Password, in.FullName, in.SchoolClass, model.RoleStudent, model.StatusPending)
	if err != nil {
		return nil, err
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	metrics.RecordRegistration()
	s.logger.Info("account registered",
		slog.String("account_id", string(account.ID)),
		slog.String("school_class", account.SchoolClass),
	)
	return account, nil
}

// CreateAdmin provisions an active admin account
func (s *Service) CreateAdmin(ctx context.Context, email, password, fullName string) (*model.Account, error) {
	if err := validateRegistration(RegisterInput{Email: email, Password: password, FullName: fullName}); err != nil {
		return nil, err
	}

	account, err := s.newAccount(email, password, fullName, "", model.RoleAdmin, model.StatusActive)
	if err != nil {
		return nil, err
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("admin account created", slog.String("account_id", string(account.ID)))
	return account, nil
}

func (s *Service) newAccount(email, password, fullName, schoolClass string, role model.Role, status model.Status) (*model.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return model.NewAccount(
		model.AccountID(s.random.ID("acc_")),
		email,
		string(hash),
		strings.TrimSpace(fullName),
		strings.TrimSpace(schoolClass),
		role,
		status,
		s.clock.Now(),
	), nil
}

func validateRegistration(in RegisterInput) error {
	email := model.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return model.ErrInvalidRegistration
	}
	if strings.TrimSpace(in.FullName) == "" {
		return model.ErrInvalidRegistration
	}
	if len(in.Password) < MinPasswordLength {
		return model.ErrInvalidRegistration
	}
	return nil
}

// Login checks credentials and issues an access token. Accounts still waiting for approval
// and rejected accounts are refused even with the right password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.storage.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			metrics.RecordLogin("invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		metrics.RecordLogin("invalid")
		return nil, ErrInvalidCredentials
	}

	switch account.Status {
	case model.StatusPending:
		metrics.RecordLogin("forbidden")
		return nil, model.ErrAccountPending
	case model.StatusRejected:
		metrics.RecordLogin("forbidden")
		return nil, model.ErrAccountRejected
	}

	token, expiresAt, err := s.IssueToken(account)
	if err != nil {
		return nil, err
	}

	metrics.RecordLogin("success")
	s.logger.Info("account logged in",
		slog.String("account_id", string(account.ID)),
		slog.String("role", string(account.Role)),
	)
	return &Session{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// IssueToken signs an access token for account
func (s *Service) IssueToken(account *model.Account) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &Claims{
		Email:    account.Email,
		Role:     account.Role,
		FullName: account.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   string(account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses a bearer token and returns its claims
func (s *Service) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves a bearer token to its account. Only active accounts pass,
// so a token issued before an account was rejected stops working immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Account, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	account, err := s.storage.GetAccount(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if account.Status != model.StatusActive {
		return nil, model.ErrAccountInactive
	}
	return account, nil
}

// Profile returns the account and its companion. A missing companion record is reported as none.
func (s *Service) Profile(ctx context.Context, id model.AccountID) (*Profile, error) {
	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Account: account}
	if account.HasCompanion() {
		item, err := s.storage.GetItem(ctx, account.CompanionID)
		switch {
		case err == nil:
			profile.Companion = item
		case !errors.Is(err, model.ErrItemNotFound):
			return nil, err
		}
	}
	return profile, nil
}
