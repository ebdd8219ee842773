package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/ijo-project/ijo-backend/internal/dependencies/mocks"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage/memory"
	"github.com/ijo-project/ijo-backend/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	cfg := DefaultConfig()
	cfg.Secret = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	s.service = New(s.storage, s.clock, s.random, cfg, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) register(email string) *model.Account {
	account, err := s.service.Register(s.ctx, RegisterInput{
		Email:       email,
		Password:    "password123",
		FullName:    "Alice",
		SchoolClass: "7A",
	})
	s.Require().NoError(err)
	return account
}

func (s *ServiceSuite) activate(id model.AccountID) {
	_, err := s.storage.UpdateAccount(s.ctx, id, func(a *model.Account) error {
		a.Status = model.StatusActive
		return nil
	})
	s.Require().NoError(err)
}

// Register tests

func (s *ServiceSuite) TestRegisterCreatesPendingStudent() {
	s.random.QueueID("acc_1")

	account := s.register("Alice@School.id")

	s.Equal(model.AccountID("acc_1"), account.ID)
	s.Equal(model.RoleStudent, account.Role)
	s.Equal(model.StatusPending, account.Status)
	s.Equal("alice@school.id", account.Email)
	s.Equal(0, account.Coins)
	s.Equal(0, account.Tickets)
	s.Equal(model.DefaultLanguage, account.Language)
}

func (s *ServiceSuite) TestRegisterHashesPassword() {
	account := s.register("alice@school.id")

	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.NotEqual("password123", stored.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func (s *ServiceSuite) TestRegisterFailsIfEmailExists() {
	s.register("alice@school.id")

	_, err := s.service.Register(s.ctx, RegisterInput{Email: "ALICE@school.id", Password: "secret99", FullName: "Other"})
	s.ErrorIs(err, model.ErrEmailExists)
}

func (s *ServiceSuite) TestRegisterValidatesInput() {
	cases := []RegisterInput{
		{Email: "", Password: "password123", FullName: "Alice"},
		{Email: "not-an-email", Password: "password123", FullName: "Alice"},
		{Email: "alice@school.id", Password: "12345", FullName: "Alice"},
		{Email: "alice@school.id", Password: "password123", FullName: "   "},
	}
	for _, in := range cases {
		_, err := s.service.Register(s.ctx, in)
		s.ErrorIs(err, model.ErrInvalidRegistration, "%+v", in)
	}
}

// CreateAdmin tests

func (s *ServiceSuite) TestCreateAdminIsActive() {
	admin, err := s.service.CreateAdmin(s.ctx, "admin@school.id", "supersecret", "Admin")
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, admin.Role)
	s.Equal(model.StatusActive, admin.Status)

	session, err := s.service.Login(s.ctx, "admin@school.id", "supersecret")
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, session.Account.Role)
}

// Login tests

func (s *ServiceSuite) TestLoginRefusesPendingAccount() {
	s.register("alice@school.id")

	_, err := s.service.Login(s.ctx, "alice@school.id", "password123")
	s.ErrorIs(err, model.ErrAccountPending)
}

func (s *ServiceSuite) TestLoginRefusesRejectedAccount() {
	account := s.register("alice@school.id")
	_, err := s.storage.UpdateAccount(s.ctx, account.ID, func(a *model.Account) error {
		a.Status = model.StatusRejected
		return nil
	})
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice@school.id", "password123")
	s.ErrorIs(err, model.ErrAccountRejected)
}

func (s *ServiceSuite) TestLoginSucceedsOnceActive() {
	account := s.register("alice@school.id")
	s.activate(account.ID)

	session, err := s.service.Login(s.ctx, "alice@school.id", "password123")
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.Equal(account.ID, session.Account.ID)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	account := s.register("alice@school.id")
	s.activate(account.ID)

	_, err := s.service.Login(s.ctx, "alice@school.id", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginWrongPasswordDoesNotRevealStatus() {
	s.register("alice@school.id")

	_, err := s.service.Login(s.ctx, "alice@school.id", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody@school.id", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Token tests

func (s *ServiceSuite) TestValidateTokenCarriesClaims() {
	account := s.register("alice@school.id")
	s.activate(account.ID)
	session, _ := s.service.Login(s.ctx, "alice@school.id", "password123")

	claims, err := s.service.ValidateToken(session.Token)
	s.Require().NoError(err)
	s.Equal(account.ID, claims.AccountID())
	s.Equal("alice@school.id", claims.Email)
	s.Equal(model.RoleStudent, claims.Role)
	s.Equal("Alice", claims.FullName)
	s.NotEmpty(claims.ID)
}

func (s *ServiceSuite) TestValidateTokenFailsWhenExpired() {
	account := s.register("alice@school.id")
	s.activate(account.ID)
	session, _ := s.service.Login(s.ctx, "alice@school.id", "password123")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateToken(session.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateTokenRejectsOtherSecret() {
	account := s.register("alice@school.id")
	other := New(s.storage, s.clock, s.random, Config{Secret: "other-secret", BcryptCost: bcrypt.MinCost}, testutil.NopLogger())
	token, _, err := other.IssueToken(account)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateTokenRejectsNoneAlgorithm() {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "acc_1",
		Issuer:    "ijo",
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateTokenRejectsGarbage() {
	_, err := s.service.ValidateToken("not-a-token")
	s.ErrorIs(err, ErrInvalidToken)
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateReturnsAccount() {
	account := s.register("alice@school.id")
	s.activate(account.ID)
	session, _ := s.service.Login(s.ctx, "alice@school.id", "password123")

	authenticated, err := s.service.Authenticate(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(account.ID, authenticated.ID)
}

func (s *ServiceSuite) TestAuthenticateRefusesDeactivatedAccount() {
	account := s.register("alice@school.id")
	s.activate(account.ID)
	session, _ := s.service.Login(s.ctx, "alice@school.id", "password123")

	_, err := s.storage.UpdateAccount(s.ctx, account.ID, func(a *model.Account) error {
		a.Status = model.StatusRejected
		return nil
	})
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, session.Token)
	s.ErrorIs(err, model.ErrAccountInactive)
}

func (s *ServiceSuite) TestAuthenticateFailsForDeletedAccount() {
	account := s.register("alice@school.id")
	s.activate(account.ID)
	session, _ := s.service.Login(s.ctx, "alice@school.id", "password123")
	s.Require().NoError(s.storage.DeleteAccount(s.ctx, account.ID))

	_, err := s.service.Authenticate(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

// Profile tests

func (s *ServiceSuite) TestProfileWithoutCompanion() {
	account := s.register("alice@school.id")

	profile, err := s.service.Profile(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(account.ID, profile.Account.ID)
	s.Nil(profile.Companion)
}

func (s *ServiceSuite) TestProfileIncludesCompanion() {
	account := s.register("alice@school.id")
	item := model.NewItem("itm_1", account.ID, model.ItemTumbler, "Tumi", "cheerful", s.clock.Now())
	s.Require().NoError(s.storage.CreateItemForAccount(s.ctx, item))

	profile, err := s.service.Profile(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(profile.Companion)
	s.Equal("Tumi", profile.Companion.Name)
}

func (s *ServiceSuite) TestProfileNotFound() {
	_, err := s.service.Profile(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)
}
