package users

import (
	"context"
	"log/slog"
	"sort"

	"github.com/ijo-project/ijo-backend/internal/dependencies/clock"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

// Service implements the admin user-management operations
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new users Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// ListStudents returns every student account, newest registration first
func (s *Service) ListStudents(ctx context.Context) ([]*model.Account, error) {
	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	students := make([]*model.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Role == model.RoleStudent {
			students = append(students, a)
		}
	}

	sort.SliceStable(students, func(i, j int) bool {
		if !students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].CreatedAt.After(students[j].CreatedAt)
		}
		return students[i].ID > students[j].ID
	})
	return students, nil
}

// SetStatus approves or rejects a student account. Moving an account back to pending is
// not allowed, rejection is final, and admin accounts are never touched.
func (s *Service) SetStatus(ctx context.Context, id model.AccountID, status model.Status) (*model.Account, error) {
	if status != model.StatusActive && status != model.StatusRejected {
		return nil, model.ErrInvalidStatus
	}

	now := s.clock.Now()
	account, err := s.storage.UpdateAccount(ctx, id, func(a *model.Account) error {
		if a.Role == model.RoleAdmin {
			return model.ErrAdminStatusLocked
		}
		if a.Status == model.StatusRejected && status == model.StatusActive {
			return model.ErrStatusTransition
		}
		a.Status = status
		a.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account status changed",
		slog.String("account_id", string(id)),
		slog.String("status", string(status)),
	)
	return account, nil
}

// Delete removes an account and its companion
func (s *Service) Delete(ctx context.Context, id model.AccountID) error {
	if err := s.storage.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.logger.Info("account deleted", slog.String("account_id", string(id)))
	return nil
}
