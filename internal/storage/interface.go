package storage

import (
	"context"

	"github.com/ijo-project/ijo-backend/internal/model"
)

// AccountMutation changes an account in place. It runs inside the store's atomic
// read-modify-write and may be invoked more than once, so it must not have side effects.
// Returning an error aborts the update and nothing is written.
type AccountMutation func(account *model.Account) error

// ItemMutation is the item counterpart of AccountMutation
type ItemMutation func(item *model.Item) error

// LeaderboardQuery selects how accounts are ranked
type LeaderboardQuery struct {
	// Variant is a registered game variant name, or empty / model.LeaderboardAll for total score
	Variant string
	Limit   int
}

// Storage defines the interface for data persistence
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	UpdateAccount(ctx context.Context, id model.AccountID, fn AccountMutation) (*model.Account, error)
	DeleteAccount(ctx context.Context, id model.AccountID) error
	TopAccounts(ctx context.Context, q LeaderboardQuery) ([]*model.Account, error)

	// Item operations
	// CreateItemForAccount stores item and links it to its owner in one atomic step.
	// It fails with model.ErrCompanionExists if the owner already has an item.
	CreateItemForAccount(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id model.ItemID) (*model.Item, error)
	UpdateItem(ctx context.Context, id model.ItemID, fn ItemMutation) (*model.Item, error)

	// Content operations
	ListContent(ctx context.Context) ([]*model.ContentEntry, error)
	SaveContent(ctx context.Context, entry *model.ContentEntry) error

	Close() error
}
