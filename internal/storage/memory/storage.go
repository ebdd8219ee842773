package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	accounts   map[model.AccountID]*model.Account
	emailIndex map[string]model.AccountID
	items      map[model.ItemID]*model.Item
	content    map[string]*model.ContentEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:   make(map[model.AccountID]*model.Account),
		emailIndex: make(map[string]model.AccountID),
		items:      make(map[model.ItemID]*model.Item),
		content:    make(map[string]*model.ContentEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := model.NormalizeEmail(account.Email)
	if _, taken := s.emailIndex[email]; taken {
		return model.ErrEmailExists
	}
	stored := account.Clone()
	stored.Email = email
	s.accounts[account.ID] = stored
	s.emailIndex[email] = account.ID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[model.NormalizeEmail(email)]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a.Clone())
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

func (s *Storage) UpdateAccount(ctx context.Context, id model.AccountID, fn storage.AccountMutation) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.accounts[id] = updated
	return updated.Clone(), nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	if account.HasCompanion() {
		delete(s.items, account.CompanionID)
	}
	delete(s.emailIndex, account.Email)
	delete(s.accounts, id)
	return nil
}

func (s *Storage) TopAccounts(ctx context.Context, q storage.LeaderboardQuery) ([]*model.Account, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return storage.Rank(accounts, q), nil
}

// Item operations

func (s *Storage) CreateItemForAccount(ctx context.Context, item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.accounts[item.OwnerID]
	if !ok {
		return model.ErrAccountNotFound
	}
	if owner.HasCompanion() {
		return model.ErrCompanionExists
	}
	linked := owner.Clone()
	linked.CompanionID = item.ID
	linked.UpdatedAt = item.CreatedAt
	s.items[item.ID] = item.Clone()
	s.accounts[owner.ID] = linked
	return nil
}

func (s *Storage) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	return item.Clone(), nil
}

func (s *Storage) UpdateItem(ctx context.Context, id model.ItemID, fn storage.ItemMutation) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[id]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.items[id] = updated
	return updated.Clone(), nil
}

// Content operations

func (s *Storage) ListContent(ctx context.Context) ([]*model.ContentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*model.ContentEntry, 0, len(s.content))
	for _, e := range s.content {
		c := *e
		entries = append(entries, &c)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}

func (s *Storage) SaveContent(ctx context.Context, entry *model.ContentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *entry
	s.content[entry.Key] = &c
	return nil
}
