package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// watch runs fn in an optimistic transaction over keys, retrying when a watched key
// changes underneath it
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	retries := s.cfg.MaxTxRetries
	if retries <= 0 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return model.ErrConcurrentUpdate
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	stored := account.Clone()
	stored.Email = model.NormalizeEmail(account.Email)
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	idxKey := emailIndexKey(stored.Email)
	return s.watch(ctx, func(tx *redis.Tx) error {
		taken, err := tx.Exists(ctx, idxKey).Result()
		if err != nil {
			return err
		}
		if taken > 0 {
			return model.ErrEmailExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, accountKey(stored.ID), data, 0)
			pipe.Set(ctx, idxKey, string(stored.ID), 0)
			pipe.SAdd(ctx, accountsIndexKey(), string(stored.ID))
			return nil
		})
		return err
	}, idxKey)
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return getJSON[model.Account](ctx, s.client, accountKey(id), model.ErrAccountNotFound)
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	// Look up account ID from email index
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	return s.GetAccount(ctx, model.AccountID(id))
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	ids, err := s.client.SMembers(ctx, accountsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Account{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountKey(model.AccountID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(values))
	for _, v := range values {
		// Index entries can briefly outlive a deleted account
		str, ok := v.(string)
		if !ok {
			continue
		}
		var account model.Account
		if err := json.Unmarshal([]byte(str), &account); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

func (s *Storage) UpdateAccount(ctx context.Context, id model.AccountID, fn storage.AccountMutation) (*model.Account, error) {
	key := accountKey(id)
	var updated *model.Account
	err := s.watch(ctx, func(tx *redis.Tx) error {
		account, err := getJSON[model.Account](ctx, tx, key, model.ErrAccountNotFound)
		if err != nil {
			return err
		}
		if err := fn(account); err != nil {
			return err
		}
		data, err := json.Marshal(account)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = account
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	key := accountKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		account, err := getJSON[model.Account](ctx, tx, key, model.ErrAccountNotFound)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, emailIndexKey(account.Email))
			pipe.SRem(ctx, accountsIndexKey(), string(id))
			if account.HasCompanion() {
				pipe.Del(ctx, itemKey(account.CompanionID))
			}
			return nil
		})
		return err
	}, key)
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
	itemData, err := json.Marshal(item)
	if err != nil {
		return err
	}

	ownerKey := accountKey(item.OwnerID)
	return s.watch(ctx, func(tx *redis.Tx) error {
		owner, err := getJSON[model.Account](ctx, tx, ownerKey, model.ErrAccountNotFound)
		if err != nil {
			return err
		}
		if owner.HasCompanion() {
			return model.ErrCompanionExists
		}
		owner.CompanionID = item.ID
		owner.UpdatedAt = item.CreatedAt
		ownerData, err := json.Marshal(owner)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, itemKey(item.ID), itemData, 0)
			pipe.Set(ctx, ownerKey, ownerData, 0)
			return nil
		})
		return err
	}, ownerKey)
}

func (s *Storage) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	return getJSON[model.Item](ctx, s.client, itemKey(id), model.ErrItemNotFound)
}

func (s *Storage) UpdateItem(ctx context.Context, id model.ItemID, fn storage.ItemMutation) (*model.Item, error) {
	key := itemKey(id)
	var updated *model.Item
	err := s.watch(ctx, func(tx *redis.Tx) error {
		item, err := getJSON[model.Item](ctx, tx, key, model.ErrItemNotFound)
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = item
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Content operations

func (s *Storage) ListContent(ctx context.Context) ([]*model.ContentEntry, error) {
	fields, err := s.client.HGetAll(ctx, contentKey()).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.ContentEntry, 0, len(fields))
	for _, raw := range fields {
		var entry model.ContentEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}

func (s *Storage) SaveContent(ctx context.Context, entry *model.ContentEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, contentKey(), entry.Key, data).Err()
}
