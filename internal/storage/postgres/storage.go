package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

// Postgres error codes and constraint names the store reacts to
const (
	uniqueViolation      = "23505"
	emailUniqueIndexName = "accounts_email_key"
)

// Storage is a PostgreSQL-backed implementation of the storage interface.
// Read-modify-write operations lock the row with SELECT ... FOR UPDATE inside a transaction.
type Storage struct {
	db *sqlx.DB
}

// New opens a connection pool, verifies it and applies the schema when cfg.Migrate is set
func New(ctx context.Context, cfg Config) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.Migrate {
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return NewWithDB(db), nil
}

// NewWithDB creates a store over an existing handle (for testing)
func NewWithDB(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	row, err := newAccountRow(account)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (:id, :email, :password_hash, :full_name, :school_class, :role, :status, :language,
			:coins, :tickets, :game_scores, :total_score, :companion_id, :created_at, :updated_at)
	`, row)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == emailUniqueIndexName {
		return model.ErrEmailExists
	}
	return err
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return s.getAccount(ctx, s.db, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, string(id))
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.getAccount(ctx, s.db, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, model.NormalizeEmail(email))
}

func (s *Storage) getAccount(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*model.Account, error) {
	var row accountRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	return row.toModel()
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.selectAccounts(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
}

func (s *Storage) selectAccounts(ctx context.Context, query string, args ...any) ([]*model.Account, error) {
	var rows []accountRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *Storage) UpdateAccount(ctx context.Context, id model.AccountID, fn storage.AccountMutation) (*model.Account, error) {
	var updated *model.Account
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.getAccount(ctx, tx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, string(id))
		if err != nil {
			return err
		}
		if err := fn(account); err != nil {
			return err
		}
		row, err := newAccountRow(account)
		if err != nil {
			return err
		}
		_, err = tx.NamedExecContext(ctx, `
			UPDATE accounts SET
				email = :email, password_hash = :password_hash, full_name = :full_name,
				school_class = :school_class, role = :role, status = :status, language = :language,
				coins = :coins, tickets = :tickets, game_scores = :game_scores, total_score = :total_score,
				companion_id = :companion_id, updated_at = :updated_at
			WHERE id = :id
		`, row)
		if err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	// items.owner_id cascades
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) TopAccounts(ctx context.Context, q storage.LeaderboardQuery) ([]*model.Account, error) {
	if q.Variant == "" || q.Variant == model.LeaderboardAll {
		return s.selectAccounts(ctx, `
			SELECT `+accountColumns+` FROM accounts
			WHERE role = $1
			ORDER BY total_score DESC, created_at, id
			LIMIT NULLIF($2, 0)
		`, string(model.RoleStudent), q.Limit)
	}
	return s.selectAccounts(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE role = $1
		ORDER BY COALESCE((game_scores ->> $2)::int, 0) DESC, created_at, id
		LIMIT NULLIF($3, 0)
	`, string(model.RoleStudent), q.Variant, q.Limit)
}

// Item operations

func (s *Storage) CreateItemForAccount(ctx context.Context, item *model.Item) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var companion sql.NullString
		err := tx.GetContext(ctx, &companion, `SELECT companion_id FROM accounts WHERE id = $1 FOR UPDATE`, string(item.OwnerID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrAccountNotFound
			}
			return err
		}
		if companion.Valid && companion.String != "" {
			return model.ErrCompanionExists
		}

		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO items (`+itemColumns+`)
			VALUES (:id, :owner_id, :type, :name, :personality, :level, :current_xp, :next_level_xp,
				:last_check_in_at, :streak_days, :created_at)
		`, newItemRow(item)); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE accounts SET companion_id = $2, updated_at = $3 WHERE id = $1`,
			string(item.OwnerID), string(item.ID), item.CreatedAt)
		return err
	})
}

func (s *Storage) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	return s.getItem(ctx, s.db, `SELECT `+itemColumns+` FROM items WHERE id = $1`, string(id))
}

func (s *Storage) getItem(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*model.Item, error) {
	var row itemRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) UpdateItem(ctx context.Context, id model.ItemID, fn storage.ItemMutation) (*model.Item, error) {
	var updated *model.Item
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		item, err := s.getItem(ctx, tx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, string(id))
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
		_, err = tx.NamedExecContext(ctx, `
			UPDATE items SET
				level = :level, current_xp = :current_xp, next_level_xp = :next_level_xp,
				last_check_in_at = :last_check_in_at, streak_days = :streak_days
			WHERE id = :id
		`, newItemRow(item))
		if err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Content operations

func (s *Storage) ListContent(ctx context.Context) ([]*model.ContentEntry, error) {
	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, value, updated_at FROM content_entries ORDER BY key`); err != nil {
		return nil, err
	}

	entries := make([]*model.ContentEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, &model.ContentEntry{
			Key:       r.Key,
			Value:     []byte(r.Value),
			UpdatedAt: r.UpdatedAt,
		})
	}
	return entries, nil
}

func (s *Storage) SaveContent(ctx context.Context, entry *model.ContentEntry) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO content_entries (key, value, updated_at)
		VALUES (:key, :value, :updated_at)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, contentRow{Key: entry.Key, Value: string(entry.Value), UpdatedAt: entry.UpdatedAt})
	return err
}
