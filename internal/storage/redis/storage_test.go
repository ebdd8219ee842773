package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.MaxTxRetries = 100

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newStudent(id, email string) *model.Account {
	a := model.NewAccount(model.AccountID(id), email, "hash", "Student "+id, "8C", model.RoleStudent, model.StatusActive, s.now)
	s.Require().NoError(s.storage.CreateAccount(s.ctx, a))
	return a
}

// Account tests

func (s *StorageSuite) TestCreateAndGetAccount() {
	s.newStudent("acc-1", "Alice@School.id")

	retrieved, err := s.storage.GetAccount(s.ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal("alice@school.id", retrieved.Email)
	s.Equal(model.RoleStudent, retrieved.Role)
	s.True(s.now.Equal(retrieved.CreatedAt))
	s.Equal(0, retrieved.GameScores["quiz"])
}

func (s *StorageSuite) TestAccountKeysLayout() {
	s.newStudent("acc-1", "alice@school.id")

	s.True(s.mini.Exists("ijo:account:acc-1"))
	idx, err := s.mini.Get("ijo:idx:email:alice@school.id")
	s.Require().NoError(err)
	s.Equal("acc-1", idx)
	members, err := s.mini.Members("ijo:idx:accounts")
	s.Require().NoError(err)
	s.Equal([]string{"acc-1"}, members)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestGetAccountByEmail() {
	s.newStudent("acc-1", "alice@school.id")

	retrieved, err := s.storage.GetAccountByEmail(s.ctx, "ALICE@school.id")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), retrieved.ID)

	_, err = s.storage.GetAccountByEmail(s.ctx, "nobody@school.id")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestCreateAccountDuplicateEmail() {
	s.newStudent("acc-1", "alice@school.id")

	dup := model.NewAccount("acc-2", "alice@school.id", "hash", "Other", "8C", model.RoleStudent, model.StatusPending, s.now)
	s.ErrorIs(s.storage.CreateAccount(s.ctx, dup), model.ErrEmailExists)

	_, err := s.storage.GetAccount(s.ctx, "acc-2")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestUpdateAccount() {
	s.newStudent("acc-1", "alice@school.id")

	updated, err := s.storage.UpdateAccount(s.ctx, "acc-1", func(a *model.Account) error {
		a.Tickets = 2
		a.GameScores["catcher"] = 40
		a.RecomputeTotalScore()
		return nil
	})
	s.Require().NoError(err)
	s.Equal(40, updated.TotalScore)

	retrieved, _ := s.storage.GetAccount(s.ctx, "acc-1")
	s.Equal(2, retrieved.Tickets)
	s.Equal(40, retrieved.GameScores["catcher"])
}

func (s *StorageSuite) TestUpdateAccountMutationError() {
	s.newStudent("acc-1", "alice@school.id")

	_, err := s.storage.UpdateAccount(s.ctx, "acc-1", func(a *model.Account) error {
		a.Tickets = 5
		return model.ErrTicketsExhausted
	})
	s.ErrorIs(err, model.ErrTicketsExhausted)

	retrieved, _ := s.storage.GetAccount(s.ctx, "acc-1")
	s.Equal(0, retrieved.Tickets)
}

func (s *StorageSuite) TestUpdateAccountNotFound() {
	_, err := s.storage.UpdateAccount(s.ctx, "missing", func(a *model.Account) error { return nil })
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestConcurrentUpdatesAreNotLost() {
	s.newStudent("acc-1", "alice@school.id")

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.storage.UpdateAccount(s.ctx, "acc-1", func(a *model.Account) error {
				a.Coins += 10
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	retrieved, _ := s.storage.GetAccount(s.ctx, "acc-1")
	s.Equal(workers*10, retrieved.Coins)
}

func (s *StorageSuite) TestWatchGivesUpAfterRetries() {
	s.storage.cfg.MaxTxRetries = 2
	calls := 0
	err := s.storage.watch(s.ctx, func(tx *redis.Tx) error {
		calls++
		return redis.TxFailedErr
	}, "ijo:account:any")
	s.ErrorIs(err, model.ErrConcurrentUpdate)
	s.Equal(2, calls)
}

func (s *StorageSuite) TestDeleteAccount() {
	s.newStudent("acc-1", "alice@school.id")
	s.Require().NoError(s.storage.CreateItemForAccount(s.ctx, model.NewItem("item-1", "acc-1", model.ItemTumbler, "Tumi", "brave", s.now)))

	s.Require().NoError(s.storage.DeleteAccount(s.ctx, "acc-1"))

	_, err := s.storage.GetAccount(s.ctx, "acc-1")
	s.ErrorIs(err, model.ErrAccountNotFound)
	_, err = s.storage.GetItem(s.ctx, "item-1")
	s.ErrorIs(err, model.ErrItemNotFound)
	s.False(s.mini.Exists("ijo:idx:email:alice@school.id"))

	accounts, err := s.storage.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Empty(accounts)
}

func (s *StorageSuite) TestDeleteAccountNotFound() {
	s.ErrorIs(s.storage.DeleteAccount(s.ctx, "missing"), model.ErrAccountNotFound)
}

func (s *StorageSuite) TestListAccountsSkipsDanglingIndex() {
	s.newStudent("acc-1", "alice@school.id")
	_, err := s.mini.SAdd("ijo:idx:accounts", "ghost")
	s.Require().NoError(err)

	accounts, err := s.storage.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 1)
	s.Equal(model.AccountID("acc-1"), accounts[0].ID)
}

// Leaderboard tests

func (s *StorageSuite) TestTopAccountsTieBreak() {
	early := model.NewAccount("z-early", "early@school.id", "hash", "Early", "8C", model.RoleStudent, model.StatusActive, s.now)
	late := model.NewAccount("a-late", "late@school.id", "hash", "Late", "8C", model.RoleStudent, model.StatusActive, s.now.Add(time.Minute))
	for _, a := range []*model.Account{late, early} {
		a.GameScores["quiz"] = 50
		a.RecomputeTotalScore()
		s.Require().NoError(s.storage.CreateAccount(s.ctx, a))
	}

	top, err := s.storage.TopAccounts(s.ctx, storage.LeaderboardQuery{Variant: "quiz", Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(model.AccountID("z-early"), top[0].ID)
	s.Equal(model.AccountID("a-late"), top[1].ID)
}

// Item tests

func (s *StorageSuite) TestCreateItemForAccount() {
	s.newStudent("acc-1", "alice@school.id")

	s.Require().NoError(s.storage.CreateItemForAccount(s.ctx, model.NewItem("item-1", "acc-1", model.ItemToteBag, "Baggy", "lazy", s.now)))

	owner, _ := s.storage.GetAccount(s.ctx, "acc-1")
	s.Equal(model.ItemID("item-1"), owner.CompanionID)

	item, err := s.storage.GetItem(s.ctx, "item-1")
	s.Require().NoError(err)
	s.Equal(model.ItemToteBag, item.Type)
	s.Equal(model.StartingNextLevelXP, item.NextLevelXP)
	s.Nil(item.LastCheckInAt)
}

func (s *StorageSuite) TestCreateItemForAccountRejectsSecond() {
	s.newStudent("acc-1", "alice@school.id")
	s.Require().NoError(s.storage.CreateItemForAccount(s.ctx, model.NewItem("item-1", "acc-1", model.ItemToteBag, "Baggy", "lazy", s.now)))

	err := s.storage.CreateItemForAccount(s.ctx, model.NewItem("item-2", "acc-1", model.ItemStraw, "Sip", "shy", s.now))
	s.ErrorIs(err, model.ErrCompanionExists)
	s.False(s.mini.Exists("ijo:item:item-2"))
}

func (s *StorageSuite) TestUpdateItem() {
	s.newStudent("acc-1", "alice@school.id")
	s.Require().NoError(s.storage.CreateItemForAccount(s.ctx, model.NewItem("item-1", "acc-1", model.ItemToteBag, "Baggy", "lazy", s.now)))

	at := s.now.Add(24 * time.Hour)
	_, err := s.storage.UpdateItem(s.ctx, "item-1", func(i *model.Item) error {
		i.CurrentXP = 30
		i.StreakDays = 2
		i.LastCheckInAt = &at
		return nil
	})
	s.Require().NoError(err)

	item, _ := s.storage.GetItem(s.ctx, "item-1")
	s.Equal(30, item.CurrentXP)
	s.Equal(2, item.StreakDays)
	s.Require().NotNil(item.LastCheckInAt)
	s.True(at.Equal(*item.LastCheckInAt))
}

func (s *StorageSuite) TestUpdateItemMutationError() {
	s.newStudent("acc-1", "alice@school.id")
	s.Require().NoError(s.storage.CreateItemForAccount(s.ctx, model.NewItem("item-1", "acc-1", model.ItemToteBag, "Baggy", "lazy", s.now)))

	boom := errors.New("boom")
	_, err := s.storage.UpdateItem(s.ctx, "item-1", func(i *model.Item) error {
		i.Level = 9
		return boom
	})
	s.ErrorIs(err, boom)

	item, _ := s.storage.GetItem(s.ctx, "item-1")
	s.Equal(model.StartingLevel, item.Level)
}

// Content tests

func (s *StorageSuite) TestContent() {
	s.Require().NoError(s.storage.SaveContent(s.ctx, &model.ContentEntry{Key: "tips_section", Value: json.RawMessage(`["a"]`), UpdatedAt: s.now}))
	s.Require().NoError(s.storage.SaveContent(s.ctx, &model.ContentEntry{Key: "tips_section", Value: json.RawMessage(`["b"]`), UpdatedAt: s.now}))

	entries, err := s.storage.ListContent(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.JSONEq(`["b"]`, string(entries[0].Value))
	fields, err := s.mini.HKeys("ijo:content")
	s.Require().NoError(err)
	s.Equal([]string{"tips_section"}, fields)
}
