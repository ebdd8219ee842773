package companion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

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
	owner   model.AccountID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()

	account := model.NewAccount("acc_1", "alice@school.id", "hash", "Alice", "7A", model.RoleStudent, model.StatusActive, s.clock.Now())
	s.Require().NoError(s.storage.CreateAccount(s.ctx, account))
	s.owner = account.ID
}

func (s *ServiceSuite) choose() *model.Item {
	item, err := s.service.Choose(s.ctx, s.owner, model.ItemTumbler, "Tumi", "cheerful")
	s.Require().NoError(err)
	return item
}

func (s *ServiceSuite) setProgress(id model.ItemID, level, xp, next int, last *time.Time, streak int) {
	_, err := s.storage.UpdateItem(s.ctx, id, func(i *model.Item) error {
		i.Level = level
		i.CurrentXP = xp
		i.NextLevelXP = next
		i.LastCheckInAt = last
		i.StreakDays = streak
		return nil
	})
	s.Require().NoError(err)
}

// Choose tests

func (s *ServiceSuite) TestChooseCreatesStartingItem() {
	s.random.QueueID("itm_1")

	item := s.choose()

	s.Equal(model.ItemID("itm_1"), item.ID)
	s.Equal(s.owner, item.OwnerID)
	s.Equal(model.ItemTumbler, item.Type)
	s.Equal(1, item.Level)
	s.Equal(0, item.CurrentXP)
	s.Equal(100, item.NextLevelXP)
	s.Nil(item.LastCheckInAt)
	s.Equal(0, item.StreakDays)

	account, _ := s.storage.GetAccount(s.ctx, s.owner)
	s.Equal(item.ID, account.CompanionID)
}

func (s *ServiceSuite) TestChooseTwiceConflicts() {
	s.choose()

	_, err := s.service.Choose(s.ctx, s.owner, model.ItemStraw, "Sip", "shy")
	s.ErrorIs(err, model.ErrCompanionExists)
}

func (s *ServiceSuite) TestConcurrentChooseCreatesOne() {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Choose(s.ctx, s.owner, model.ItemStraw, "Sip", "shy")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, model.ErrCompanionExists) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(4, conflicts)
}

func (s *ServiceSuite) TestChooseValidatesInput() {
	_, err := s.service.Choose(s.ctx, s.owner, model.ItemType("Plastic Bag"), "Baggy", "sad")
	s.ErrorIs(err, model.ErrInvalidItemType)

	_, err = s.service.Choose(s.ctx, s.owner, model.ItemLunchbox, "  ", "calm")
	s.ErrorIs(err, model.ErrInvalidItem)

	_, err = s.service.Choose(s.ctx, s.owner, model.ItemLunchbox, "Boxy", "")
	s.ErrorIs(err, model.ErrInvalidItem)
}

func (s *ServiceSuite) TestChooseUnknownAccount() {
	_, err := s.service.Choose(s.ctx, "missing", model.ItemLunchbox, "Boxy", "calm")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// CheckIn tests

func (s *ServiceSuite) TestFirstCheckIn() {
	s.choose()

	result, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(CheckInXP, result.GainedXP)
	s.False(result.LevelUp)
	s.Equal(1, result.Level)
	s.Equal(15, result.CurrentXP)
	s.Equal(100, result.NextLevelXP)
	s.Equal(1, result.StreakDays)
}

func (s *ServiceSuite) TestSameDayCheckInRejectedWithoutMutation() {
	item := s.choose()
	_, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)

	s.clock.Advance(11 * time.Hour) // 23:00, same day
	_, err = s.service.CheckIn(s.ctx, s.owner)
	s.ErrorIs(err, model.ErrAlreadyCheckedIn)

	stored, _ := s.storage.GetItem(s.ctx, item.ID)
	s.Equal(15, stored.CurrentXP)
	s.True(stored.LastCheckInAt.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func (s *ServiceSuite) TestCheckInAfterMidnightIsAllowed() {
	s.choose()
	_, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)

	s.clock.Set(time.Date(2024, 1, 2, 0, 0, 1, 0, time.UTC))
	result, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(30, result.CurrentXP)
	s.Equal(2, result.StreakDays)
}

func (s *ServiceSuite) TestCalendarDayUsesClockLocation() {
	jakarta := time.FixedZone("WIB", 7*60*60)
	s.clock.Set(time.Date(2024, 1, 1, 23, 0, 0, 0, jakarta))
	item := s.choose()
	_, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)

	// 02:00 WIB on the next day is still Jan 1 in UTC
	s.clock.Set(time.Date(2024, 1, 2, 2, 0, 0, 0, jakarta))
	_, err = s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)

	stored, _ := s.storage.GetItem(s.ctx, item.ID)
	s.Equal(30, stored.CurrentXP)
}

func (s *ServiceSuite) TestLevelUpCarriesRemainder() {
	item := s.choose()
	yesterday := s.clock.Now().AddDate(0, 0, -1)
	s.setProgress(item.ID, 1, 90, 100, &yesterday, 4)

	result, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)
	s.True(result.LevelUp)
	s.Equal(2, result.Level)
	s.Equal(5, result.CurrentXP)
	s.Equal(150, result.NextLevelXP)
	s.Equal(5, result.StreakDays)
}

func (s *ServiceSuite) TestThresholdRoundsDown() {
	item := s.choose()
	s.setProgress(item.ID, 3, 220, 225, nil, 0)

	result, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)
	s.True(result.LevelUp)
	s.Equal(4, result.Level)
	s.Equal(10, result.CurrentXP)
	s.Equal(337, result.NextLevelXP)
}

func (s *ServiceSuite) TestMultipleLevelsInOneCheckIn() {
	item := s.choose()
	s.setProgress(item.ID, 1, 5, 10, nil, 0)

	result, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)
	// 20 XP: 10 for level 2, the remaining 10 is below the new threshold of 15
	s.Equal(2, result.Level)
	s.Equal(10, result.CurrentXP)
	s.Equal(15, result.NextLevelXP)

	s.setProgress(item.ID, 1, 10, 10, nil, 0)
	result, err = s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)
	// 25 XP: 10 for level 2, 15 for level 3
	s.Equal(3, result.Level)
	s.Equal(0, result.CurrentXP)
	s.Equal(22, result.NextLevelXP)
}

func (s *ServiceSuite) TestStreakResetsAfterGap() {
	item := s.choose()
	threeDaysAgo := s.clock.Now().AddDate(0, 0, -3)
	s.setProgress(item.ID, 1, 0, 100, &threeDaysAgo, 7)

	result, err := s.service.CheckIn(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(1, result.StreakDays)
}

func (s *ServiceSuite) TestXPStaysBelowThresholdOverManyDays() {
	item := s.choose()

	for day := 0; day < 60; day++ {
		_, err := s.service.CheckIn(s.ctx, s.owner)
		s.Require().NoError(err)

		stored, _ := s.storage.GetItem(s.ctx, item.ID)
		s.Less(stored.CurrentXP, stored.NextLevelXP)
		s.GreaterOrEqual(stored.CurrentXP, 0)
		s.Equal(day+1, stored.StreakDays)

		s.clock.AdvanceDays(1)
	}
}

func (s *ServiceSuite) TestCheckInWithoutCompanion() {
	_, err := s.service.CheckIn(s.ctx, s.owner)
	s.ErrorIs(err, model.ErrNoCompanion)
}

func (s *ServiceSuite) TestCheckInWithDanglingCompanion() {
	_, err := s.storage.UpdateAccount(s.ctx, s.owner, func(a *model.Account) error {
		a.CompanionID = "itm_gone"
		return nil
	})
	s.Require().NoError(err)

	_, err = s.service.CheckIn(s.ctx, s.owner)
	s.ErrorIs(err, model.ErrNoCompanion)
}

func (s *ServiceSuite) TestCheckInUnknownAccount() {
	_, err := s.service.CheckIn(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Get tests

func (s *ServiceSuite) TestGet() {
	_, err := s.service.Get(s.ctx, s.owner)
	s.ErrorIs(err, model.ErrNoCompanion)

	created := s.choose()
	item, err := s.service.Get(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(created.ID, item.ID)
}
