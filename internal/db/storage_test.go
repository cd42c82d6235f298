package db

import (
	"context"
	"fmt"
	m "fundmatch/internal/model"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis, *testClock) {
	t.Helper()

	mr := miniredis.RunT(t)
	rds := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	stg, err := newStorage(sqlite.Open(dsn), rds, &gorm.Config{NowFunc: clock.Now})
	require.NoError(t, err)
	t.Cleanup(func() { stg.Close() })

	return stg, mr, clock
}

func TestUpsertFund(t *testing.T) {

	stg, _, clock := newTestStorage(t)

	t.Run("InsertThenUpdate", func(t *testing.T) {
		first, err := stg.UpsertFund("00.000.000/0001-01", "Fundo A", "Ações", 0.1, 0.2, 0.3)
		require.NoError(t, err)

		clock.Advance(time.Hour)

		second, err := stg.UpsertFund("00.000.000/0001-01", "Fundo A2", "Renda Fixa", 0.4, 0.5, 0.6)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Fundo A2", second.Name)
		assert.Equal(t, "Renda Fixa", second.ClassName)
		assert.InDelta(t, 0.6, *second.Sharpe, 1e-9)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
		assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

		funds, err := stg.Funds(0, 100)
		require.NoError(t, err)
		assert.Len(t, funds, 1)
	})

	t.Run("IdenticalArguments", func(t *testing.T) {
		first, err := stg.UpsertFund("00.000.000/0001-02", "Fundo B", "Cambial", 0.01, 0.02, 0.03)
		require.NoError(t, err)

		clock.Advance(time.Minute)

		second, err := stg.UpsertFund("00.000.000/0001-02", "Fundo B", "Cambial", 0.01, 0.02, 0.03)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Cnpj, second.Cnpj)
		assert.Equal(t, first.Name, second.Name)
		assert.Equal(t, first.ClassName, second.ClassName)
		assert.Equal(t, *first.Rentability, *second.Rentability)
		assert.Equal(t, *first.Risk, *second.Risk)
		assert.Equal(t, *first.Sharpe, *second.Sharpe)
		assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

		funds, err := stg.Funds(0, 100)
		require.NoError(t, err)
		assert.Len(t, funds, 2)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := stg.FundByCnpj("99.999.999/9999-99")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = stg.Fund(9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFundsByClass(t *testing.T) {

	stg, _, _ := newTestStorage(t)

	var ids []uint
	for i := range 4 {
		f, err := stg.UpsertFund(fmt.Sprintf("cnpj-%d", i), fmt.Sprintf("fund %d", i), "Ações", 0, 0, 0)
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}
	_, err := stg.UpsertFund("cnpj-x", "other", "Cambial", 0, 0, 0)
	require.NoError(t, err)

	funds, err := stg.FundsByClass("Ações", []uint{ids[0]}, 2)
	require.NoError(t, err)

	require.Len(t, funds, 2)
	assert.Equal(t, ids[1], funds[0].ID)
	assert.Equal(t, ids[2], funds[1].ID)

	funds, err = stg.FundsByClass("Ações", nil, 10)
	require.NoError(t, err)
	assert.Len(t, funds, 4)

	classes, err := stg.FundClasses()
	require.NoError(t, err)
	assert.Equal(t, []string{"Ações", "Cambial"}, classes)
}

func TestHistory(t *testing.T) {

	stg, _, _ := newTestStorage(t)

	fund, err := stg.UpsertFund("cnpj-h", "hist", "Multimercado", 0, 0, 0)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]m.FundHistory, 5)
	for i := range points {
		points[i] = m.FundHistory{Date: datatypes.Date(base.AddDate(0, 0, 4-i)), Nav: float64(100 + i)}
	}

	t.Run("AppendSkipsDuplicates", func(t *testing.T) {
		n, err := stg.AppendHistory(fund.ID, points)
		require.NoError(t, err)
		assert.EqualValues(t, 5, n)

		n, err = stg.AppendHistory(fund.ID, points)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)

		cnt, err := stg.CountHistory(fund.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 5, cnt)
	})

	t.Run("ListOldestFirst", func(t *testing.T) {
		hist, err := stg.ListHistory(fund.ID, 3)
		require.NoError(t, err)
		require.Len(t, hist, 3)

		assert.Equal(t, 104.0, hist[0].Nav)
		assert.Equal(t, 103.0, hist[1].Nav)
		assert.Equal(t, 102.0, hist[2].Nav)
	})

	t.Run("EmptyAppend", func(t *testing.T) {
		n, err := stg.AppendHistory(fund.ID, nil)
		assert.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("CascadeOnDelete", func(t *testing.T) {
		require.NoError(t, stg.DeleteFund(fund.ID))

		cnt, err := stg.CountHistory(fund.ID)
		require.NoError(t, err)
		assert.Zero(t, cnt)

		assert.ErrorIs(t, stg.DeleteFund(fund.ID), ErrNotFound)
	})
}

func TestUpdateFundMetrics(t *testing.T) {

	stg, _, _ := newTestStorage(t)

	fund, err := stg.UpsertFund("cnpj-m", "metrics", "Ações", 1, 1, 1)
	require.NoError(t, err)

	require.NoError(t, stg.UpdateFundMetrics(fund.ID, 0, 0, 0))

	got, err := stg.Fund(fund.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rentability)
	assert.Zero(t, *got.Rentability)
	assert.Zero(t, *got.Risk)
	assert.Zero(t, *got.Sharpe)

	assert.ErrorIs(t, stg.UpdateFundMetrics(9999, 0, 0, 0), ErrNotFound)
}

func TestUser(t *testing.T) {

	stg, _, _ := newTestStorage(t)

	user, err := stg.CreateUser("Ana", "ana@example.com", "hashed")
	require.NoError(t, err)

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := stg.CreateUser("Ana 2", "ana@example.com", "hashed")
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		updated, err := stg.UpdateUser(user.ID, "Ana Maria", "")
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", updated.Name)
		assert.Equal(t, "ana@example.com", updated.Email)

		_, err = stg.UpdateUser(9999, "x", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Password", func(t *testing.T) {
		require.NoError(t, stg.UpdatePassword(user.ID, "rehashed"))

		got, err := stg.UserByEmail("ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, "rehashed", got.Password)
	})

	t.Run("Profile", func(t *testing.T) {
		_, err := stg.Profile(user.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		prof, err := stg.SaveProfile(user.ID, m.Arrojado, decimal.RequireFromString("1500.50"))
		require.NoError(t, err)
		assert.Equal(t, m.Arrojado, prof.RiskProfile)

		prof, err = stg.SaveProfile(user.ID, m.Conservador, decimal.RequireFromString("10"))
		require.NoError(t, err)
		assert.Equal(t, m.Conservador, prof.RiskProfile)
		assert.True(t, decimal.RequireFromString("10").Equal(prof.AmountAvailable))
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		fund, err := stg.UpsertFund("cnpj-u", "fav", "Ações", 0, 0, 0)
		require.NoError(t, err)
		_, err = stg.AddFavorite(user.ID, fund.ID)
		require.NoError(t, err)

		require.NoError(t, stg.DeleteUser(user.ID))

		_, err = stg.Profile(user.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		favs, err := stg.Favorites(user.ID)
		require.NoError(t, err)
		assert.Empty(t, favs)

		assert.ErrorIs(t, stg.DeleteUser(user.ID), ErrNotFound)
	})
}

func TestFavorites(t *testing.T) {

	stg, _, _ := newTestStorage(t)

	user, err := stg.CreateUser("Bia", "bia@example.com", "hashed")
	require.NoError(t, err)
	f1, err := stg.UpsertFund("cnpj-1", "one", "Ações", 0, 0, 0)
	require.NoError(t, err)
	f2, err := stg.UpsertFund("cnpj-2", "two", "Cambial", 0, 0, 0)
	require.NoError(t, err)

	first, err := stg.AddFavorite(user.ID, f2.ID)
	require.NoError(t, err)
	again, err := stg.AddFavorite(user.ID, f2.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = stg.AddFavorite(user.ID, f1.ID)
	require.NoError(t, err)

	_, err = stg.AddFavorite(user.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	favs, err := stg.Favorites(user.ID)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, f1.ID, favs[0].ID)
	assert.Equal(t, f2.ID, favs[1].ID)

	require.NoError(t, stg.RemoveFavorite(user.ID, f1.ID))
	assert.ErrorIs(t, stg.RemoveFavorite(user.ID, f1.ID), ErrNotFound)

	favs, err = stg.Favorites(user.ID)
	require.NoError(t, err)
	assert.Len(t, favs, 1)
}

func TestEvent(t *testing.T) {

	stg, _, _ := newTestStorage(t)

	assert.True(t, stg.RetreiveEventIsActive(1))

	require.NoError(t, stg.UpdateEventIsActive(1, false))
	assert.False(t, stg.RetreiveEventIsActive(1))
}

func TestLock(t *testing.T) {

	stg, mr, _ := newTestStorage(t)
	ctx := context.Background()

	token, ok, err := stg.AcquireLock(ctx, "ingest", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = stg.AcquireLock(ctx, "ingest", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("ForeignTokenKeepsLock", func(t *testing.T) {
		require.NoError(t, stg.ReleaseLock(ctx, "ingest", "not-mine"))
		assert.True(t, mr.Exists(lockPrefix+"ingest"))
	})

	t.Run("Release", func(t *testing.T) {
		require.NoError(t, stg.ReleaseLock(ctx, "ingest", token))
		assert.False(t, mr.Exists(lockPrefix+"ingest"))

		_, ok, err := stg.AcquireLock(ctx, "ingest", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Expire", func(t *testing.T) {
		_, ok, err := stg.AcquireLock(ctx, "metrics", time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		mr.FastForward(2 * time.Second)

		_, ok, err = stg.AcquireLock(ctx, "metrics", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestLoginFailures(t *testing.T) {

	stg, mr, _ := newTestStorage(t)
	ctx := context.Background()
	email := "carla@example.com"

	n, err := stg.LoginFailures(ctx, email)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 1; i <= 3; i++ {
		n, err := stg.RegisterLoginFailure(ctx, email, 15*time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, i, n)
	}

	n, err = stg.LoginFailures(ctx, email)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// 만료는 첫 실패 기준. 이후 실패가 연장하지 않음
	ttl := mr.TTL(loginFailurePrefix + email)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	mr.FastForward(16 * time.Minute)

	n, err = stg.LoginFailures(ctx, email)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = stg.RegisterLoginFailure(ctx, email, 15*time.Minute)
	require.NoError(t, err)
	require.NoError(t, stg.ResetLoginFailures(ctx, email))

	n, err = stg.LoginFailures(ctx, email)
	require.NoError(t, err)
	assert.Zero(t, n)

	t.Run("CounterWithoutTTL", func(t *testing.T) {
		stuck := "stuck@example.com"
		require.NoError(t, mr.Set(loginFailurePrefix+stuck, "4"))

		n, err := stg.RegisterLoginFailure(ctx, stuck, 15*time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, 5, n)
		assert.Greater(t, mr.TTL(loginFailurePrefix+stuck), time.Duration(0))

		mr.FastForward(16 * time.Minute)
		n, err = stg.LoginFailures(ctx, stuck)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("RedisDown", func(t *testing.T) {
		mr.SetError("LOADING")
		defer mr.SetError("")

		_, err := stg.RegisterLoginFailure(ctx, email, 15*time.Minute)
		assert.Error(t, err)
	})
}
