package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kudos/repository/testutil"
	"kudos/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing user returns nil", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("create grants the full allowance", func(t *testing.T) {
		user, err := repo.Create(ctx, 1, "alice", 500)
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, int64(500), user.WeeklyBalance)
		assert.Equal(t, int64(500), user.WeeklyBalanceCap)
		assert.Equal(t, int64(0), user.LifetimeReceived)
		assert.Nil(t, user.LastResetAt)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		_, err := repo.Create(ctx, 1, "alice", 500)
		assert.Error(t, err)
	})
}

func TestUserRepository_DeductBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "alice", 10)
	require.NoError(t, err)

	t.Run("successful deduction", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 1, 2)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(8), user.WeeklyBalance)
	})

	t.Run("overdraw is rejected and balance untouched", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 1, 100)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrInsufficientBalance))

		user, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(8), user.WeeklyBalance)
	})

	t.Run("missing user", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 999, 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrUserNotFound))
	})
}

// Concurrent debits against the same balance: the conditional update must
// let exactly floor(balance/amount) of them through and never drive the
// balance negative.
func TestUserRepository_DeductBalance_Concurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "alice", 10)
	require.NoError(t, err)

	const attempts = 20
	var successes int64
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.DeductBalance(ctx, 1, 2); err == nil {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), successes)

	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.WeeklyBalance)
}

func TestUserRepository_AddBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "alice", 500)
	require.NoError(t, err)

	t.Run("credits may exceed the cap until the next reset", func(t *testing.T) {
		err := repo.AddBalance(ctx, 1, 3)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(503), user.WeeklyBalance)
	})

	t.Run("missing user", func(t *testing.T) {
		err := repo.AddBalance(ctx, 999, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrUserNotFound))
	})
}

func TestUserRepository_AddLifetimeReceived(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "alice", 500)
	require.NoError(t, err)

	err = repo.AddLifetimeReceived(ctx, 1, 1)
	require.NoError(t, err)
	err = repo.AddLifetimeReceived(ctx, 1, 1)
	require.NoError(t, err)

	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.LifetimeReceived)

	// Weekly balance is untouched by lifetime credits
	assert.Equal(t, int64(500), user.WeeklyBalance)
}

func TestUserRepository_ResetWeeklyBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "alice", 500)
	require.NoError(t, err)
	require.NoError(t, repo.DeductBalance(ctx, 1, 495))

	now := time.Now().UTC()
	weekStart := now.Truncate(24 * time.Hour)

	t.Run("reset restores the cap", func(t *testing.T) {
		applied, err := repo.ResetWeeklyBalance(ctx, 1, weekStart, now)
		require.NoError(t, err)
		assert.True(t, applied)

		user, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(500), user.WeeklyBalance)
		require.NotNil(t, user.LastResetAt)
	})

	t.Run("second reset in the same week is a no-op", func(t *testing.T) {
		applied, err := repo.ResetWeeklyBalance(ctx, 1, weekStart, now)
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("reset user is no longer due", func(t *testing.T) {
		due, err := repo.GetResetDue(ctx, weekStart)
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("user becomes due again at the next boundary", func(t *testing.T) {
		nextWeek := weekStart.AddDate(0, 0, 7)

		due, err := repo.GetResetDue(ctx, nextWeek)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, int64(1), due[0].ID)

		applied, err := repo.ResetWeeklyBalance(ctx, 1, nextWeek, nextWeek.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, applied)
	})
}
