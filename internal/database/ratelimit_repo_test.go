package database

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitRepoIncrement(t *testing.T) {
	repo := NewRateLimitRepo()

	for want := 1; want <= 3; want++ {
		count, err := repo.Increment("login", "inc@example.com", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}

func TestRateLimitRepoKeysAreIndependent(t *testing.T) {
	repo := NewRateLimitRepo()

	count, err := repo.Increment("login", "keys-a@example.com", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.Increment("login", "keys-b@example.com", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.Increment("register", "keys-a@example.com", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRateLimitRepoWindowReset(t *testing.T) {
	repo := NewRateLimitRepo()

	count, err := repo.Increment("login", "window@example.com", 30*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	count, err = repo.Increment("login", "window@example.com", 30*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	time.Sleep(50 * time.Millisecond)

	// The elapsed window starts over at 1
	count, err = repo.Increment("login", "window@example.com", 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRateLimitRepoReset(t *testing.T) {
	repo := NewRateLimitRepo()

	repo.Increment("login", "reset@example.com", time.Minute)
	repo.Increment("login", "reset@example.com", time.Minute)

	require.NoError(t, repo.Reset("login", "reset@example.com"))

	count, err := repo.Increment("login", "reset@example.com", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRateLimitRepoDeleteStale(t *testing.T) {
	repo := NewRateLimitRepo()

	_, err := repo.Increment("login", "stale@example.com", time.Minute)
	require.NoError(t, err)

	n, err := repo.DeleteStale(time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	count, err := repo.Increment("login", "stale@example.com", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRateLimitRepoConcurrentIncrements(t *testing.T) {
	repo := NewRateLimitRepo()

	const workers = 8
	var wg sync.WaitGroup
	counts := make(chan int, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := repo.Increment("login", "concurrent@example.com", time.Minute)
			if err != nil {
				errs <- err
				return
			}
			counts <- count
		}()
	}
	wg.Wait()
	close(counts)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Every increment observed a distinct count; none were lost
	seen := make(map[int]bool)
	for c := range counts {
		assert.False(t, seen[c], "count %d observed twice", c)
		seen[c] = true
	}
	assert.Len(t, seen, workers)
}
