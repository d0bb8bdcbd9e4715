package auth

import (
	"sync"
	"time"
)

// Rate-limited actions
const (
	ActionLogin    = "login"
	ActionRegister = "register"
)

// CounterStore counts attempts per (action, identifier) key within a window.
// Increment must be atomic per key: two concurrent calls may not both
// observe a count below the threshold that only admits one of them.
type CounterStore interface {
	Increment(action, identifier string, window time.Duration) (int, error)
	Reset(action, identifier string) error
}

// Limit is the attempt budget for one action
type Limit struct {
	MaxAttempts int
	Window      time.Duration
}

// Limiter enforces per-action attempt limits over an injectable counter
// store. When the store fails the limiter denies the attempt (fail-closed)
// so a broken backing store cannot be used to bypass login throttling.
type Limiter struct {
	store  CounterStore
	mu     sync.RWMutex
	limits map[string]Limit
}

// NewLimiter creates a limiter with the default login/register budgets
func NewLimiter(store CounterStore) *Limiter {
	return &Limiter{
		store: store,
		limits: map[string]Limit{
			ActionLogin:    {MaxAttempts: 5, Window: 5 * time.Minute},
			ActionRegister: {MaxAttempts: 3, Window: 10 * time.Minute},
		},
	}
}

// SetLimit overrides the budget for an action
func (l *Limiter) SetLimit(action string, maxAttempts int, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits[action] = Limit{MaxAttempts: maxAttempts, Window: window}
}

// limit returns the budget for an action, defaulting to the login budget
func (l *Limiter) limit(action string) Limit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if lim, ok := l.limits[action]; ok {
		return lim
	}
	return l.limits[ActionLogin]
}

// Allow records an attempt and reports whether it is under the budget.
// retryAfter is an upper bound on how long the caller should wait before
// trying again. A store error denies the attempt and is returned for
// logging.
func (l *Limiter) Allow(action, identifier string) (allowed bool, retryAfter time.Duration, err error) {
	lim := l.limit(action)

	count, err := l.store.Increment(action, identifier, lim.Window)
	if err != nil {
		return false, lim.Window, err
	}

	if count > lim.MaxAttempts {
		return false, lim.Window, nil
	}

	return true, 0, nil
}

// Reset clears the counter after a successful attempt
func (l *Limiter) Reset(action, identifier string) {
	l.store.Reset(action, identifier)
}

// MemoryCounterStore is an in-memory CounterStore for tests and
// single-process deployments that do not need counters to survive restarts.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
}

type memoryCounter struct {
	count       int
	windowStart time.Time
}

// NewMemoryCounterStore creates an empty in-memory counter store
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counters: make(map[string]*memoryCounter)}
}

// Increment bumps the counter for the key within the current window
func (s *MemoryCounterStore) Increment(action, identifier string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := action + "\x00" + identifier
	now := time.Now()

	c, ok := s.counters[key]
	if !ok || now.Sub(c.windowStart) > window {
		s.counters[key] = &memoryCounter{count: 1, windowStart: now}
		return 1, nil
	}

	c.count++
	return c.count, nil
}

// Reset clears the counter for the key
func (s *MemoryCounterStore) Reset(action, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, action+"\x00"+identifier)
	return nil
}
