package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker is a process-local Locker for single-instance deployments.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memoryEntry
	now  func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if entry, ok := m.held[key]; ok && now.Before(entry.expiresAt) {
		return nil, ErrNotAcquired
	}

	token := uuid.NewString()
	m.held[key] = memoryEntry{token: token, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if entry, ok := m.held[key]; ok && entry.token == token {
			delete(m.held, key)
		}
		return nil
	}, nil
}
