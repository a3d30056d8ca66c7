package limiter

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local limiter for single-replica deployments
// (--login-store=memory) and tests.
type Memory struct {
	mu      sync.Mutex
	policy  Policy
	now     func() time.Time
	entries map[string]*entry
}

type entry struct {
	fails        int
	blockedUntil time.Time
	updatedAt    time.Time
}

// NewMemory constructs an in-memory limiter.
func NewMemory(p Policy, now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{policy: p, now: now, entries: make(map[string]*entry)}
}

func key(username string, ipHash []byte) string { return username + "\x00" + string(ipHash) }

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key(username, ipHash)]
	if !ok {
		return true, 0, nil
	}
	if now := m.now(); e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success implements Limiter.
func (m *Memory) Success(_ context.Context, username string, ipHash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key(username, ipHash))
	return nil
}

// Failure implements Limiter.
func (m *Memory) Failure(_ context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	k := key(username, ipHash)
	e, ok := m.entries[k]
	if !ok || now.Sub(e.updatedAt) > m.policy.Window {
		e = &entry{}
		m.entries[k] = e
	}
	e.fails++
	e.updatedAt = now
	if e.fails < m.policy.MaxFails {
		return false, 0, nil
	}
	e.blockedUntil = now.Add(m.policy.BlockFor)
	return true, m.policy.BlockFor, nil
}
