// Package limiter throttles login attempts per (username, client) pair.
package limiter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether login is currently allowed and optional retry-after.
	Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, username string, ipHash []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error)
}

// Policy is the sliding-window lockout policy shared by implementations.
type Policy struct {
	Window   time.Duration // failures older than this start a new count
	MaxFails int           // failures within Window that trigger a block
	BlockFor time.Duration
}

// DefaultPolicy allows five failures per fifteen minutes.
var DefaultPolicy = Policy{Window: 15 * time.Minute, MaxFails: 5, BlockFor: 15 * time.Minute}

// Stores accepted by New.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// New returns the limiter for store. Counters in the memory store are lost
// on restart and are not shared between replicas.
func New(store string, q pgxQuerier, p Policy) (Limiter, error) {
	switch store {
	case StorePostgres, "":
		return NewPG(q, p), nil
	case StoreMemory:
		return NewMemory(p, nil), nil
	default:
		return nil, fmt.Errorf("unknown limiter store %q", store)
	}
}

// HashIP returns a stable hash of the client host so raw addresses are never stored.
// A trailing port is ignored.
func HashIP(addr string) []byte {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	h := sha256.Sum256([]byte(addr))
	return h[:]
}
