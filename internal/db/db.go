// Package db provides PostgreSQL-backed read and write collaborators for the
// matching engine.
package db

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/group-matcher/internal/types"
)

// Store wraps a PostgreSQL connection pool and implements the engine's
// Reader and Writer collaborators.
type Store struct {
	pool  *pgxpool.Pool
	cache snapshotCache
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InvalidateUnassigned drops cached unassigned-student lists for a semester.
// The engine calls this between orchestration phases once assignments have
// been written.
func (s *Store) InvalidateUnassigned(semesterID string) {
	s.cache.invalidate(semesterID)
}

// snapshotCache memoizes unassigned-student reads per semester/major. The
// auto-resolve pipeline reads the same list several times per run; writes in
// between are handled by explicit invalidation, not TTLs.
type snapshotCache struct {
	mu      sync.RWMutex
	entries map[string][]types.StudentSnapshot
}

func cacheKey(semesterID, majorID string) string {
	return semesterID + "|" + majorID
}

func (c *snapshotCache) get(semesterID, majorID string) ([]types.StudentSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	students, ok := c.entries[cacheKey(semesterID, majorID)]
	return students, ok
}

func (c *snapshotCache) put(semesterID, majorID string, students []types.StudentSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string][]types.StudentSnapshot)
	}
	c.entries[cacheKey(semesterID, majorID)] = students
}

func (c *snapshotCache) invalidate(semesterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, semesterID+"|") {
			delete(c.entries, key)
		}
	}
}
