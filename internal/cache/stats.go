// Package cache stores computed per-student attendance statistics.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"classrecord/internal/attendance"
)

const (
	keyPrefix     = "classrecord:stats:"
	versionPrefix = "classrecord:stats-version:"
)

func statsKey(sectionCourseID string) string   { return keyPrefix + sectionCourseID }
func versionKey(sectionCourseID string) string { return versionPrefix + sectionCourseID }

// RedisStats keeps one hash per section, one field per date range, so a
// section can be invalidated with a single DEL. A counter per section is
// bumped on every invalidation and watched by Set.
type RedisStats struct {
	client *redis.Client
	ttl    time.Duration
}

var _ attendance.StatsCache = (*RedisStats)(nil)

// NewRedisStats creates a Redis-backed cache whose entries live for ttl.
func NewRedisStats(client *redis.Client, ttl time.Duration) *RedisStats {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStats{client: client, ttl: ttl}
}

func (c *RedisStats) Get(ctx context.Context, sectionCourseID, rangeKey string) ([]attendance.StudentStats, bool, error) {
	raw, err := c.client.HGet(ctx, statsKey(sectionCourseID), rangeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stats []attendance.StudentStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, err
	}
	return stats, true, nil
}

func (c *RedisStats) Version(ctx context.Context, sectionCourseID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(sectionCourseID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisStats) Set(ctx context.Context, sectionCourseID, rangeKey string, version int64, stats []attendance.StudentStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	key, verKey := statsKey(sectionCourseID), versionKey(sectionCourseID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return attendance.ErrStaleStats
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, rangeKey, raw)
			p.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, verKey)
	if errors.Is(err, redis.TxFailedErr) {
		return attendance.ErrStaleStats
	}
	return err
}

func (c *RedisStats) Invalidate(ctx context.Context, sectionCourseID string) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, versionKey(sectionCourseID))
		p.Del(ctx, statsKey(sectionCourseID))
		return nil
	})
	return err
}

// Memory is a process-local cache used when Redis is not configured.
type Memory struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	entries  map[string]map[string]memEntry
	versions map[string]int64
}

type memEntry struct {
	stats   []attendance.StudentStats
	expires time.Time
}

var _ attendance.StatsCache = (*Memory)(nil)

// NewMemory creates an in-process cache.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Memory{
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]map[string]memEntry),
		versions: make(map[string]int64),
	}
}

func (m *Memory) Get(_ context.Context, sectionCourseID, rangeKey string) ([]attendance.StudentStats, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sectionCourseID][rangeKey]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expires) {
		delete(m.entries[sectionCourseID], rangeKey)
		return nil, false, nil
	}
	out := make([]attendance.StudentStats, len(e.stats))
	copy(out, e.stats)
	return out, true, nil
}

func (m *Memory) Version(_ context.Context, sectionCourseID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[sectionCourseID], nil
}

func (m *Memory) Set(_ context.Context, sectionCourseID, rangeKey string, version int64, stats []attendance.StudentStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[sectionCourseID] != version {
		return attendance.ErrStaleStats
	}
	section, ok := m.entries[sectionCourseID]
	if !ok {
		section = make(map[string]memEntry)
		m.entries[sectionCourseID] = section
	}
	cp := make([]attendance.StudentStats, len(stats))
	copy(cp, stats)
	section[rangeKey] = memEntry{stats: cp, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, sectionCourseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sectionCourseID)
	m.versions[sectionCourseID]++
	return nil
}
