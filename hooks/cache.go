package hooks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheTime = 30 * time.Second

// Key identifies a query. Components are joined with "/" so that any change in
// a component yields a different key.
type Key []any

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, "/")
}

// Query describes one keyed fetch. A query with Enabled false is not fetched.
type Query[T any] struct {
	Key     Key
	Fetch   func(ctx context.Context) (T, error)
	Enabled bool
}

// Result is what Use returns for a query
type Result[T any] struct {
	Data     T
	Err      error
	Cached   bool // served from a stored result
	Disabled bool // the query was not enabled so nothing was fetched
}

type entry struct {
	value    any
	storedAt time.Time
}

// Cache holds successful query results for a fixed time and collapses
// concurrent fetches of the same key into one.
type Cache struct {
	ttl     time.Duration
	nowTime func() time.Time
	group   singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

// CacheOption defines a function type to modify the Cache instance.
type CacheOption func(*Cache)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CacheOption {
	return func(c *Cache) {
		c.nowTime = nowFunc
	}
}

// NewCache creates a cache retaining results for ttl. A non-positive ttl uses
// DefaultCacheTime.
func NewCache(ttl time.Duration, options ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTime
	}
	c := &Cache{
		ttl:     ttl,
		nowTime: time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.nowTime().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.nowTime()}
}

// Invalidate drops every key starting with one of prefixes, or everything when
// no prefix is given.
func (c *Cache) Invalidate(prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(prefixes) == 0 {
		c.entries = make(map[string]entry)
		return
	}
	for key := range c.entries {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				delete(c.entries, key)
				break
			}
		}
	}
}

// Delete drops exactly the given keys
func (c *Cache) Delete(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k.String())
	}
}

// Len is the number of stored entries, expired ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// partial is satisfied by results that can report missing pieces, such as
// lms.PartialResult
type partial interface {
	Complete() bool
}

// Use runs q through the cache. Identical keys in flight at the same time share
// one fetch; errors are returned to every waiter and never stored, and neither
// are incomplete partial results. The shared fetch is detached from any one
// caller's cancellation; each caller stops waiting when its own ctx is done.
func Use[T any](ctx context.Context, c *Cache, q Query[T]) Result[T] {
	if !q.Enabled {
		return Result[T]{Disabled: true}
	}
	key := q.Key.String()

	if v, ok := c.lookup(key); ok {
		if data, ok := v.(T); ok {
			return Result[T]{Data: data, Cached: true}
		}
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		data, err := q.Fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if p, ok := any(data).(partial); !ok || p.Complete() {
			c.store(key, data)
		}
		return data, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Str("key", key).Msg("query abandoned")
		return Result[T]{Err: ctx.Err()}
	case res = <-ch:
	}
	if res.Err != nil {
		log.Warn().Err(res.Err).Str("key", key).Msg("query failed")
		return Result[T]{Err: res.Err}
	}
	log.Debug().Str("key", key).Bool("shared", res.Shared).Msg("query fetched")

	data, ok := res.Val.(T)
	if !ok {
		return Result[T]{Err: fmt.Errorf("[hooks.Use] %s: unexpected result type %T", key, res.Val)}
	}
	return Result[T]{Data: data}
}
