// internal/infra/cache/query_cache.go
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 20 * time.Second

// QueryCache is the shared read cache in front of the backend. Concurrent reads of one key
// share a single backend call, and values expire after the configured TTL.
type QueryCache struct {
	lru          *expirable.LRU[string, interface{}]
	group        singleflight.Group
	generation   atomic.Uint64
	fetchTimeout time.Duration
	log          *logrus.Entry
}

func New(size int, ttl, fetchTimeout time.Duration, log *logrus.Entry) *QueryCache {
	if size <= 0 {
		size = 1024
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &QueryCache{
		lru:          expirable.NewLRU[string, interface{}](size, nil, ttl),
		fetchTimeout: fetchTimeout,
		log:          log,
	}
}

// Key joins parts into a cache key, e.g. Key("notifications", 7) is "notifications:7".
func Key(parts ...interface{}) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}

// Fetch returns the cached value for key, joining an in-flight fetch or starting one with fn.
//
// The fetch runs under a context detached from the caller's cancellation, bounded by the
// cache's fetch timeout. A caller whose ctx ends stops waiting and gets ctx.Err() while the
// fetch completes for the remaining waiters. Errors are returned to every waiter and never cached.
func Fetch[T any](ctx context.Context, c *QueryCache, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.lru.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		c.lru.Remove(key)
	}

	// Calls started before an Invalidate carry an older generation in their flight key, so a
	// Fetch issued after a mutation never joins them.
	gen := c.generation.Load()
	ch := c.group.DoChan(fmt.Sprintf("%s@%d", key, gen), func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		v, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		// An Invalidate that ran while we were fetching wins over this result.
		if c.generation.Load() == gen {
			c.lru.Add(key, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache: value for %q has type %T", key, res.Val)
		}
		if res.Shared {
			c.log.WithField("key", key).Debug("Joined in-flight fetch")
		}
		return typed, nil
	}
}

// Invalidate drops every key starting with prefix and returns how many were removed.
func (c *QueryCache) Invalidate(prefix string) int {
	c.generation.Add(1)
	removed := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			if c.lru.Remove(k) {
				removed++
			}
		}
	}
	if removed > 0 {
		c.log.WithFields(logrus.Fields{"prefix": prefix, "removed": removed}).Debug("Cache invalidated")
	}
	return removed
}

func (c *QueryCache) Purge() {
	c.generation.Add(1)
	c.lru.Purge()
}

func (c *QueryCache) Len() int {
	return c.lru.Len()
}
