// Package search provides web search providers used to ground travel answers.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/phuy1125/vin2/internal/domain"
)

// Provider runs a web search.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error)

// Search calls f.
func (f ProviderFunc) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	return f(ctx, query, maxResults)
}

// CachedProvider memoizes successful searches for a TTL and collapses
// concurrent identical queries into one upstream call.
type CachedProvider struct {
	next    Provider
	cache   *cache.Cache
	enabled bool
	timeout time.Duration
	group   singleflight.Group
}

const defaultSharedCallTimeout = 30 * time.Second

// NewCachedProvider wraps next. A non-positive ttl disables caching but keeps
// request collapsing. The collapsed upstream call does not inherit any single
// caller's cancellation and is bounded by callTimeout instead.
func NewCachedProvider(next Provider, ttl, callTimeout time.Duration) *CachedProvider {
	if callTimeout <= 0 {
		callTimeout = defaultSharedCallTimeout
	}
	return &CachedProvider{
		next:    next,
		cache:   cache.New(ttl, 2*ttl),
		enabled: ttl > 0,
		timeout: callTimeout,
	}
}

// Search implements Provider.
func (p *CachedProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	key := fmt.Sprintf("%d|%s", maxResults, strings.ToLower(strings.TrimSpace(query)))
	if v, ok := p.cache.Get(key); ok {
		return v.([]domain.SearchResult), nil
	}

	ch := p.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		results, err := p.next.Search(callCtx, query, maxResults)
		if err != nil {
			return nil, err
		}
		if p.enabled {
			p.cache.Set(key, results, cache.DefaultExpiration)
		}
		return results, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.SearchResult), nil
	}
}
