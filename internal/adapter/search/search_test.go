package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuy1125/vin2/internal/domain"
)

func TestTavilyClientSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "thời tiết Đà Lạt", req.Query)
		assert.Equal(t, 3, req.MaxResults)
		assert.Equal(t, "advanced", req.SearchDepth)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[
			{"title":"A","url":"https://a","content":"a"},
			{"title":"B","url":"https://b","content":"b"},
			{"title":"C","url":"https://c","content":"c"},
			{"title":"D","url":"https://d","content":"d"}]}`)
	}))
	defer server.Close()

	client := NewTavilyClient(server.URL, "key", 0, time.Second)
	results, err := client.Search(context.Background(), "thời tiết Đà Lạt", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, domain.SearchResult{Title: "A", Snippet: "a", URL: "https://a"}, results[0])
}

func TestTavilyClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"bad key"}`)
	}))
	defer server.Close()

	_, err := NewTavilyClient(server.URL, "key", 0, time.Second).Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCachedProviderMemoizes(t *testing.T) {
	var calls atomic.Int32
	next := ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
		calls.Add(1)
		return []domain.SearchResult{{Title: query}}, nil
	})
	p := NewCachedProvider(next, time.Minute, time.Second)

	for i := 0; i < 3; i++ {
		results, err := p.Search(context.Background(), " Huế ", 3)
		require.NoError(t, err)
		assert.Equal(t, " Huế ", results[0].Title)
	}
	_, err := p.Search(context.Background(), "huế", 3)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = p.Search(context.Background(), "huế", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int32
	next := ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boom")
		}
		return []domain.SearchResult{{Title: "ok"}}, nil
	})
	p := NewCachedProvider(next, time.Minute, time.Second)

	_, err := p.Search(context.Background(), "q", 3)
	require.Error(t, err)
	results, err := p.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", results[0].Title)
}

func TestCachedProviderWithoutTTL(t *testing.T) {
	var calls atomic.Int32
	next := ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
		calls.Add(1)
		return nil, nil
	})
	p := NewCachedProvider(next, 0, time.Second)
	_, _ = p.Search(context.Background(), "q", 3)
	_, _ = p.Search(context.Background(), "q", 3)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachedProviderSharedCallSurvivesCallerCancel(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	upstreamErr := make(chan error, 1)
	next := ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
		calls.Add(1)
		close(started)
		<-release
		upstreamErr <- ctx.Err()
		return []domain.SearchResult{{Title: "Sa Pa"}}, nil
	})
	p := NewCachedProvider(next, time.Minute, 5*time.Second)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := p.Search(firstCtx, "sa pa", 3)
		firstDone <- err
	}()
	<-started

	secondDone := make(chan []domain.SearchResult, 1)
	go func() {
		results, err := p.Search(context.Background(), "sa pa", 3)
		assert.NoError(t, err)
		secondDone <- results
	}()

	cancelFirst()
	require.ErrorIs(t, <-firstDone, context.Canceled)
	close(release)

	require.NoError(t, <-upstreamErr)
	results := <-secondDone
	require.Len(t, results, 1)
	assert.Equal(t, "Sa Pa", results[0].Title)
	assert.Equal(t, int32(1), calls.Load())
}
