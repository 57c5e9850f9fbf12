package memes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"chatiefy-tui/api"

	"github.com/stretchr/testify/require"
)

// pagedBackend serves the gallery in pages keyed by the last meme id
type pagedBackend struct {
	mu      sync.Mutex
	calls   int
	lastIDs []string
	pages   map[string]pageSpec
}

type pageSpec struct {
	ids     []string
	hasMore bool
}

func newPagedBackend(t *testing.T, pages map[string]pageSpec) (*pagedBackend, *api.Client) {
	b := &pagedBackend{pages: pages}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.calls++

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		b.lastIDs = append(b.lastIDs, body["last_meme_id"])

		page := b.pages[body["last_meme_id"]]
		memes := make([]map[string]interface{}, 0, len(page.ids))
		for _, id := range page.ids {
			memes = append(memes, map[string]interface{}{
				"id":       id,
				"filename": "meme-" + id + ".jpg",
				"hunter":   "bob",
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"memes":    memes,
			"has_more": page.hasMore,
		})
	}))
	t.Cleanup(srv.Close)
	return b, api.New(srv.URL)
}

func TestLoadMorePaginates(t *testing.T) {
	b, client := newPagedBackend(t, map[string]pageSpec{
		"0": {ids: []string{"1", "2"}, hasMore: true},
		"2": {ids: []string{"3"}, hasMore: false},
	})
	g := NewGallery(client)
	ctx := context.Background()

	added, err := g.LoadMore(ctx, "token", "secret")
	require.NoError(t, err)
	require.Len(t, added, 2)
	require.True(t, g.HasMore())

	added, err = g.LoadMore(ctx, "token", "secret")
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.False(t, g.HasMore())

	all := g.Memes()
	require.Len(t, all, 3)
	require.Equal(t, "meme-3.jpg", all[2].Filename)

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Equal(t, []string{"0", "2"}, b.lastIDs)
}

func TestLoadMoreStopsWhenExhausted(t *testing.T) {
	b, client := newPagedBackend(t, map[string]pageSpec{
		"0": {ids: []string{"1"}, hasMore: false},
	})
	g := NewGallery(client)
	ctx := context.Background()

	_, err := g.LoadMore(ctx, "token", "secret")
	require.NoError(t, err)

	// Exhausted galleries issue no further requests
	added, err := g.LoadMore(ctx, "token", "secret")
	require.NoError(t, err)
	require.Nil(t, added)

	b.mu.Lock()
	calls := b.calls
	b.mu.Unlock()
	require.Equal(t, 1, calls)
}

func TestResetRestartsPagination(t *testing.T) {
	_, client := newPagedBackend(t, map[string]pageSpec{
		"0": {ids: []string{"1"}, hasMore: false},
	})
	g := NewGallery(client)
	ctx := context.Background()

	_, err := g.LoadMore(ctx, "token", "secret")
	require.NoError(t, err)
	require.False(t, g.HasMore())

	g.Reset()
	require.True(t, g.HasMore())
	require.Empty(t, g.Memes())

	added, err := g.LoadMore(ctx, "token", "secret")
	require.NoError(t, err)
	require.Len(t, added, 1)
}

func TestLoadMoreSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	g := NewGallery(api.New(srv.URL))
	_, err := g.LoadMore(context.Background(), "token", "secret")
	require.Error(t, err)

	// A failed page does not advance the cursor or flip has_more
	require.True(t, g.HasMore())
	require.Empty(t, g.Memes())
}
