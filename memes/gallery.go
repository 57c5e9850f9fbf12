package memes

import (
	"context"
	"sync"

	"chatiefy-tui/api"
	"chatiefy-tui/models"
)

// firstPageID is the cursor value for the first gallery page
const firstPageID = "0"

// Gallery holds the append-only meme list and its pagination cursor.
// Pages are fetched on demand; the cursor advances to the id of the last
// meme of each page.
type Gallery struct {
	mu      sync.Mutex
	api     *api.Client
	memes   []models.Meme
	lastID  string
	hasMore bool
	loading bool
}

// NewGallery creates an empty gallery
func NewGallery(client *api.Client) *Gallery {
	return &Gallery{
		api:     client,
		lastID:  firstPageID,
		hasMore: true,
	}
}

// LoadMore fetches the next page and appends it. It returns the newly
// added memes, or nil when a load is already in flight or the gallery is
// exhausted.
func (g *Gallery) LoadMore(ctx context.Context, authToken, auth string) ([]models.Meme, error) {
	g.mu.Lock()
	if g.loading || !g.hasMore {
		g.mu.Unlock()
		return nil, nil
	}
	g.loading = true
	lastID := g.lastID
	g.mu.Unlock()

	resp, err := g.api.Memes(ctx, authToken, auth, lastID)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.loading = false
	if err != nil {
		return nil, err
	}

	g.memes = append(g.memes, resp.Memes...)
	g.hasMore = resp.HasMore
	if len(resp.Memes) > 0 {
		g.lastID = resp.Memes[len(resp.Memes)-1].ID
	}
	return resp.Memes, nil
}

// Memes returns a copy of the loaded memes in arrival order
func (g *Gallery) Memes() []models.Meme {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Meme, len(g.memes))
	copy(out, g.memes)
	return out
}

// HasMore reports whether another page may be available
func (g *Gallery) HasMore() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hasMore
}

// Reset clears the gallery back to the first page
func (g *Gallery) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.memes = nil
	g.lastID = firstPageID
	g.hasMore = true
	g.loading = false
}
