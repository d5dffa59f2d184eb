// package services implements clients for the provider API and the
// cross-reference dataset host
package services

import (
	"context"

	"github.com/Sittravell/MalTrackarr/internal/models"
)

// TokenStore persists credentials and token state between exchanges.
// Implemented by [credfile.Store]; tests substitute an in-memory store.
type TokenStore interface {
	// Load reads the stored credentials and token state.
	Load() (*models.Credentials, error)

	// Save persists the credentials after a successful token exchange.
	Save(*models.Credentials) error
}

// WatchlistService is the provider-facing surface of the pipeline.
type WatchlistService interface {
	// EnsureToken returns a valid access token, performing a token
	// exchange and persisting the result when the stored one is
	// missing or expired.
	EnsureToken(ctx context.Context) (string, error)

	// AnimeList fetches every page of the user's list for the given
	// status, preserving provider order.
	AnimeList(ctx context.Context, username, status string) ([]models.WatchlistEntry, error)
}

// CrossRefService resolves provider ids to cross-reference identifiers.
type CrossRefService interface {
	// Fetch returns the full provider-id keyed mapping.
	Fetch(ctx context.Context) (map[int]models.DatasetEntry, error)
}
