// Package repository defines the longest-drive leaderboard store.
package repository

import "context"

// Entry represents a leaderboard row.
type Entry struct {
	Rank       int
	PlayerID   string
	DistanceFt float64
	EventID    string
	Label      string
}

// Store provides read/write access to the ranking state.
type Store interface {
	// UpdateBest sets a new best distance for a player if longer than the
	// existing one, recording the swing that produced it.
	// Returns true if the store updated the record, false otherwise.
	UpdateBest(ctx context.Context, playerID string, distanceFt float64, eventID, label string) (bool, error)

	// Rank returns the current rank and best distance for a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (Entry, error)

	// TopN returns the top-N entries ordered by distance desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of players tracked in the leaderboard.
	Count(ctx context.Context) int
}
