// Package types contains common types used across the application
package types

// Entry represents a longest-drive leaderboard entry
type Entry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	DistanceFt float64 `json:"distance_ft"`
}
