package testswings

import "time"

// Config holds configuration for the swing traffic test
type Config struct {
	BaseURL     string        // Base URL of the service
	NumSwings   int           // Number of swings to generate
	TopN        int           // Number of top entries to fetch
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for swings
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
	WatchStream bool          // Verify deliveries over the live stream
}

// Swing represents a swing to be submitted
type Swing struct {
	EventID        string  `json:"event_id"`
	PlayerID       string  `json:"player_id"`
	BatSpeedMPH    float64 `json:"bat_speed_mph"`
	AttackAngleDeg float64 `json:"attack_angle_deg"`
	OmegaPeakDPS   float64 `json:"omega_peak_dps"`
}

// Entry represents a leaderboard entry
type Entry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	DistanceFt float64 `json:"distance_ft"`
}

// Derived mirrors the computed readout returned with each accepted swing
type Derived struct {
	DistanceFt     float64 `json:"distance_ft"`
	Label          string  `json:"label"`
	Zone           string  `json:"zone"`
	Milestone      string  `json:"milestone"`
	ProgressToNext float64 `json:"progress_to_next"`
	Feedback       string  `json:"feedback"`
}

// AckResponse represents the response from swing submission
type AckResponse struct {
	Status    string   `json:"status"`
	Duplicate bool     `json:"duplicate"`
	EventID   string   `json:"event_id"`
	Derived   *Derived `json:"derived,omitempty"`
}

// Stats holds test statistics
type Stats struct {
	SwingsGenerated    int
	SwingsSubmitted    int
	SwingsSuccessful   int
	SwingsDuplicate    int
	SwingsFailed       int
	StreamDeliveries   int
	RankingsRetrieved  int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
