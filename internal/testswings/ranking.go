package testswings

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveRankings retrieves rankings for all players concurrently.
func retrieveRankings(ctx context.Context, config *Config, swings []Swing, stats *Stats) ([]Entry, error) {
	log.Printf("🏆 Retrieving rankings for %d players with %d workers...", len(swings), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Extract unique player IDs
	playerIDs := make([]string, len(swings))
	for i, swing := range swings {
		playerIDs[i] = swing.PlayerID
	}

	// Results storage
	rankings := make([]Entry, len(playerIDs))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	playerChan := make(chan int, config.Workers*WorkerChannelMultiplier) // Send indices instead of IDs
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range playerChan {
				select {
				case <-ctx.Done():
					return
				default:
					playerID := playerIDs[index]
					entry, err := retrieveSingleRanking(ctx, client, config.BaseURL, playerID)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get rank for %s: %v", playerID, err)
						}
					} else {
						rankings[index] = entry
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Ranking progress: %d/%d retrieved (success: %d, failed: %d)",
								total, len(playerIDs), ret, fail)
						} else {
							log.Printf("\r🏆 Rankings: %d/%d retrieved (success: %d, failed: %d)",
								total, len(playerIDs), ret, fail)
						}
					}
				}
			}
		}()
	}

	// Send player indices to workers
	go func() {
		defer close(playerChan)
		for i := range playerIDs {
			select {
			case <-ctx.Done():
				return
			case playerChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		log.Println() // New line after progress indicator
	}

	// Filter out empty entries (failed retrievals)
	validRankings := make([]Entry, 0, len(rankings))
	for _, entry := range rankings {
		if entry.PlayerID != "" { // Empty PlayerID indicates failed retrieval
			validRankings = append(validRankings, entry)
		}
	}

	// Update stats
	stats.RankingsRetrieved = len(validRankings)

	log.Printf(`✅ Ranking retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validRankings), int(atomic.LoadInt64(&failed)))

	return validRankings, nil
}

// retrieveSingleRanking retrieves ranking for a single player.
func retrieveSingleRanking(ctx context.Context, client *HTTPClient, baseURL, playerID string) (Entry, error) {
	url := fmt.Sprintf("%s/rank/%s", baseURL, playerID)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return Entry{}, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return Entry{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read response: %w", err)
	}

	var entry Entry
	if err := unmarshalJSON(body, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return entry, nil
}

// getLeaderboard retrieves the top N leaderboard entries.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	log.Printf("🥇 Getting top %d leaderboard entries...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/leaderboard?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var leaderboard []Entry
	if err := unmarshalJSON(body, &leaderboard); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardEntries = len(leaderboard)
	log.Printf("✅ Retrieved %d leaderboard entries", len(leaderboard))

	return leaderboard, nil
}
