package testswings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fungoverse/fungo/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete swing traffic test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting fungo swing test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("swings", config.NumSwings),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Bool("watchStream", config.WatchStream),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate swings
	swings, err := generateSwings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("swing generation failed: %w", err)
	}

	// Step 3: Open the live stream before submitting so no swing is missed
	var watcher *streamWatcher
	if config.WatchStream {
		watcher, err = watchStream(ctx, config)
		if err != nil {
			logger.Get().Warn(ctx, "stream watcher unavailable; skipping stream verification", logger.Error(err))
			watcher = nil
		}
	}

	// Step 4: Submit swings concurrently
	if err := submitSwings(ctx, config, swings, stats); err != nil {
		return fmt.Errorf("swing submission failed: %w", err)
	}

	// Step 5: Wait for async processing to settle
	logger.Get().Info(ctx, "waiting for swings to be processed")
	time.Sleep(ProcessingDelay)

	// Step 6: Close the stream watcher and record deliveries
	if watcher != nil {
		time.Sleep(StreamDrainDelay)
		stats.StreamDeliveries = watcher.Stop()
	}

	// Step 7: Retrieve rankings concurrently
	rankings, err := retrieveRankings(ctx, config, swings, stats)
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}

	// Step 8: Get leaderboard
	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 9: Verify results
	if err := verifyResults(ctx, config, rankings, leaderboard, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 10: Save swings to file
	if err := saveSwingsToFile(ctx, config, swings); err != nil {
		logger.Get().Warn(ctx, "failed to save swings to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveSwingsToFile saves the generated swings to a JSON file.
func saveSwingsToFile(ctx context.Context, config *Config, swings []Swing) error {
	if len(swings) == 0 {
		return fmt.Errorf("no swings to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_swings_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write swings to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, swing := range swings {
		jsonData, err := marshalJSON(swing)
		if err != nil {
			return fmt.Errorf("failed to marshal swing %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write swing %d: %w", i, err)
		}

		// Add comma except for last swing
		if i < len(swings)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "swings saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, swingsPerSecond float64

	if stats.SwingsSubmitted > 0 {
		successRate = float64(stats.SwingsSuccessful) / float64(stats.SwingsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		swingsPerSecond = float64(stats.SwingsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("swingsGenerated", stats.SwingsGenerated),
		logger.Int("swingsSubmitted", stats.SwingsSubmitted),
		logger.Int("swingsSuccessful", stats.SwingsSuccessful),
		logger.Int("swingsDuplicate", stats.SwingsDuplicate),
		logger.Int("swingsFailed", stats.SwingsFailed),
		logger.Int("streamDeliveries", stats.StreamDeliveries),
		logger.Int("rankingsRetrieved", stats.RankingsRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("swingsPerSecond", swingsPerSecond))
}
