package testswings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fungoverse/fungo/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	eventIDDivisor     = 10000
	swingTypeDivisor   = 8
)

// Bat speed ranges in mph per hitter profile.
const (
	casualMin     = 40.0
	casualRange   = 15.0
	averageMin    = 55.0
	averageRange  = 15.0
	solidMin      = 70.0
	solidRange    = 15.0
	strongMin     = 85.0
	strongRange   = 12.0
	eliteMin      = 97.0
	eliteRange    = 10.0
	moonshotMin   = 107.0
	moonshotRange = 13.0
	wideMin       = 40.0
	wideRange     = 80.0
)

// Attack angle and angular velocity ranges.
const (
	attackAngleMin   = -10.0
	attackAngleRange = 55.0
	omegaPeakMin     = 500.0
	omegaPeakRange   = 3000.0
)

// Constants for hitter profile cases.
const (
	caseCasualHitter   = 0
	caseAverageHitter  = 1
	caseSolidHitter    = 2
	caseStrongHitter   = 3
	caseEliteHitter    = 4
	caseMoonshotHitter = 5
	caseWideRangeLow   = 6
	caseWideRangeHigh  = 7
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateSwings creates the specified number of swings with unique player IDs.
func generateSwings(ctx context.Context, config *Config, stats *Stats) ([]Swing, error) {
	logger.Get().Info(ctx, "generating swings with unique player IDs", logger.Int("numSwings", config.NumSwings))

	swings := make([]Swing, config.NumSwings)

	// Pre-allocate player IDs to ensure uniqueness
	playerIDs := make([]string, config.NumSwings)
	for i := 0; i < config.NumSwings; i++ {
		playerIDs[i] = uuid.New().String()
	}

	// Generate swings concurrently
	type swingResult struct {
		index int
		swing Swing
		err   error
	}

	resultChan := make(chan swingResult, config.NumSwings)

	// Use worker pool for swing generation
	workerCount := minInt(config.Workers, config.NumSwings)
	swingsPerWorker := config.NumSwings / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * swingsPerWorker
		end := start + swingsPerWorker
		if worker == workerCount-1 {
			end = config.NumSwings // Last worker gets remaining swings
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- swingResult{index: i, err: ctx.Err()}
					return
				default:
					swing := generateSingleSwing(i, playerIDs[i])
					resultChan <- swingResult{index: i, swing: swing, err: nil}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumSwings; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during swing generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate swing %d: %w", result.index, result.err)
			}
			swings[result.index] = result.swing
		}
	}

	stats.SwingsGenerated = len(swings)
	logger.Get().Info(ctx, "generated swings successfully", logger.Int("count", len(swings)))

	return swings, nil
}

// generateSingleSwing creates a single swing with the given index and player ID.
func generateSingleSwing(index int, playerID string) Swing {
	batSpeed := generateVariedBatSpeed()

	// Attack angle across the realistic swing plane, launch-friendly and not
	attackAngle := attackAngleMin + getRandomFloat()*attackAngleRange

	// Angular velocity loosely tracks bat speed but keeps its own spread
	omegaPeak := omegaPeakMin + getRandomFloat()*omegaPeakRange

	// Generate unique event ID
	randNum, _ := rand.Int(rand.Reader, big.NewInt(eventIDDivisor))
	eventID := "swing_" + strconv.FormatInt(int64(index), 10) + "_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + strconv.FormatInt(randNum.Int64(), 10)

	return Swing{
		EventID:        eventID,
		PlayerID:       playerID,
		BatSpeedMPH:    batSpeed,
		AttackAngleDeg: attackAngle,
		OmegaPeakDPS:   omegaPeak,
	}
}

// generateVariedBatSpeed creates a bat speed with varied hitter distribution.
func generateVariedBatSpeed() float64 {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(swingTypeDivisor))
	switch randNum.Int64() {
	case caseCasualHitter:
		// Casual hitters (40 - 55 mph)
		return casualMin + getRandomFloat()*casualRange
	case caseAverageHitter:
		// Average hitters (55 - 70 mph) - most common
		return averageMin + getRandomFloat()*averageRange
	case caseSolidHitter:
		// Solid contact hitters (70 - 85 mph)
		return solidMin + getRandomFloat()*solidRange
	case caseStrongHitter:
		// Strong hitters (85 - 97 mph)
		return strongMin + getRandomFloat()*strongRange
	case caseEliteHitter:
		// Elite hitters (97 - 107 mph) - rare
		return eliteMin + getRandomFloat()*eliteRange
	case caseMoonshotHitter:
		// Moonshot territory (107 - 120 mph) - very rare
		return moonshotMin + getRandomFloat()*moonshotRange
	case caseWideRangeLow, caseWideRangeHigh:
		// Random across full range (40 - 120 mph)
		return wideMin + getRandomFloat()*wideRange
	default:
		return wideMin + getRandomFloat()*wideRange
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
