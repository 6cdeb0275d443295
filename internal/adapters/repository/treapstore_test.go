package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestUpdateBest(t *testing.T) {
	convey.Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := NewTreapStore(ctx)

		convey.Convey("When a player's first swing is recorded", func() {
			updated, err := s.UpdateBest(ctx, "player-1", 250.0, "evt-1", "good")

			convey.Convey("Then it should count as an improvement", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(updated, convey.ShouldBeTrue)
				convey.So(s.Count(ctx), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a shorter follow-up swing is recorded", func() {
			_, _ = s.UpdateBest(ctx, "player-1", 250.0, "evt-1", "good")
			updated, err := s.UpdateBest(ctx, "player-1", 100.0, "evt-2", "needs_work")

			convey.Convey("Then the best should be kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(updated, convey.ShouldBeFalse)

				entry, err := s.Rank(ctx, "player-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(entry.DistanceFt, convey.ShouldEqual, 250.0)
				convey.So(entry.EventID, convey.ShouldEqual, "evt-1")
			})
		})

		convey.Convey("When a longer follow-up swing is recorded", func() {
			_, _ = s.UpdateBest(ctx, "player-1", 250.0, "evt-1", "good")
			updated, err := s.UpdateBest(ctx, "player-1", 400.0, "evt-2", "good")

			convey.Convey("Then the best should be replaced", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(updated, convey.ShouldBeTrue)

				entry, err := s.Rank(ctx, "player-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(entry.DistanceFt, convey.ShouldEqual, 400.0)
				convey.So(entry.EventID, convey.ShouldEqual, "evt-2")
				convey.So(s.Count(ctx), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a tie is recorded", func() {
			_, _ = s.UpdateBest(ctx, "player-1", 250.0, "evt-1", "good")
			updated, err := s.UpdateBest(ctx, "player-1", 250.0, "evt-2", "good")

			convey.Convey("Then it should not replace the existing best", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(updated, convey.ShouldBeFalse)

				entry, err := s.Rank(ctx, "player-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(entry.EventID, convey.ShouldEqual, "evt-1")
			})
		})
	})
}

func TestRank(t *testing.T) {
	convey.Convey("Given a store with three players", t, func() {
		ctx := context.Background()
		s := NewTreapStore(ctx)
		_, _ = s.UpdateBest(ctx, "short", 100.0, "evt-s", "needs_work")
		_, _ = s.UpdateBest(ctx, "middle", 200.0, "evt-m", "needs_work")
		_, _ = s.UpdateBest(ctx, "long", 300.0, "evt-l", "good")

		convey.Convey("When ranks are queried", func() {
			longest, err1 := s.Rank(ctx, "long")
			mid, err2 := s.Rank(ctx, "middle")
			shortest, err3 := s.Rank(ctx, "short")

			convey.Convey("Then longer drives should rank earlier", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(err3, convey.ShouldBeNil)
				convey.So(longest.Rank, convey.ShouldEqual, 1)
				convey.So(mid.Rank, convey.ShouldEqual, 2)
				convey.So(shortest.Rank, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When players tie on distance", func() {
			_, _ = s.UpdateBest(ctx, "middle-twin", 200.0, "evt-t", "needs_work")

			convey.Convey("Then the tied players share a dense rank", func() {
				mid, _ := s.Rank(ctx, "middle")
				twin, _ := s.Rank(ctx, "middle-twin")
				shortest, _ := s.Rank(ctx, "short")

				convey.So(mid.Rank, convey.ShouldEqual, 2)
				convey.So(twin.Rank, convey.ShouldEqual, 2)
				convey.So(shortest.Rank, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When an unknown player is queried", func() {
			_, err := s.Rank(ctx, "nobody")

			convey.Convey("Then a not-found error should be returned", func() {
				convey.So(errors.Is(err, ErrNotFound), convey.ShouldBeTrue)
			})
		})
	})
}

func TestTopN(t *testing.T) {
	convey.Convey("Given a store with several players", t, func() {
		ctx := context.Background()
		s := NewTreapStore(ctx)
		for i := 1; i <= 5; i++ {
			_, _ = s.UpdateBest(ctx, fmt.Sprintf("player-%d", i), float64(i*100), fmt.Sprintf("evt-%d", i), "good")
		}

		convey.Convey("When the top three are requested", func() {
			entries, err := s.TopN(ctx, 3)

			convey.Convey("Then they should come back in rank order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, 3)
				convey.So(entries[0].PlayerID, convey.ShouldEqual, "player-5")
				convey.So(entries[0].Rank, convey.ShouldEqual, 1)
				convey.So(entries[1].PlayerID, convey.ShouldEqual, "player-4")
				convey.So(entries[2].PlayerID, convey.ShouldEqual, "player-3")
			})
		})

		convey.Convey("When more entries than players are requested", func() {
			entries, err := s.TopN(ctx, 100)

			convey.Convey("Then every player should be returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When a non-positive limit is requested", func() {
			_, err := s.TopN(ctx, 0)

			convey.Convey("Then an invalid limit error should be returned", func() {
				convey.So(errors.Is(err, ErrInvalidLimit), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When ties are present", func() {
			_, _ = s.UpdateBest(ctx, "player-5-twin", 500.0, "evt-5t", "good")
			entries, err := s.TopN(ctx, 3)

			convey.Convey("Then dense ranks should repeat across the tie", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(entries[0].Rank, convey.ShouldEqual, 1)
				convey.So(entries[1].Rank, convey.ShouldEqual, 1)
				convey.So(entries[2].Rank, convey.ShouldEqual, 2)
				// tie-break on player id ascending
				convey.So(entries[0].PlayerID, convey.ShouldEqual, "player-5")
				convey.So(entries[1].PlayerID, convey.ShouldEqual, "player-5-twin")
			})
		})
	})
}

func TestTreapStoreConcurrency(t *testing.T) {
	ctx := context.Background()
	s := NewTreapStore(ctx)

	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				playerID := fmt.Sprintf("player-%d-%d", w, i)
				if _, err := s.UpdateBest(ctx, playerID, float64(i), "evt", "good"); err != nil {
					t.Errorf("update failed: %v", err)
				}
				if _, err := s.TopN(ctx, 10); err != nil {
					t.Errorf("topN failed: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	if got := s.Count(ctx); got != writers*perWriter {
		t.Fatalf("expected %d players, got %d", writers*perWriter, got)
	}
}
