package dedupe

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	convey.Convey("Given a fresh deduper", t, func() {
		d := NewInMemoryDeduper()
		ctx := context.Background()

		convey.Convey("When an id is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "evt-1")

			convey.Convey("Then it should not be reported as seen", func() {
				convey.So(seen, convey.ShouldBeFalse)
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})

			convey.Convey("And the second occurrence should be reported as seen", func() {
				convey.So(d.SeenAndRecord(ctx, "evt-1"), convey.ShouldBeTrue)
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When distinct ids are recorded", func() {
			convey.So(d.SeenAndRecord(ctx, "evt-1"), convey.ShouldBeFalse)
			convey.So(d.SeenAndRecord(ctx, "evt-2"), convey.ShouldBeFalse)

			convey.Convey("Then each should be tracked independently", func() {
				convey.So(d.Size(), convey.ShouldEqual, 2)
			})
		})
	})
}

func TestUnrecord(t *testing.T) {
	convey.Convey("Given a deduper with a recorded id", t, func() {
		d := NewInMemoryDeduper()
		ctx := context.Background()
		convey.So(d.SeenAndRecord(ctx, "evt-1"), convey.ShouldBeFalse)

		convey.Convey("When the id is unrecorded", func() {
			d.Unrecord(ctx, "evt-1")

			convey.Convey("Then it can be recorded again", func() {
				convey.So(d.Size(), convey.ShouldEqual, 0)
				convey.So(d.SeenAndRecord(ctx, "evt-1"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When an unknown id is unrecorded", func() {
			convey.So(func() { d.Unrecord(ctx, "evt-missing") }, convey.ShouldNotPanic)
			convey.So(d.Size(), convey.ShouldEqual, 1)
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	convey.Convey("Given a deduper bounded to two ids", t, func() {
		d := NewInMemoryDeduper(WithMaxSize(2))
		ctx := context.Background()

		convey.Convey("When a third id is recorded", func() {
			convey.So(d.SeenAndRecord(ctx, "evt-1"), convey.ShouldBeFalse)
			convey.So(d.SeenAndRecord(ctx, "evt-2"), convey.ShouldBeFalse)
			convey.So(d.SeenAndRecord(ctx, "evt-3"), convey.ShouldBeFalse)

			convey.Convey("Then the oldest id should have been evicted", func() {
				convey.So(d.Size(), convey.ShouldEqual, 2)
				convey.So(d.SeenAndRecord(ctx, "evt-1"), convey.ShouldBeFalse) // forgotten, records anew
			})

			convey.Convey("And the newest ids should still be remembered", func() {
				convey.So(d.SeenAndRecord(ctx, "evt-2"), convey.ShouldBeTrue)
				convey.So(d.SeenAndRecord(ctx, "evt-3"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an id is unrecorded before its slot is reused", func() {
			convey.So(d.SeenAndRecord(ctx, "evt-1"), convey.ShouldBeFalse)
			convey.So(d.SeenAndRecord(ctx, "evt-2"), convey.ShouldBeFalse)
			d.Unrecord(ctx, "evt-1")

			convey.Convey("Then eviction should skip the stale slot without losing live ids", func() {
				convey.So(d.SeenAndRecord(ctx, "evt-3"), convey.ShouldBeFalse)
				convey.So(d.SeenAndRecord(ctx, "evt-2"), convey.ShouldBeTrue)
				convey.So(d.SeenAndRecord(ctx, "evt-3"), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given an unbounded deduper", t, func() {
		d := NewInMemoryDeduper(WithMaxSize(0))
		ctx := context.Background()

		convey.Convey("When many ids are recorded", func() {
			for i := 0; i < 1000; i++ {
				convey.So(d.SeenAndRecord(ctx, fmt.Sprintf("evt-%d", i)), convey.ShouldBeFalse)
			}

			convey.Convey("Then nothing should be evicted", func() {
				convey.So(d.Size(), convey.ShouldEqual, 1000)
				convey.So(d.SeenAndRecord(ctx, "evt-0"), convey.ShouldBeTrue)
			})
		})
	})
}

func TestDeduperConcurrency(t *testing.T) {
	d := NewInMemoryDeduper(WithMaxSize(10_000))
	ctx := context.Background()

	const goroutines = 16
	const perGoroutine = 500

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				id := fmt.Sprintf("evt-%d-%d", g, i)
				if d.SeenAndRecord(ctx, id) {
					t.Errorf("id %s reported seen on first record", id)
				}
				if !d.SeenAndRecord(ctx, id) {
					t.Errorf("id %s not reported seen on second record", id)
				}
			}
		}(g)
	}
	wg.Wait()

	if got := d.Size(); got != goroutines*perGoroutine {
		t.Fatalf("expected %d recorded ids, got %d", goroutines*perGoroutine, got)
	}
}
