package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/inhouse/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryTracker(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unbounded tracker", t, func() {
		tr := dedupe.NewInMemoryTracker()

		Convey("When a key is recorded twice", func() {
			first := tr.SeenAndRecord(ctx, "match-1")
			second := tr.SeenAndRecord(ctx, "match-1")

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(tr.Size(), ShouldEqual, 1)
				So(tr.Seen(ctx, "match-1"), ShouldBeTrue)
			})
		})

		Convey("When a key is unrecorded", func() {
			tr.SeenAndRecord(ctx, "match-1")
			tr.Unrecord(ctx, "match-1")
			tr.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(tr.Size(), ShouldEqual, 0)
				So(tr.SeenAndRecord(ctx, "match-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a tracker bounded to three keys", t, func() {
		tr := dedupe.NewInMemoryTracker(dedupe.WithMaxSize(3))
		for i := range 4 {
			tr.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}

		Convey("Then the oldest key was evicted", func() {
			So(tr.Size(), ShouldEqual, 3)
			So(tr.Seen(ctx, "k0"), ShouldBeFalse)
			So(tr.Seen(ctx, "k3"), ShouldBeTrue)
		})

		Convey("When a middle key is unrecorded and a new one added", func() {
			tr.Unrecord(ctx, "k2")
			tr.SeenAndRecord(ctx, "k4")

			Convey("Then eviction still removes the oldest remaining key", func() {
				So(tr.Seen(ctx, "k1"), ShouldBeFalse)
				So(tr.Seen(ctx, "k3"), ShouldBeTrue)
				So(tr.Seen(ctx, "k4"), ShouldBeTrue)
			})
		})
	})

	Convey("Given concurrent callers racing on one key", t, func() {
		tr := dedupe.NewInMemoryTracker()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !tr.SeenAndRecord(ctx, "match-x") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one caller records it", func() {
			So(fresh, ShouldEqual, 1)
		})
	})
}
