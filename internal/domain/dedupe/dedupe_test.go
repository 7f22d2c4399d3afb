package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/veriflab/matchengine/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDeduper(t *testing.T) {
	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(100))
		ctx := context.Background()

		Convey("When a declaration ID is recorded for the first time", func() {
			So(d.SeenAndRecord(ctx, "decl-1"), ShouldBeFalse)

			Convey("Then the same ID is reported as a duplicate", func() {
				So(d.SeenAndRecord(ctx, "decl-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an ID is unrecorded after a failed enqueue", func() {
			So(d.SeenAndRecord(ctx, "decl-2"), ShouldBeFalse)
			d.Unrecord(ctx, "decl-2")

			Convey("Then the ID may be retried", func() {
				So(d.SeenAndRecord(ctx, "decl-2"), ShouldBeFalse)
			})
		})

		Convey("When more IDs are recorded than the bound allows", func() {
			small := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10))
			for i := 0; i < 25; i++ {
				So(small.SeenAndRecord(ctx, fmt.Sprintf("decl-%d", i)), ShouldBeFalse)
			}

			Convey("Then the cache stays at its bound", func() {
				So(small.Size(), ShouldEqual, 10)
			})

			Convey("And the oldest IDs were evicted", func() {
				So(small.SeenAndRecord(ctx, "decl-0"), ShouldBeFalse)
			})
		})

		Convey("When recorded concurrently", func() {
			var wg sync.WaitGroup
			duplicates := make(chan bool, 50)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					duplicates <- d.SeenAndRecord(ctx, "shared-id")
				}()
			}
			wg.Wait()
			close(duplicates)

			Convey("Then exactly one caller records it", func() {
				fresh := 0
				for dup := range duplicates {
					if !dup {
						fresh++
					}
				}
				So(fresh, ShouldEqual, 1)
			})
		})
	})
}
