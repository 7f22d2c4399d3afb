package config_test

import (
	"sync"
	"testing"

	config "github.com/veriflab/matchengine/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProvider(t *testing.T) {
	Convey("Given a provider seeded with defaults", t, func() {
		p, err := config.NewProvider(config.DefaultScoring())
		So(err, ShouldBeNil)

		Convey("When reading the current snapshot", func() {
			So(p.Current().AutoValidationThreshold, ShouldEqual, 85)
		})

		Convey("When applying a valid update", func() {
			next := config.DefaultScoring()
			next.AutoValidationThreshold = 90
			So(p.Update(next), ShouldBeNil)
			So(p.Current().AutoValidationThreshold, ShouldEqual, 90)
		})

		Convey("When applying an update that violates the ordering", func() {
			bad := config.DefaultScoring()
			bad.AutoValidationThreshold = 50
			bad.WarningThreshold = 60

			err := p.Update(bad)

			Convey("Then the update is rejected", func() {
				So(err, ShouldNotBeNil)
			})

			Convey("And the previous configuration remains active", func() {
				So(p.Current().AutoValidationThreshold, ShouldEqual, 85)
				So(p.Current().WarningThreshold, ShouldEqual, 60)
			})
		})

		Convey("When snapshots are read while updates race", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					next := config.DefaultScoring()
					next.AutoValidationThreshold = 80 + n
					next.WarningThreshold = 60
					_ = p.Update(next)
				}(i)
			}
			errs := make(chan error, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					// Every snapshot must be internally consistent.
					errs <- p.Current().Validate()
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}
		})
	})

	Convey("Given an invalid seed", t, func() {
		bad := config.DefaultScoring()
		bad.RejectThreshold = 99

		Convey("Then the provider refuses to start", func() {
			_, err := config.NewProvider(bad)
			So(err, ShouldNotBeNil)
		})
	})
}
