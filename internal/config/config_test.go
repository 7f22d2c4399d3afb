package config_test

import (
	"testing"

	config "github.com/veriflab/matchengine/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("Then service defaults are sane", func() {
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
			So(cfg.DeclarationQueueSize, ShouldBeGreaterThan, 0)
			So(cfg.ShardCount, ShouldBeGreaterThan, 0)
		})

		Convey("Then the default scoring config is valid", func() {
			So(cfg.Scoring.Validate(), ShouldBeNil)
			So(cfg.Scoring.AutoValidationThreshold, ShouldEqual, 85)
			So(cfg.Scoring.WarningThreshold, ShouldEqual, 60)
			So(cfg.Scoring.RejectThreshold, ShouldEqual, 40)
			So(cfg.Scoring.AutoValidationEnabled, ShouldBeTrue)
			So(cfg.Scoring.FuzzyMatchingEnabled, ShouldBeTrue)
			So(cfg.Scoring.AccentInsensitive, ShouldBeTrue)
			So(cfg.Scoring.MaxProcessingTimeSec, ShouldEqual, 30)
		})
	})
}

func TestScoringValidate(t *testing.T) {
	Convey("Given a scoring configuration", t, func() {
		s := config.DefaultScoring()

		Convey("When the threshold ordering is violated", func() {
			s.AutoValidationThreshold = 50
			s.WarningThreshold = 60

			Convey("Then validation fails with ErrInvalidConfig", func() {
				err := s.Validate()
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "invalid config")
			})
		})

		Convey("When thresholds are equal", func() {
			s.WarningThreshold = s.RejectThreshold
			So(s.Validate(), ShouldNotBeNil)
		})

		Convey("When a threshold is out of range", func() {
			s.AutoValidationThreshold = 101
			So(s.Validate(), ShouldNotBeNil)

			s = config.DefaultScoring()
			s.RejectThreshold = -1
			So(s.Validate(), ShouldNotBeNil)
		})

		Convey("When the processing deadline is not positive", func() {
			s.MaxProcessingTimeSec = 0
			So(s.Validate(), ShouldNotBeNil)
		})
	})
}
