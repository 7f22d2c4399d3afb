package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	config "github.com/veriflab/matchengine/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given no external configuration", t, func() {
		os.Unsetenv("VERIFLAB_CONFIG")

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
		})
	})

	Convey("Given environment overrides", t, func() {
		t.Setenv("VERIFLAB_ADDR", ":7070")
		t.Setenv("VERIFLAB_SCORING_REJECT_THRESHOLD", "30")

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.Scoring.RejectThreshold, ShouldEqual, 30)
		})
	})

	Convey("Given a YAML config file", t, func() {
		os.Unsetenv("VERIFLAB_ADDR")
		os.Unsetenv("VERIFLAB_SCORING_REJECT_THRESHOLD")
		dir := t.TempDir()
		path := filepath.Join(dir, "veriflab.yaml")
		yaml := "addr: \":6060\"\nscoring:\n  auto_validation_threshold: 90\n  warning_threshold: 70\n  reject_threshold: 50\n  auto_validation_enabled: true\n  fuzzy_matching_enabled: false\n  accent_insensitive: true\n  max_processing_time_sec: 10\n"
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("VERIFLAB_CONFIG", path)

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.Scoring.AutoValidationThreshold, ShouldEqual, 90)
			So(cfg.Scoring.FuzzyMatchingEnabled, ShouldBeFalse)
		})
	})

	Convey("Given a config file violating the threshold ordering", t, func() {
		os.Unsetenv("VERIFLAB_ADDR")
		os.Unsetenv("VERIFLAB_SCORING_REJECT_THRESHOLD")
		dir := t.TempDir()
		path := filepath.Join(dir, "veriflab.yaml")
		yaml := "scoring:\n  auto_validation_threshold: 50\n  warning_threshold: 60\n  reject_threshold: 40\n  max_processing_time_sec: 30\n"
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("VERIFLAB_CONFIG", path)

		Convey("When loading", func() {
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}
