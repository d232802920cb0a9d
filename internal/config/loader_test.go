package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/fraudboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var loaderEnvKeys = []string{ //nolint:gochecknoglobals // keys touched by these tests
	config.EnvFile,
	"FRAUDBOARD_ADDR",
	"FRAUDBOARD_LOG_FORMAT",
	"FRAUDBOARD_SCORING_URL",
	"FRAUDBOARD_SCORING_TIMEOUT_MS",
	"FRAUDBOARD_ALERT_THRESHOLD",
	"FRAUDBOARD_INPUT_POLICY",
	"FRAUDBOARD_TREND_CAPACITY",
	"FRAUDBOARD_PREDICT_BURST",
}

// withEnv clears every loader key, applies kv and returns the cleanup.
func withEnv(kv map[string]string) func() {
	unset := func() {
		for _, k := range loaderEnvKeys {
			_ = os.Unsetenv(k)
		}
	}
	unset()
	for k, v := range kv {
		_ = os.Setenv(k, v)
	}
	return unset
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fraudboard.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLayers(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given no file and no environment", t, func() {
		defer withEnv(nil)()

		cfg, err := config.Load(ctx)

		convey.So(err, convey.ShouldBeNil)
		convey.So(*cfg, convey.ShouldResemble, *config.New(ctx))
	})

	convey.Convey("Given FRAUDBOARD_ variables", t, func() {
		defer withEnv(map[string]string{
			"FRAUDBOARD_SCORING_URL":        "http://scorer:8000/predict",
			"FRAUDBOARD_SCORING_TIMEOUT_MS": "2500",
			"FRAUDBOARD_ALERT_THRESHOLD":    "75.5",
			"FRAUDBOARD_INPUT_POLICY":       "passthrough",
		})()

		cfg, err := config.Load(ctx)

		convey.Convey("Then they replace the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.ScoringURL, convey.ShouldEqual, "http://scorer:8000/predict")
			convey.So(cfg.ScoringTimeoutMS, convey.ShouldEqual, 2500)
			convey.So(cfg.AlertThreshold, convey.ShouldEqual, 75.5)
			convey.So(cfg.InputPolicy, convey.ShouldEqual, "passthrough")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
		})
	})

	convey.Convey("Given a YAML file named by FRAUDBOARD_CONFIG", t, func() {
		path := writeYAML(t, `
# dashboard settings
addr: ":9090"
log_format: json
trend_capacity: 20
predict_rate_limit: 0
`)

		convey.Convey("When it is the only source", func() {
			defer withEnv(map[string]string{config.EnvFile: path})()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file keys apply and the rest stay default", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.TrendCapacity, convey.ShouldEqual, 20)
				convey.So(cfg.PredictRateLimit, convey.ShouldEqual, 0.0)
				convey.So(cfg.InputPolicy, convey.ShouldEqual, "reject")
			})
		})

		convey.Convey("When the environment sets the same keys", func() {
			defer withEnv(map[string]string{
				config.EnvFile:          path,
				"FRAUDBOARD_ADDR":       ":8080",
				"FRAUDBOARD_LOG_FORMAT": "text",
			})()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the environment wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.TrendCapacity, convey.ShouldEqual, 20)
			})
		})
	})
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a config file that cannot be used", t, func() {
		convey.Convey("When the YAML is malformed", func() {
			defer withEnv(map[string]string{config.EnvFile: writeYAML(t, `invalid: yaml: content: [`)})()

			cfg, err := config.Load(ctx)

			convey.So(cfg, convey.ShouldBeNil)
			convey.So(errors.Is(err, config.ErrConfigFile), convey.ShouldBeTrue)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the file does not exist", func() {
			defer withEnv(map[string]string{config.EnvFile: "/non/existent/fraudboard.yaml"})()

			cfg, err := config.Load(ctx)

			convey.So(cfg, convey.ShouldBeNil)
			convey.So(errors.Is(err, config.ErrConfigFile), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "/non/existent/fraudboard.yaml")
		})
	})

	convey.Convey("Given environment values that fail", t, func() {
		convey.Convey("When addr is blank", func() {
			defer withEnv(map[string]string{"FRAUDBOARD_ADDR": ""})()

			cfg, err := config.Load(ctx)

			convey.So(cfg, convey.ShouldBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "Addr")
		})

		convey.Convey("When a number does not parse", func() {
			defer withEnv(map[string]string{"FRAUDBOARD_TREND_CAPACITY": "not_a_number"})()

			cfg, err := config.Load(ctx)

			convey.So(cfg, convey.ShouldBeNil)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the input policy is unknown", func() {
			defer withEnv(map[string]string{"FRAUDBOARD_INPUT_POLICY": "guess"})()

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the trend window is empty", func() {
			defer withEnv(map[string]string{"FRAUDBOARD_TREND_CAPACITY": "0"})()

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "TrendCapacity")
		})
	})
}
