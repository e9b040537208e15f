package prometheus

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the textfile exporter configuration, read from
// FPSTUDY_PROMETHEUS_ENABLED and FPSTUDY_PROMETHEUS_TEXTFILE_PATH.
type Config struct {
	Enabled      bool
	TextfilePath string `split_words:"true"`
}

// LoadConfig loads Prometheus configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("fpstudy_prometheus", &cfg); err != nil {
		return Config{}, fmt.Errorf("loading prometheus config: %w", err)
	}
	return cfg, nil
}
