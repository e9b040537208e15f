package otel

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds OTEL exporter configuration, read from FPSTUDY_OTEL_ENABLED,
// FPSTUDY_OTEL_ENDPOINT and FPSTUDY_OTEL_INSECURE.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// LoadConfig loads OTEL configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("fpstudy_otel", &cfg); err != nil {
		return Config{}, fmt.Errorf("loading otel config: %w", err)
	}
	return cfg, nil
}
