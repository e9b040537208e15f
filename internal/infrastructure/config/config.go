package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "FPSTUDY"

// Database holds the run-summary database configuration. An empty URL
// selects a local file under the XDG data directory.
type Database struct {
	URL       string
	AuthToken string `split_words:"true"`
}

// Log holds logger settings.
type Log struct {
	Level  string `default:"info"`
	Format string `default:"text"`
}

// Settings is the environment configuration of the fpstudy CLI.
//
//	FPSTUDY_DATABASE_URL, FPSTUDY_DATABASE_AUTH_TOKEN
//	FPSTUDY_LOG_LEVEL, FPSTUDY_LOG_FORMAT
type Settings struct {
	Database Database
	Log      Log
}

// Load reads Settings from the environment.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return &s, nil
}
