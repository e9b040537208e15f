package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "fpstudy"

// DataPath joins elem onto the fpstudy data directory, $XDG_DATA_HOME/fpstudy
// or ~/.local/share/fpstudy when XDG_DATA_HOME is unset.
func DataPath(elem ...string) (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(append([]string{base, appName}, elem...)...), nil
}

// DefaultDatabasePath is the local run database used when no URL is set.
func DefaultDatabasePath() (string, error) {
	return DataPath(appName + ".db")
}
