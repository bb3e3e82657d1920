package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "vatu"

// DataDir returns the per-user data directory, creating it if needed:
//   - macOS: ~/Library/Application Support/vatu
//   - Windows: %APPDATA%\vatu
//   - others: $XDG_DATA_HOME/vatu or ~/.local/share/vatu
func DataDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, "Library", "Application Support")
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, "AppData", "Roaming")
		}
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "share")
		}
	}

	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultJournalDir is DataDir()/journal.
func DefaultJournalDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "journal")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
