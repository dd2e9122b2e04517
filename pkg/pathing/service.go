package pathing

import (
	"os"
	"path/filepath"
)

// EnsureDirs creates the directories the bridge persists data in.
// Called on startup by binaries that write to disk.
func EnsureDirs() error {
	dirs := []string{
		GetDataDir(),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

func GetBridgeDbPath() string {
	// Join path
	return filepath.Join(GetDataDir(), "solax-readings.db")
}

func GetDataDir() string {
	return "/var/lib/solax2mqtt"
}

func GetConfigDir() string {
	return "/etc/solax2mqtt"
}
