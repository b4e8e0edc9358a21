package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDir is the per-user data directory name under $HOME.
	DataDir = ".tsk"
	// StoreFile is the default store filename inside DataDir.
	StoreFile = "todos.json"
	// EnvPath overrides the store location. The CLI checks it before the
	// config file.
	EnvPath = "TSK_STORE"
)

// DataPath joins name onto ~/.tsk.
func DataPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory not found: %w", err)
	}
	return filepath.Join(home, DataDir, name), nil
}
