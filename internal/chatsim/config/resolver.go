package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetDataDir returns the directory where sessions are stored.
// An explicit dataDir is resolved like any other path. Otherwise, if a config
// file is used, data lives in a "data" directory next to it; the fallback is
// $HOME/.config/chatsim/data.
func GetDataDir(dataDir string) (string, error) {
	if dataDir != "" {
		resolved, err := ResolvePath(dataDir)
		if err != nil {
			return "", fmt.Errorf("error resolving data directory path '%s': %v", dataDir, err)
		}
		return resolved, nil
	}

	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		configDir := filepath.Dir(configFile)

		// Make the path absolute if it's relative
		if !filepath.IsAbs(configDir) {
			cwd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("failed to get current working directory: %w", err)
			}
			configDir = filepath.Join(cwd, configDir)
		}

		return filepath.Join(configDir, "data"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chatsim", "data"), nil
}

// ResolvePath expands $VAR and ${VAR} references and converts a relative path
// to an absolute one, relative to the config file directory when a config
// file is used and to the working directory otherwise.
func ResolvePath(path string) (string, error) {
	path = os.ExpandEnv(path)
	if filepath.IsAbs(path) {
		return path, nil
	}

	// Get config file directory as base directory
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		// If no config file is used, fall back to current working directory
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error getting current working directory: %v", err)
		}
		return filepath.Join(cwd, path), nil
	}

	// Use config file directory as base
	configDir := filepath.Dir(configFile)

	// If configDir is relative, make it absolute
	if !filepath.IsAbs(configDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error getting current working directory: %v", err)
		}
		configDir = filepath.Join(cwd, configDir)
	}

	return filepath.Join(configDir, path), nil
}
