package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/scroll"
	"github.com/longkey1/chatsim/internal/chatsim/storage"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Model                   string   `toml:"model" mapstructure:"model"`                     // Model tagged on simulated replies
	Models                  []string `toml:"models" mapstructure:"models"`                   // Models offered by the selector
	StorageBackend          string   `toml:"storage_backend" mapstructure:"storage_backend"` // "file", "sqlite" or "memory"
	DataDir                 string   `toml:"data_dir" mapstructure:"data_dir"`               // Empty = next to the config file
	ReplyDelayMS            int      `toml:"reply_delay_ms" mapstructure:"reply_delay_ms"`
	ReplyText               string   `toml:"reply_text" mapstructure:"reply_text"`
	FollowThreshold         int      `toml:"follow_threshold" mapstructure:"follow_threshold"` // Display units from the bottom
	ScrollDebounceMS        int      `toml:"scroll_debounce_ms" mapstructure:"scroll_debounce_ms"`
	PromptDirs              []string `toml:"prompt_dirs" mapstructure:"prompt_dirs"`
	SessionMessageThreshold int      `toml:"session_message_threshold" mapstructure:"session_message_threshold"` // 0 = disabled
	LogFile                 string   `toml:"log_file" mapstructure:"log_file"`                                   // Empty = stderr
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(promptDir string) *Config {
	return &Config{
		Model:                   chatsim.DefaultModel,
		Models:                  append([]string(nil), chatsim.DefaultModels...),
		StorageBackend:          storage.BackendFile,
		DataDir:                 "",
		ReplyDelayMS:            int(chatsim.DefaultReplyDelay / time.Millisecond),
		ReplyText:               chatsim.DefaultReplyText,
		FollowThreshold:         scroll.DefaultThreshold,
		ScrollDebounceMS:        int(scroll.DefaultDebounce / time.Millisecond),
		PromptDirs:              []string{promptDir},
		SessionMessageThreshold: 50,
		LogFile:                 "",
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	// Convert prompt directories to absolute paths
	for i, promptDir := range config.PromptDirs {
		absPath, err := ResolvePath(promptDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving prompt directory path '%s': %v", promptDir, err)
		}
		config.PromptDirs[i] = absPath
	}

	dataDir, err := GetDataDir(config.DataDir)
	if err != nil {
		return nil, err
	}
	config.DataDir = dataDir

	if config.LogFile != "" && config.LogFile != "stderr" && config.LogFile != "stdout" {
		logFile, err := ResolvePath(config.LogFile)
		if err != nil {
			return nil, fmt.Errorf("error resolving log file path '%s': %v", config.LogFile, err)
		}
		config.LogFile = logFile
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		c.Models = append([]string(nil), chatsim.DefaultModels...)
	}
	if _, err := chatsim.ValidateModel(c.Model, c.Models); err != nil {
		return fmt.Errorf("invalid model in config: %w", err)
	}
	switch c.StorageBackend {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	case "":
		c.StorageBackend = storage.BackendFile
	default:
		return fmt.Errorf("unsupported storage_backend: %s (expected file, sqlite or memory)", c.StorageBackend)
	}
	if c.ReplyDelayMS <= 0 {
		return fmt.Errorf("reply_delay_ms must be positive (got %d)", c.ReplyDelayMS)
	}
	return nil
}

// ReplyDelay returns the simulated reply delay.
func (c *Config) ReplyDelay() time.Duration {
	return time.Duration(c.ReplyDelayMS) * time.Millisecond
}

// ScrollDebounce returns the auto-follow debounce.
func (c *Config) ScrollDebounce() time.Duration {
	return time.Duration(c.ScrollDebounceMS) * time.Millisecond
}

// DefaultLogFile is where the interactive UI logs when log_file is unset.
func (c *Config) DefaultLogFile() string {
	return filepath.Join(c.DataDir, "chatsim.log")
}
