/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/longkey1/chatsim/internal/chatsim/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile   string
	verbose   bool
	ephemeral bool

	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatsim",
	Short: "A local chat session manager with simulated replies",
	Long: `chatsim keeps a collection of chat sessions, each an ordered log of messages
between you and an assistant, and persists them across runs.
Replies are simulated locally after a short delay; nothing is sent over the network.
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := buildLogger(viper.GetString("log_file"))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/chatsim/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep sessions in memory only for this run")
}

// buildLogger returns a production zap logger writing to output ("" means
// stderr). Only warnings are shown unless --verbose is set.
func buildLogger(output string) (*zap.Logger, error) {
	if output == "" {
		output = "stderr"
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{output}
	return cfg.Build()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Set environment variable prefix and automatic env
	viper.SetEnvPrefix("CHATSIM") // Set prefix for environment variables
	viper.AutomaticEnv()          // read in environment variables that match

	// Determine config directory for user config
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "chatsim")

	// Note: Later directories in the array take precedence over earlier ones
	defaultPromptDirs := []string{
		"/usr/share/chatsim/prompts",            // System package prompts (lowest priority)
		"/usr/local/share/chatsim/prompts",      // Local install prompts (low priority)
		filepath.Join(userConfigDir, "prompts"), // User-specific prompts (highest priority)
	}
	defaultConfig := config.NewDefaultConfig(filepath.Join(userConfigDir, "prompts"))

	viper.SetDefault("model", defaultConfig.Model)
	viper.SetDefault("models", defaultConfig.Models)
	viper.SetDefault("storage_backend", defaultConfig.StorageBackend)
	viper.SetDefault("data_dir", defaultConfig.DataDir)
	viper.SetDefault("reply_delay_ms", defaultConfig.ReplyDelayMS)
	viper.SetDefault("reply_text", defaultConfig.ReplyText)
	viper.SetDefault("follow_threshold", defaultConfig.FollowThreshold)
	viper.SetDefault("scroll_debounce_ms", defaultConfig.ScrollDebounceMS)
	viper.SetDefault("prompt_dirs", defaultPromptDirs)
	viper.SetDefault("session_message_threshold", defaultConfig.SessionMessageThreshold)
	viper.SetDefault("log_file", defaultConfig.LogFile)

	// Bind environment variables
	viper.BindEnv("model", "CHATSIM_MODEL")
	viper.BindEnv("storage_backend", "CHATSIM_STORAGE_BACKEND")
	viper.BindEnv("data_dir", "CHATSIM_DATA_DIR")
	viper.BindEnv("reply_delay_ms", "CHATSIM_REPLY_DELAY_MS")
	viper.BindEnv("log_file", "CHATSIM_LOG_FILE")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/chatsim",
			"/usr/local/etc/chatsim",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		// Try to read system-wide config
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if ephemeral {
		viper.Set("storage_backend", "memory")
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  CHATSIM_MODEL:", viper.GetString("model"))
		fmt.Fprintln(os.Stderr, "  CHATSIM_STORAGE_BACKEND:", viper.GetString("storage_backend"))
		fmt.Fprintln(os.Stderr, "  CHATSIM_DATA_DIR:", viper.GetString("data_dir"))
		fmt.Fprintln(os.Stderr, "  CHATSIM_REPLY_DELAY_MS:", viper.GetInt("reply_delay_ms"))
	}
}
