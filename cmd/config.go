package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/chatsim/internal/chatsim/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, model, models, storage_backend, data_dir, reply_delay_ms, reply_text, follow_threshold, scroll_debounce_ms, prompt_dirs, session_message_threshold, log_file"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  chatsim config                   # Show all configuration
  chatsim config model             # Show only model
  chatsim config data_dir          # Show only the data directory
  chatsim config storage_backend   # Show only the storage backend`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if len(args) > 0 {
			value, ok := configField(cfg, strings.ToLower(args[0]))
			if !ok {
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
				return fmt.Errorf("unknown field: %s", args[0])
			}
			fmt.Println(value)
			return nil
		}

		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("Model: %s\n", cfg.Model)
		fmt.Printf("Models: %s\n", strings.Join(cfg.Models, ","))
		fmt.Printf("StorageBackend: %s\n", cfg.StorageBackend)
		fmt.Printf("DataDir: %s\n", cfg.DataDir)
		fmt.Printf("ReplyDelayMS: %d\n", cfg.ReplyDelayMS)
		fmt.Printf("ReplyText: %s\n", cfg.ReplyText)
		fmt.Printf("FollowThreshold: %d\n", cfg.FollowThreshold)
		fmt.Printf("ScrollDebounceMS: %d\n", cfg.ScrollDebounceMS)
		fmt.Printf("PromptDirectories: %s\n", strings.Join(cfg.PromptDirs, ","))
		fmt.Printf("SessionMessageThreshold: %d\n", cfg.SessionMessageThreshold)
		fmt.Printf("LogFile: %s\n", displayLogFile(cfg.LogFile))
		return nil
	},
}

// configField returns the display value of one field.
func configField(cfg *config.Config, field string) (string, bool) {
	switch field {
	case "configfile":
		return viper.ConfigFileUsed(), true
	case "model":
		return cfg.Model, true
	case "models":
		return strings.Join(cfg.Models, ","), true
	case "storage_backend", "storagebackend":
		return cfg.StorageBackend, true
	case "data_dir", "datadir":
		return cfg.DataDir, true
	case "reply_delay_ms", "replydelayms":
		return fmt.Sprint(cfg.ReplyDelayMS), true
	case "reply_text", "replytext":
		return cfg.ReplyText, true
	case "follow_threshold", "followthreshold":
		return fmt.Sprint(cfg.FollowThreshold), true
	case "scroll_debounce_ms", "scrolldebouncems":
		return fmt.Sprint(cfg.ScrollDebounceMS), true
	case "prompt_dirs", "promptdirs":
		return strings.Join(cfg.PromptDirs, ","), true
	case "session_message_threshold", "sessionmessagethreshold":
		return fmt.Sprint(cfg.SessionMessageThreshold), true
	case "log_file", "logfile":
		return displayLogFile(cfg.LogFile), true
	}
	return "", false
}

func displayLogFile(path string) string {
	if path == "" {
		return "stderr"
	}
	return path
}

func init() {
	rootCmd.AddCommand(configCmd)
}
