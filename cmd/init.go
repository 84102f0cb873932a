package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/longkey1/chatsim/internal/chatsim/config"
	promptpkg "github.com/longkey1/chatsim/internal/chatsim/prompt"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration file",
	Long: `Initialize the configuration file with default settings.
The config file will be created at $HOME/.config/chatsim/config.toml by default.
You can specify a different location using the --config option.

A prompts directory and an example quick-action template are created next to it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %v", err)
		}

		configFile := filepath.Join(home, ".config", "chatsim", "config.toml")
		if cfgFile != "" {
			configFile = cfgFile
		}

		configDir := filepath.Dir(configFile)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %v", err)
		}

		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("config file already exists at: %s", configFile)
		}

		promptsDir := filepath.Join(configDir, "prompts")
		cfg := config.NewDefaultConfig(promptsDir)

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("failed to create config file: %v", err)
		}
		defer f.Close()

		encoder := toml.NewEncoder(f)
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %v", err)
		}

		if err := os.MkdirAll(promptsDir, 0755); err != nil {
			return fmt.Errorf("failed to create prompts directory: %v", err)
		}
		if err := writeExamplePrompt(promptsDir); err != nil {
			return err
		}

		fmt.Printf("Configuration file created at: %s\n", configFile)
		fmt.Printf("Prompts directory created at: %s\n", promptsDir)
		return nil
	},
}

// examplePrompt is the quick action written by init.
var examplePrompt = promptpkg.Prompt{
	Label: "Explain",
	User:  "Explain the following in simple terms:\n\n{{input}}",
}

// writeExamplePrompt writes explain.toml unless it already exists.
func writeExamplePrompt(dir string) error {
	path := filepath.Join(dir, "explain.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create example prompt: %v", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(examplePrompt); err != nil {
		return fmt.Errorf("failed to encode example prompt: %v", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
