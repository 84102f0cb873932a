/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/longkey1/chatsim/internal/chatsim/config"
	promptpkg "github.com/longkey1/chatsim/internal/chatsim/prompt"
	"github.com/spf13/cobra"
)

var withDir bool

// promptCmd represents the prompt command
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "List available prompt templates",
	Long: `List all quick-action prompt templates from the configured prompt directories.
Directories are scanned recursively for .toml files.

The prompt files should be in TOML format with the following structure:
user = "User prompt with optional {{input}} placeholder"
model = "optional-model-name"

Prompt names are displayed as relative paths from the prompt directory root.
For example, a file at ${prompt_dir}/foo/bar.toml will be displayed as "foo/bar".
When a name exists in several directories, the one listed last in prompt_dirs wins.

If you want to see which directory each prompt comes from, use the --with-dir option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Prompt directories: %v\n", cfg.PromptDirs)
		}

		entries, err := promptpkg.List(cfg.PromptDirs)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No prompt templates found.")
			fmt.Println("Create .toml files in the following directories:")
			for _, promptDir := range cfg.PromptDirs {
				fmt.Printf("  - %s\n", promptDir)
			}
			return nil
		}

		fmt.Printf("Available prompt templates (%d found):\n\n", len(entries))
		for _, e := range entries {
			if withDir {
				fmt.Printf("  %s (from %s)\n", e.Name, e.Dir)
			} else {
				fmt.Printf("  %s\n", e.Name)
			}
		}

		fmt.Printf("\nUse a prompt template with: chatsim send --prompt <name> [message]\n")
		fmt.Printf("In 'chatsim start', type: /<name> [message]\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().BoolVar(&withDir, "with-dir", false, "Show the directory each prompt was found in")
}
