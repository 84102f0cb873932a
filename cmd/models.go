/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/config"
	"github.com/spf13/cobra"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models replies can be tagged with",
	Long: `List the configured models. The default model is tagged on replies unless
another one is chosen with --model, a prompt template, or ctrl+t in 'chatsim start'.

Models are configured with the 'models' and 'model' keys of the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		models := chatsim.ListModels(cfg.Models, cfg.Model)

		maxModelWidth := 15
		for _, m := range models {
			if len(m.ID) > maxModelWidth {
				maxModelWidth = len(m.ID)
			}
		}

		fmt.Printf("%-*s  %s\n", maxModelWidth, "MODEL", "DEFAULT")
		fmt.Printf("%s  %s\n", strings.Repeat("-", maxModelWidth), strings.Repeat("-", 7))
		for _, m := range models {
			defaultMark := ""
			if m.IsDefault {
				defaultMark = "Yes"
			}
			fmt.Printf("%-*s  %s\n", maxModelWidth, m.ID, defaultMark)
		}

		fmt.Printf("\nUse a model with: chatsim send --model <model> [message]\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
