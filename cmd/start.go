/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/longkey1/chatsim/internal/chatsim/chat"
	"github.com/longkey1/chatsim/internal/chatsim/config"
	"github.com/longkey1/chatsim/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the interactive chat screen",
	Long: `Start an interactive chat screen over the stored sessions.

Keys:
  enter            send the typed message (/name text applies a prompt template)
  tab, shift+tab   switch between sessions
  ctrl+n           new session
  ctrl+x           delete the active session
  ctrl+t           switch model
  pgup, pgdown     scroll the message log
  esc, ctrl+c      quit

Logs are written to log_file (default: <data_dir>/chatsim.log) so they do not
disturb the screen.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logFile := cfg.LogFile
		if logFile == "" || logFile == "stderr" || logFile == "stdout" {
			logFile = cfg.DefaultLogFile()
		}
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %v", err)
		}
		uiLogger, err := buildLogger(logFile)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer uiLogger.Sync()

		bridge := tui.NewBridge()
		defer bridge.Close()

		a, err := openApp(cfg, uiLogger, func(c *chat.Config) {
			c.OnReply = bridge.OnReply
		})
		if err != nil {
			return err
		}
		defer a.Close()

		screen := tui.New(a.service, bridge, tui.Options{
			FollowThreshold: cfg.FollowThreshold,
			ScrollDebounce:  cfg.ScrollDebounce(),
			PromptDirs:      cfg.PromptDirs,
			Logger:          uiLogger.Named("tui"),
		})

		uiLogger.Info("starting interactive session",
			zap.String("backend", a.store.Backend().Name()),
			zap.Int("sessions", len(a.service.Sessions())))

		p := tea.NewProgram(screen, tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running interactive screen: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
