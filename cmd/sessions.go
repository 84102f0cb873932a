package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/longkey1/chatsim/internal/chatsim/config"
	"github.com/spf13/cobra"
)

var assumeYes bool

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
	Long: `Manage chat sessions including listing, viewing, selecting and deleting sessions.

Sessions keep conversation history across runs. One session at a time is active;
'chatsim send' writes to it.`,
}

// sessionsListCmd represents the sessions list command
var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Long:  `List all chat sessions, newest first. The active session is marked with '*'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		reg := a.registry()
		sessions := reg.Sessions()
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			fmt.Println("\nCreate a new session with:")
			fmt.Println("  chatsim sessions new")
			return nil
		}

		activeID := reg.ActiveSessionID()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, " \tID\tTITLE\tTIME\tMESSAGES\tLAST MESSAGE")
		fmt.Fprintln(w, " \t--\t-----\t----\t--------\t------------")
		for _, sess := range sessions {
			marker := " "
			if sess.ID == activeID {
				marker = "*"
			}
			msgs, _ := reg.MessagesOf(sess.ID)
			last := sess.LastMessage
			if last == "" {
				last = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				marker,
				sess.GetShortID(),
				sess.Title,
				sess.LastTimestamp,
				len(msgs),
				truncate(last, 40),
			)
		}
		w.Flush()

		fmt.Println("\nUse 'chatsim sessions show <id>' to view session details.")
		return nil
	},
}

// sessionsShowCmd represents the sessions show command
var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show session details and history",
	Long: `Show a session and all its messages without changing the active session.

The ID can be a short ID (minimum 4 characters), full UUID, "latest" for the newest session
or "active" for the active one. Defaults to "active".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := "active"
		if len(args) > 0 {
			ref = args[0]
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		reg := a.registry()
		sess, err := reg.Resolve(ref)
		if err != nil {
			return fmt.Errorf("finding session: %w", err)
		}
		msgs, _ := reg.MessagesOf(sess.ID)

		fmt.Printf("Session: %s\n", sess.ID)
		fmt.Printf("Title: %s\n", sess.Title)
		if sess.ID == reg.ActiveSessionID() {
			fmt.Println("Active: yes")
		}
		fmt.Printf("Last activity: %s\n", sess.LastTimestamp)
		fmt.Printf("Messages: %d\n", len(msgs))
		fmt.Println()

		if len(msgs) == 0 {
			fmt.Println("No messages in this session.")
			return nil
		}

		fmt.Println("Message History:")
		fmt.Println("----------------")
		for i, msg := range msgs {
			fmt.Printf("\n[%d] %s (%s):\n%s\n", i+1, msg.Label(), msg.Timestamp, msg.Text)
		}

		fmt.Printf("\nContinue this session with:\n  chatsim send -s %s \"your message\"\n", sess.GetShortID())
		return nil
	},
}

// sessionsNewCmd represents the sessions new command
var sessionsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new session and make it active",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess := a.service.CreateSession()
		fmt.Printf("Session created: %s (%s)\n", sess.GetShortID(), sess.Title)
		return nil
	},
}

// sessionsSelectCmd represents the sessions select command
var sessionsSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Make a session the active one",
	Long: `Make a session the active one. Later 'chatsim send' calls write to it.

The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the newest session.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.registry().Resolve(args[0])
		if err != nil {
			return fmt.Errorf("finding session: %w", err)
		}
		if err := a.service.SelectSession(sess.ID); err != nil {
			return fmt.Errorf("selecting session: %w", err)
		}
		fmt.Printf("Active session: %s (%s)\n", sess.GetShortID(), sess.Title)
		return nil
	},
}

// sessionsDeleteCmd represents the sessions delete command
var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Long: `Delete a chat session and its messages permanently.

The ID can be a short ID (minimum 4 characters), full UUID, "latest" or "active".
Deleting the active session leaves no session active.

Warning: This action cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.registry().Resolve(args[0])
		if err != nil {
			return fmt.Errorf("finding session: %w", err)
		}

		if !confirm(fmt.Sprintf("Are you sure you want to delete session %s (%s)? [y/N]: ", sess.GetShortID(), sess.Title)) {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		a.service.DeleteSession(sess.ID)
		fmt.Printf("Session %s deleted successfully.\n", sess.GetShortID())
		return nil
	},
}

// sessionsClearCmd represents the sessions clear command
var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sessions",
	Long: `Delete every chat session permanently.

Warning: This action cannot be undone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		count := len(a.registry().Sessions())
		if count == 0 {
			fmt.Println("No sessions to delete.")
			return nil
		}

		if !confirm(fmt.Sprintf("Are you sure you want to delete all %d sessions? [y/N]: ", count)) {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		deleted := a.registry().Clear()
		fmt.Printf("Successfully deleted %d sessions.\n", deleted)
		return nil
	},
}

// loadApp loads the configuration and opens the session store.
func loadApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return openApp(cfg, logger)
}

// confirm asks a yes/no question on stdout unless --yes was given.
func confirm(question string) bool {
	if assumeYes {
		return true
	}
	fmt.Print(question)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsSelectCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)

	sessionsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")
	sessionsClearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")
}
