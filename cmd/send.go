/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/longkey1/chatsim/internal/chatsim/chat"
	"github.com/longkey1/chatsim/internal/chatsim/config"
	promptpkg "github.com/longkey1/chatsim/internal/chatsim/prompt"
	"github.com/longkey1/chatsim/internal/chatsim/responder"
	"github.com/longkey1/chatsim/internal/chatsim/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	model           string
	prompt          string
	argFlags        []string
	useEditor       bool
	sessionRef      string
	newSession      bool
	ignoreThreshold bool
)

// replyWaitMargin is added to the reply delay when waiting for the reply.
const replyWaitMargin = 5 * time.Second

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send a message to the active session",
	Long: `Append a message to the active session and print the simulated reply.
If no session is active, a new one is created.

If no message is provided as an argument, it reads from stdin.
If --editor flag is set, it opens the default editor (from EDITOR environment variable) to compose the message.

The prompt file should be in TOML format with the following structure:
user = "User prompt with optional {{input}} placeholder"
model = "optional-model-name"  # Optional: overrides the default model for this prompt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if sessionRef != "" && newSession {
			return fmt.Errorf("cannot specify both --session and --new-session")
		}

		// Get message from arguments, editor, or stdin
		var message string
		if useEditor {
			message, err = getMessageFromEditor()
			if err != nil {
				return fmt.Errorf("getting message from editor: %w", err)
			}
		} else if len(args) > 0 {
			message = strings.Join(args, " ")
		} else {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			message = strings.TrimSpace(string(input))
		}

		formatted, promptModel, err := promptpkg.FormatMessage(message, prompt, cfg.PromptDirs, argFlags)
		if err != nil {
			return fmt.Errorf("formatting message with prompt: %w", err)
		}

		// Replies are collected here; the reply hook runs on a timer goroutine.
		replies := make(chan responder.Reply, 1)
		a, err := openApp(cfg, logger, func(c *chat.Config) {
			c.OnReply = func(r responder.Reply) {
				select {
				case replies <- r:
				default:
				}
			}
		})
		if err != nil {
			return err
		}
		defer a.Close()

		// Model priority: flag > prompt template > config
		switch {
		case cmd.Flags().Changed("model"):
			if err := a.service.SelectModel(model); err != nil {
				return fmt.Errorf("invalid model from flag: %w", err)
			}
		case promptModel != nil:
			if err := a.service.SelectModel(*promptModel); err != nil {
				return fmt.Errorf("invalid model from prompt file: %w", err)
			}
		}

		reg := a.registry()
		isNewSession := false
		switch {
		case newSession:
			reg.CreateSession()
			isNewSession = true
		case sessionRef != "":
			sess, err := reg.Resolve(sessionRef)
			if err != nil {
				return fmt.Errorf("finding session: %w", err)
			}
			if err := a.service.SelectSession(sess.ID); err != nil {
				return fmt.Errorf("selecting session: %w", err)
			}
		case reg.ActiveSessionID() == "":
			isNewSession = true
		}

		if !isNewSession && !checkThreshold(reg, cfg.SessionMessageThreshold) {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			return nil
		}

		sessionID, _, err := a.service.Send(formatted)
		if err != nil {
			if errors.Is(err, session.ErrEmptyMessage) {
				return fmt.Errorf("message is empty")
			}
			return fmt.Errorf("sending message: %w", err)
		}
		logger.Debug("message sent",
			zap.String("session_id", sessionID),
			zap.String("model", a.service.Model()))

		ctx, cancel := context.WithTimeout(cmd.Context(), a.service.ReplyDelay()+replyWaitMargin)
		defer cancel()
		if err := a.service.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for reply: %w", err)
		}

		select {
		case r := <-replies:
			if !r.Delivered {
				return fmt.Errorf("reply for session %s was discarded", r.SessionID)
			}
			fmt.Println(r.Message.Text)
		default:
			return fmt.Errorf("no reply received")
		}

		if isNewSession {
			sess, _ := reg.Session(sessionID)
			fmt.Fprintf(os.Stderr, "\nSession created: %s (%s)\n", sess.GetShortID(), sess.Title)
			fmt.Fprintf(os.Stderr, "\nNext time, use:\n  chatsim send -s %s \"your message\"\n", sess.GetShortID())
			fmt.Fprintf(os.Stderr, "For interactive mode, use:\n  chatsim start\n")
		}
		return nil
	},
}

// checkThreshold warns when the active session is long and asks whether to
// continue. It reports true when sending should go ahead.
func checkThreshold(reg *session.Registry, threshold int) bool {
	sess, ok := reg.Active()
	if !ok || threshold <= 0 || ignoreThreshold {
		return true
	}
	count := len(reg.Messages())
	if count < threshold {
		return true
	}

	fmt.Fprintf(os.Stderr, "\nWarning: Session %s has %d messages (threshold: %d).\n",
		sess.GetShortID(), count, threshold)
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	fmt.Fprintf(os.Stderr, "  1. Continue anyway with --ignore-threshold flag\n")
	fmt.Fprintf(os.Stderr, "  2. Start a new session: chatsim send --new-session\n\n")

	fmt.Fprint(os.Stderr, "Continue with this session? [y/N]: ")
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// getMessageFromEditor opens the default editor and returns the edited message
func getMessageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	tmpFile, err := os.CreateTemp("", "chatsim-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %v", err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %v", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&model, "model", "m", "", "Model tagged on the reply (see 'chatsim models')")
	sendCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Name of the prompt template (without .toml extension)")
	sendCmd.Flags().StringArrayVar(&argFlags, "arg", []string{}, "Key-value pairs for prompt template (format: key:value)")
	sendCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose message")

	sendCmd.Flags().StringVarP(&sessionRef, "session", "s", "", "Session to select first (short or full UUID, 'latest' or 'active')")
	sendCmd.Flags().BoolVarP(&newSession, "new-session", "n", false, "Create a new session")
	sendCmd.Flags().BoolVar(&ignoreThreshold, "ignore-threshold", false, "Ignore session message threshold warning")
}
