// Package chatsim provides the core types shared by the session registry,
// the response simulator and the presentation layers.
// Replies are simulated locally; no request ever leaves the process.
package chatsim

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultModel is the model tagged on replies when none is selected.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultReplyDelay is how long the simulator waits before answering.
	DefaultReplyDelay = 1000 * time.Millisecond

	// DefaultReplyText is the fixed acknowledgement sent by the simulator.
	DefaultReplyText = "I received your request and I am ready to help. Please clarify what exactly you would like to know or do."
)

// DefaultModels lists the models offered by the model selector.
var DefaultModels = []string{
	"gpt-3.5-turbo",
	"gpt-3.5-turbo-16k",
	"gpt-4",
	"gpt-4-turbo",
	"gpt-4-turbo-16k",
}

// ModelInfo represents a selectable model.
type ModelInfo struct {
	ID        string // Model identifier (e.g., "gpt-4")
	IsDefault bool   // Whether this is the configured default model
}

// ListModels returns the models in order, marking defaultModel.
func ListModels(models []string, defaultModel string) []ModelInfo {
	infos := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		infos = append(infos, ModelInfo{ID: m, IsDefault: m == defaultModel})
	}
	return infos
}

// ValidateModel checks that model is one of models.
// Returns the trimmed model name.
//
// Example:
//
//	model, err := ValidateModel(" gpt-4 ", DefaultModels)
//	// model = "gpt-4"
func ValidateModel(model string, models []string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", fmt.Errorf("model cannot be empty")
	}
	for _, m := range models {
		if m == model {
			return model, nil
		}
	}
	return "", fmt.Errorf("unsupported model: %s (available: %s)", model, strings.Join(models, ", "))
}
