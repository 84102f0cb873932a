// Package prompt loads quick-action templates: TOML files that wrap the text a
// user types before it is sent.
//
// A template looks like:
//
//	label = "Trip Planner"
//	user = "Plan a trip for me: {{input}}"
//	model = "gpt-4"  # optional
package prompt

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Prompt represents the structure of a TOML prompt file
type Prompt struct {
	Label string  `toml:"label"`
	User  string  `toml:"user"`
	Model *string `toml:"model,omitempty"`
}

// LoadPrompt loads a prompt file and returns its contents
func LoadPrompt(filePath string) (*Prompt, error) {
	var prompt Prompt
	if _, err := toml.DecodeFile(filePath, &prompt); err != nil {
		return nil, fmt.Errorf("error decoding prompt file: %v", err)
	}
	return &prompt, nil
}
