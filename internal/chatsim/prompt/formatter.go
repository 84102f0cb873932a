package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is a template found on disk.
type Entry struct {
	Name string // path relative to its directory, without .toml, slash separated
	Dir  string // directory the template was found in
}

// FormatMessage applies the named template to message.
// Returns the formatted text and the model requested by the template (if any).
// An empty promptName returns message unchanged.
func FormatMessage(message string, promptName string, promptDirs []string, args []string) (string, *string, error) {
	if promptName == "" {
		return message, nil, nil
	}

	promptPath, err := findPrompt(promptName, promptDirs)
	if err != nil {
		return "", nil, err
	}

	promptTemplate, err := LoadPrompt(promptPath)
	if err != nil {
		return "", nil, fmt.Errorf("error loading prompt file: %v", err)
	}

	argMap, err := processArgs(args)
	if err != nil {
		return "", nil, fmt.Errorf("error processing arguments: %v", err)
	}

	replacements := make(map[string]string)
	replacements["input"] = message
	for key, value := range argMap {
		replacements[key] = value
	}

	userPrompt := promptTemplate.User
	if userPrompt == "" {
		userPrompt = "{{input}}"
	}
	for key, value := range replacements {
		userPrompt = strings.ReplaceAll(userPrompt, fmt.Sprintf("{{%s}}", key), value)
	}

	return userPrompt, promptTemplate.Model, nil
}

// findPrompt returns the path of promptName. Later directories take precedence.
func findPrompt(promptName string, promptDirs []string) (string, error) {
	promptFile := promptName
	if !strings.HasSuffix(promptFile, ".toml") {
		promptFile = promptFile + ".toml"
	}

	var promptPath string
	for _, promptDir := range promptDirs {
		candidatePath := filepath.Join(promptDir, promptFile)
		if _, err := os.Stat(candidatePath); err == nil {
			promptPath = candidatePath
		}
	}
	if promptPath == "" {
		return "", fmt.Errorf("prompt file '%s' not found in any of the prompt directories: %v", promptFile, promptDirs)
	}
	return promptPath, nil
}

// List returns every template in promptDirs sorted by name. When a name
// exists in several directories the later directory wins, as in FormatMessage.
// Missing directories are skipped.
func List(promptDirs []string) ([]Entry, error) {
	found := make(map[string]string)
	for _, promptDir := range promptDirs {
		if _, err := os.Stat(promptDir); os.IsNotExist(err) {
			continue
		}

		err := filepath.Walk(promptDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !strings.HasSuffix(info.Name(), ".toml") {
				return nil
			}
			relPath, err := filepath.Rel(promptDir, path)
			if err != nil {
				return nil
			}
			name := filepath.ToSlash(strings.TrimSuffix(relPath, ".toml"))
			found[name] = promptDir
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking prompt directory %s: %w", promptDir, err)
		}
	}

	entries := make([]Entry, 0, len(found))
	for name, dir := range found {
		entries = append(entries, Entry{Name: name, Dir: dir})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// processArgs processes the command line arguments and returns a map of key-value pairs
func processArgs(args []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`) {
			arg = strings.Trim(arg, `"`)
		}

		parts := strings.SplitN(arg, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid argument format: %s. Expected format: key:value", arg)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		value = strings.ReplaceAll(value, `\:`, ":")
		value = strings.ReplaceAll(value, `\"`, `"`)

		if key == "input" {
			return nil, fmt.Errorf("'input' is a reserved keyword and cannot be used as a key")
		}
		result[key] = value
	}
	return result, nil
}
