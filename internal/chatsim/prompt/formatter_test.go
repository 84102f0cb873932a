package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrompt(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name+".toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFormatMessage(t *testing.T) {
	systemDir := t.TempDir()
	userDir := t.TempDir()
	writePrompt(t, systemDir, "trip", `user = "system trip: {{input}}"`)
	writePrompt(t, userDir, "trip", "label = \"Trip Planner\"\nuser = \"Plan a trip to {{input}} for {{days}} days\"\nmodel = \"gpt-4\"")
	writePrompt(t, userDir, "plain", `label = "Plain"`)
	dirs := []string{systemDir, userDir}

	tests := []struct {
		name      string
		message   string
		prompt    string
		args      []string
		want      string
		wantModel string
		wantErr   bool
	}{
		{
			name:    "no prompt",
			message: "hello",
			want:    "hello",
		},
		{
			name:      "later directory wins",
			message:   "Kyoto",
			prompt:    "trip",
			args:      []string{"days:3"},
			want:      "Plan a trip to Kyoto for 3 days",
			wantModel: "gpt-4",
		},
		{
			name:    "empty user template passes input through",
			message: "as is",
			prompt:  "plain",
			want:    "as is",
		},
		{
			name:    "missing prompt",
			message: "x",
			prompt:  "nope",
			wantErr: true,
		},
		{
			name:    "reserved arg",
			message: "x",
			prompt:  "trip",
			args:    []string{"input:y"},
			wantErr: true,
		},
		{
			name:    "malformed arg",
			message: "x",
			prompt:  "trip",
			args:    []string{"days"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, model, err := FormatMessage(tt.message, tt.prompt, dirs, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("FormatMessage() = %q, want %q", got, tt.want)
			}
			gotModel := ""
			if model != nil {
				gotModel = *model
			}
			if gotModel != tt.wantModel {
				t.Errorf("FormatMessage() model = %q, want %q", gotModel, tt.wantModel)
			}
		})
	}
}

func TestList(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writePrompt(t, a, "trip", `user = "{{input}}"`)
	writePrompt(t, a, "music/playlist", `user = "{{input}}"`)
	writePrompt(t, b, "trip", `user = "{{input}}"`)
	if err := os.WriteFile(filepath.Join(b, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := List([]string{a, b, filepath.Join(a, "missing")})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Name != "music/playlist" || entries[0].Dir != a {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Name != "trip" || entries[1].Dir != b {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}
