package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	if Short() != Version {
		t.Errorf("Short() = %q, want %q", Short(), Version)
	}
	info := Info()
	for _, want := range []string{"chatsim " + Version, "Commit: " + CommitSHA, "Go: "} {
		if !strings.Contains(info, want) {
			t.Errorf("Info() = %q, missing %q", info, want)
		}
	}
}
