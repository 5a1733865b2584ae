package ytdlp

import (
	"errors"
	"testing"

	"github.com/forPelevin/shortsclip/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		stderr string
		noise  bool
	}{
		{"ERROR: could not find chrome cookies database in \"/home/u/.config/google-chrome\"", true},
		{"ERROR: Could not find Edge Cookies Database", true},
		{"ERROR: [youtube] abc: Sign in to confirm you're not a bot", false},
		{"ERROR: could not find file", false},
		{"", false},
	}
	for _, tt := range tests {
		err := classify(tt.stderr)
		if got := errors.Is(err, types.ErrCredentialStoreMissing); got != tt.noise {
			t.Fatalf("classify(%q) noise = %v, want %v", tt.stderr, got, tt.noise)
		}
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("[info] x\n/tmp/dl/abc.mp4\n\n"); got != "/tmp/dl/abc.mp4" {
		t.Fatalf("lastLine = %q", got)
	}
	if got := lastLine("  \n"); got != "" {
		t.Fatalf("lastLine = %q, want empty", got)
	}
}
