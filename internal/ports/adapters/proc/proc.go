// Package proc runs external tools and turns non-zero exits into
// *types.ToolError values.
package proc

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/forPelevin/shortsclip/internal/types"
)

type Cmd struct {
	Tool string
	Bin  string
	Args []string
	// Env entries are appended to the current process environment.
	Env []string
	// Classify may tag the failure with a kind based on stderr.
	Classify func(stderr string) error
}

// Run executes c and returns trimmed stdout.
func Run(ctx context.Context, c Cmd) (string, error) {
	cmd := exec.CommandContext(ctx, c.Bin, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		te := &types.ToolError{Tool: c.Tool, Stderr: stderr.String(), Err: err}
		if c.Classify != nil {
			te.Kind = c.Classify(te.Stderr)
		}
		return "", te
	}
	return string(bytes.TrimSpace(stdout.Bytes())), nil
}
