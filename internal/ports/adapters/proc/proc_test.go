package proc

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/forPelevin/shortsclip/internal/types"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
}

func TestRun_Stdout(t *testing.T) {
	requireShell(t)
	out, err := Run(context.Background(), Cmd{Tool: "echo", Bin: "sh", Args: []string{"-c", "echo '  hi  '; echo there"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "hi  \nthere" {
		t.Fatalf("unexpected stdout %q", out)
	}
}

func TestRun_FailureIsToolError(t *testing.T) {
	requireShell(t)
	kind := errors.New("classified")
	_, err := Run(context.Background(), Cmd{
		Tool: "failing",
		Bin:  "sh",
		Args: []string{"-c", "echo 'could not find thing' >&2; exit 3"},
		Classify: func(stderr string) error {
			if stderr != "" {
				return kind
			}
			return nil
		},
	})
	var te *types.ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected *types.ToolError, got %T", err)
	}
	if te.Tool != "failing" || !errors.Is(err, kind) {
		t.Fatalf("unexpected tool error: %+v", te)
	}
	if got := types.FirstLine(err); got != "could not find thing" {
		t.Fatalf("FirstLine = %q", got)
	}
}

func TestRun_Env(t *testing.T) {
	requireShell(t)
	out, err := Run(context.Background(), Cmd{Tool: "env", Bin: "sh", Args: []string{"-c", "echo $SHORTSCLIP_PROC_TEST"}, Env: []string{"SHORTSCLIP_PROC_TEST=1"}})
	if err != nil || out != "1" {
		t.Fatalf("got %q, %v", out, err)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	_, err := Run(context.Background(), Cmd{Tool: "missing", Bin: "definitely-not-a-real-binary-xyz"})
	var te *types.ToolError
	if !errors.As(err, &te) || te.Tool != "missing" {
		t.Fatalf("expected tool error for missing binary, got %v", err)
	}
}
