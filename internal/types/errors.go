package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProbeFailed          = errors.New("probe failed")
	ErrCaptionFetchFailed   = errors.New("caption fetch failed")
	ErrAcquisitionExhausted = errors.New("acquisition exhausted")
	ErrRenderExhausted      = errors.New("render exhausted")

	// ErrCredentialStoreMissing marks a failure caused by a missing local
	// browser cookie store. It never describes the remote service.
	ErrCredentialStoreMissing = errors.New("credential store missing")
)

// ToolError is a non-zero exit from an external binary.
type ToolError struct {
	Tool   string
	Kind   error
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v\n%s", e.Tool, e.Err, msg)
}

func (e *ToolError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// FirstLine returns the first non-empty diagnostic line of err.
func FirstLine(err error) string {
	if err == nil {
		return ""
	}
	var te *ToolError
	s := err.Error()
	if errors.As(err, &te) && strings.TrimSpace(te.Stderr) != "" {
		s = te.Stderr
	}
	for _, ln := range strings.Split(s, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			return ln
		}
	}
	return ""
}
