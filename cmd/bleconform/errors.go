package main

import (
	"errors"
	"fmt"
	"regexp/syntax"

	"github.com/srg/bleconform/internal/device"
)

// Command-level errors
var (
	// ErrTestsFailed is returned by run when any executed test did not pass.
	ErrTestsFailed = errors.New("conformance tests failed")
)

// FormatUserError turns an error chain into a one-line message for the terminal.
func FormatUserError(err error) string {
	var syntaxErr *syntax.Error
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("invalid --filter pattern %q: %s", syntaxErr.Expr, syntaxErr.Code)
	case errors.Is(err, device.ErrTimeout):
		return fmt.Sprintf("%s (try a larger --timeout-multiplier)", err)
	default:
		return err.Error()
	}
}
