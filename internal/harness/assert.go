package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
)

// AssertionError is a failed assertion. Tests return it to report FAIL
// rather than ERROR.
type AssertionError struct {
	Assertion   string
	Description string
	Message     string
	Diff        string // unified diff, may be empty
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Assertion)
	b.WriteString(":")
	if e.Description != "" {
		b.WriteString(" ")
		b.WriteString(e.Description)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)
	return b.String()
}

// IsAssertion reports whether err is, or wraps, an *AssertionError.
func IsAssertion(err error) bool {
	var aerr *AssertionError
	return errors.As(err, &aerr)
}

// AssertArrayEquals checks that actual has the same length and the same
// values in the same order as expected. A prefix or superset of expected fails.
func AssertArrayEquals(actual, expected []byte, description string) error {
	if len(actual) != len(expected) {
		return &AssertionError{
			Assertion:   "assert_array_equals",
			Description: description,
			Message: fmt.Sprintf("lengths differ, expected array %s length %d, got %s length %d",
				formatBytes(expected), len(expected), formatBytes(actual), len(actual)),
			Diff: byteDiff(actual, expected),
		}
	}

	for i := range expected {
		if actual[i] != expected[i] {
			return &AssertionError{
				Assertion:   "assert_array_equals",
				Description: description,
				Message: fmt.Sprintf("expected property %d to be %d but got %d (expected array %s got %s)",
					i, expected[i], actual[i], formatBytes(expected), formatBytes(actual)),
				Diff: byteDiff(actual, expected),
			}
		}
	}
	return nil
}

// AssertTrue fails when cond is false.
func AssertTrue(cond bool, description string) error {
	if cond {
		return nil
	}
	return &AssertionError{
		Assertion:   "assert_true",
		Description: description,
		Message:     "expected true got false",
	}
}

// AssertEquals fails when actual != expected.
func AssertEquals[V comparable](actual, expected V, description string) error {
	if actual == expected {
		return nil
	}
	return &AssertionError{
		Assertion:   "assert_equals",
		Description: description,
		Message:     fmt.Sprintf("expected %v but got %v", expected, actual),
	}
}

// AssertRejectsWith fails unless err is non-nil and matches target via errors.Is.
func AssertRejectsWith(err, target error, description string) error {
	if err == nil {
		return &AssertionError{
			Assertion:   "promise_rejects",
			Description: description,
			Message:     fmt.Sprintf("operation succeeded, expected rejection with %q", target),
		}
	}
	if !errors.Is(err, target) {
		return &AssertionError{
			Assertion:   "promise_rejects",
			Description: description,
			Message:     fmt.Sprintf("expected rejection with %q but got %q", target, err),
		}
	}
	return nil
}

// formatBytes renders bytes like [0, 1, 2].
func formatBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprint(b)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// byteDiff renders one byte per line and diffs the two listings.
func byteDiff(actual, expected []byte) string {
	exp := byteLines(expected)
	act := byteLines(actual)
	edits := myers.ComputeEdits("", exp, act)
	return fmt.Sprint(gotextdiff.ToUnified("expected", "actual", exp, edits))
}

func byteLines(data []byte) string {
	var b strings.Builder
	for i, v := range data {
		fmt.Fprintf(&b, "[%d] 0x%02x\n", i, v)
	}
	return b.String()
}
