// Package report renders harness results as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/srg/bleconform/internal/harness"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected text, json or yaml)", s)
	}
}

// Options control rendering.
type Options struct {
	Format Format
	Colors bool
}

// document is the structured form shared by the JSON and YAML renderers.
type document struct {
	Passed   bool           `json:"passed" yaml:"passed"`
	Duration string         `json:"duration" yaml:"duration"`
	Summary  map[string]int `json:"summary" yaml:"summary"`
	Results  []result       `json:"results" yaml:"results"`
}

type result struct {
	Name     string `json:"name" yaml:"name"`
	Status   string `json:"status" yaml:"status"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	Diff     string `json:"diff,omitempty" yaml:"diff,omitempty"`
	Duration string `json:"duration" yaml:"duration"`
}

// Write renders r to w.
func Write(w io.Writer, r *harness.Report, opts Options) error {
	switch opts.Format {
	case FormatText, "":
		return writeText(w, r, opts.Colors)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(r)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

// ColorsEnabled reports whether w is a terminal that should get colored output.
func ColorsEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func newDocument(r *harness.Report) document {
	counts := r.Counts()
	doc := document{
		Passed:   r.Passed(),
		Duration: formatDuration(r.Duration),
		Summary:  make(map[string]int, len(harness.AllStatuses)),
		Results:  make([]result, 0, len(r.Results)),
	}
	for _, s := range harness.AllStatuses {
		doc.Summary[string(s)] = counts[s]
	}
	for _, res := range r.Results {
		doc.Results = append(doc.Results, result{
			Name:     res.Name,
			Status:   string(res.Status),
			Message:  res.Message,
			Diff:     res.Diff,
			Duration: formatDuration(res.Duration),
		})
	}
	return doc
}

func writeText(w io.Writer, r *harness.Report, colors bool) error {
	var b strings.Builder

	for _, res := range r.Results {
		fmt.Fprintf(&b, "%s %s", statusLabel(res.Status, colors), res.Name)
		if res.Status != harness.StatusNotRun {
			fmt.Fprintf(&b, " (%s)", formatDuration(res.Duration))
		}
		b.WriteString("\n")
		writeIndented(&b, res.Message)
		writeIndented(&b, res.Diff)
	}

	counts := r.Counts()
	parts := make([]string, 0, len(harness.AllStatuses))
	for _, s := range harness.AllStatuses {
		parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
	}
	fmt.Fprintf(&b, "\nRan %d tests in %s: %s\n", len(r.Results), formatDuration(r.Duration), strings.Join(parts, ", "))

	_, err := io.WriteString(w, b.String())
	return err
}

// writeIndented writes each line of text under the status column.
func writeIndented(b *strings.Builder, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(b, "        %s\n", line)
	}
}

func statusLabel(s harness.Status, colors bool) string {
	label := fmt.Sprintf("%-7s", s)
	if !colors {
		return label
	}

	var c *color.Color
	switch s {
	case harness.StatusPass:
		c = color.New(color.FgGreen)
	case harness.StatusFail, harness.StatusError:
		c = color.New(color.FgRed, color.Bold)
	case harness.StatusTimeout:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgHiBlack)
	}
	c.EnableColor()
	return c.Sprint(label)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
