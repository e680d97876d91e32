package report

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/srg/bleconform/internal/harness"
	"github.com/srg/bleconform/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *harness.Report {
	return &harness.Report{
		Duration: 42 * time.Millisecond,
		Results: []harness.Result{
			{Name: "read succeeds", Status: harness.StatusPass, Duration: 3 * time.Millisecond},
			{Name: "read rejected", Status: harness.StatusFail, Message: "assert_array_equals: lengths differ\nsecond line", Duration: 2 * time.Millisecond},
			{Name: "read stalls", Status: harness.StatusTimeout, Message: "test timed out after 10s", Duration: 10 * time.Second},
			{Name: "write", Status: harness.StatusNotRun, Message: "excluded by filter"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, expected := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON, " yaml ": FormatYAML} {
		f, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, f, in)
	}
	_, err := ParseFormat("csv")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), Options{Format: FormatText}))

	testutils.NewTextAsserter(t).Assert(buf.String(), `PASS    read succeeds (3ms)
FAIL    read rejected (2ms)
        assert_array_equals: lengths differ
        second line
TIMEOUT read stalls (10s)
        test timed out after 10s
NOTRUN  write
        excluded by filter

Ran 4 tests in 42ms: 1 PASS, 1 FAIL, 0 ERROR, 1 TIMEOUT, 1 NOTRUN
`)
}

func TestWriteTextIncludesAssertionDiff(t *testing.T) {
	// GOAL: Verify a failed array comparison shows its expected/actual diff in every format
	//
	// TEST SCENARIO: Test reads a truncated value → FAIL → text, JSON and YAML all carry the unified diff

	h := harness.New(harness.WithTimeout(time.Second))
	require.NoError(t, h.Register("truncated read", func(context.Context, *harness.T) error {
		return harness.AssertArrayEquals([]byte{0, 1}, []byte{0, 1, 2}, "")
	}))
	r := h.Run(context.Background())
	res, ok := r.Result("truncated read")
	require.True(t, ok)
	require.Equal(t, harness.StatusFail, res.Status)

	var text bytes.Buffer
	require.NoError(t, Write(&text, r, Options{Format: FormatText}))
	out := text.String()
	assert.Contains(t, out, "        --- expected\n        +++ actual\n", "FAIL MUST render the diff header under the result")
	assert.Contains(t, out, "        -[2] 0x02\n", "FAIL MUST render the missing element")
	assert.Less(t, strings.Index(out, "lengths differ"), strings.Index(out, "--- expected"), "diff MUST follow the message")
	assert.NotContains(t, out, "\n\n        ", "diff MUST NOT leave blank indented lines")

	var structured bytes.Buffer
	require.NoError(t, Write(&structured, r, Options{Format: FormatJSON}))
	testutils.NewJSONAsserter(t).Assert(structured.String(), `{
		"results": [{"name": "truncated read", "status": "FAIL", "diff": "<<PRESENCE>>"}]
	}`)
	assert.Contains(t, structured.String(), "--- expected")

	structured.Reset()
	require.NoError(t, Write(&structured, r, Options{Format: FormatYAML}))
	testutils.NewJSONAsserter(t).AssertYAML(structured.String(), `{
		"results": [{"name": "truncated read", "status": "FAIL", "diff": "<<PRESENCE>>"}]
	}`)
	assert.Contains(t, structured.String(), "--- expected")
}

func TestWriteTextColors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), Options{Format: FormatText, Colors: true}))

	assert.Contains(t, buf.String(), "\x1b[32mPASS   \x1b[0m read succeeds")
	assert.Contains(t, buf.String(), "\x1b[33mTIMEOUT\x1b[0m")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), Options{Format: FormatJSON}))

	testutils.NewJSONAsserter(t).WithOptions(testutils.WithIgnoreExtraKeys(false)).Assert(buf.String(), `{
		"passed": false,
		"duration": "42ms",
		"summary": {"PASS": 1, "FAIL": 1, "ERROR": 0, "TIMEOUT": 1, "NOTRUN": 1},
		"results": [
			{"name": "read succeeds", "status": "PASS", "duration": "3ms"},
			{"name": "read rejected", "status": "FAIL", "message": "assert_array_equals: lengths differ\nsecond line", "duration": "2ms"},
			{"name": "read stalls", "status": "TIMEOUT", "message": "test timed out after 10s", "duration": "10s"},
			{"name": "write", "status": "NOTRUN", "message": "excluded by filter", "duration": "0s"}
		]
	}`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), Options{Format: FormatYAML}))

	testutils.NewJSONAsserter(t).AssertYAML(buf.String(), `{
		"passed": false,
		"summary": {"FAIL": 1, "NOTRUN": 1},
		"results": [
			{"name": "read succeeds", "status": "PASS"},
			{"name": "read rejected", "status": "FAIL"},
			{"name": "read stalls", "status": "TIMEOUT"},
			{"name": "write", "status": "NOTRUN"}
		]
	}`)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, sampleReport(), Options{Format: "csv"}))
}

func TestColorsEnabled(t *testing.T) {
	assert.False(t, ColorsEnabled(&bytes.Buffer{}), "non-file writers MUST NOT be colored")

	f, err := os.CreateTemp(t.TempDir(), "report")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ColorsEnabled(f), "regular files MUST NOT be colored")
}
