package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONAsserter_DefaultOptions(t *testing.T) {
	opts := NewJSONAsserter(t).GetOptions()

	assert.True(t, opts.IgnoreExtraKeys, "IgnoreExtraKeys MUST default to true")
	assert.True(t, opts.AllowPresencePlaceholder, "AllowPresencePlaceholder MUST default to true")
	assert.Empty(t, opts.IgnoredFields)
}

func TestJSONAsserter_Assert(t *testing.T) {
	tests := []struct {
		name     string
		opts     []JSONOption
		actual   string
		expected string
		pass     bool
	}{
		{
			name:     "equal",
			actual:   `{"name": "read", "status": "PASS"}`,
			expected: `{"status": "PASS", "name": "read"}`,
			pass:     true,
		},
		{
			name:     "value differs",
			actual:   `{"status": "FAIL"}`,
			expected: `{"status": "PASS"}`,
		},
		{
			name:     "extra keys ignored",
			actual:   `{"status": "PASS", "message": "x"}`,
			expected: `{"status": "PASS"}`,
			pass:     true,
		},
		{
			name:     "extra keys significant",
			opts:     []JSONOption{WithIgnoreExtraKeys(false)},
			actual:   `{"status": "PASS", "message": "x"}`,
			expected: `{"status": "PASS"}`,
		},
		{
			name:     "presence placeholder",
			actual:   `{"duration": "12ms", "status": "PASS"}`,
			expected: `{"duration": "<<PRESENCE>>", "status": "PASS"}`,
			pass:     true,
		},
		{
			name:     "presence placeholder requires key",
			opts:     []JSONOption{WithIgnoreExtraKeys(false)},
			actual:   `{"status": "PASS"}`,
			expected: `{"duration": "<<PRESENCE>>", "status": "PASS"}`,
		},
		{
			name:     "ignored fields at depth",
			opts:     []JSONOption{WithIgnoredFields("duration"), WithIgnoreExtraKeys(false)},
			actual:   `{"results": [{"name": "a", "duration": "3ms"}], "duration": "5ms"}`,
			expected: `{"results": [{"name": "a", "duration": "0s"}]}`,
			pass:     true,
		},
		{
			name:     "root arrays",
			actual:   `[1, 2, 3]`,
			expected: `[1, 2, 3]`,
			pass:     true,
		},
		{
			name:     "root arrays differ",
			actual:   `[1, 2]`,
			expected: `[1, 2, 3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingT{}
			ok := NewJSONAsserter(rec).WithOptions(tt.opts...).Assert(tt.actual, tt.expected)
			assert.Equal(t, tt.pass, ok, "errors: %v", rec.errors)
		})
	}
}

func TestJSONAsserter_InvalidInput(t *testing.T) {
	rec := &recordingT{}
	assert.False(t, NewJSONAsserter(rec).Assert(`{`, `{}`))
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "invalid actual JSON")
}

func TestJSONAsserter_AssertYAML(t *testing.T) {
	rec := &recordingT{}
	ok := NewJSONAsserter(rec).AssertYAML(`
passed: true
summary:
  PASS: 2
results:
  - name: read
    status: PASS
`, `{"passed": true, "summary": {"PASS": 2}, "results": [{"name": "read", "status": "PASS"}]}`)

	assert.True(t, ok, "errors: %v", rec.errors)
}
