package testutils

import (
	"encoding/json"
	"fmt"

	"github.com/mcuadros/go-defaults"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
	"gopkg.in/yaml.v3"
)

// PresencePlaceholder in expected JSON matches any actual value.
const PresencePlaceholder = "<<PRESENCE>>"

type JSONAssertOptions struct {
	IgnoreExtraKeys          bool     `default:"true"`
	AllowPresencePlaceholder bool     `default:"true"`
	IgnoredFields            []string `default:""`
}

// JSONOption is a functional option for configuring JSONAsserter
type JSONOption func(*JSONAssertOptions)

// JSONAsserter compares structured documents and reports a gojsondiff listing.
type JSONAsserter struct {
	t       TestingT
	options JSONAssertOptions
}

func NewJSONAsserter(t TestingT) *JSONAsserter {
	opts := JSONAssertOptions{}
	defaults.SetDefaults(&opts)
	return &JSONAsserter{t: t, options: opts}
}

func (ja *JSONAsserter) WithOptions(opts ...JSONOption) *JSONAsserter {
	for _, opt := range opts {
		opt(&ja.options)
	}
	return ja
}

func (ja *JSONAsserter) GetOptions() JSONAssertOptions {
	return ja.options
}

// Assert compares actualJSON against expectedJSON
func (ja *JSONAsserter) Assert(actualJSON, expectedJSON string) bool {
	var expected, actual interface{}
	if err := json.Unmarshal([]byte(expectedJSON), &expected); err != nil {
		ja.t.Errorf("invalid expected JSON: %v", err)
		return false
	}
	if err := json.Unmarshal([]byte(actualJSON), &actual); err != nil {
		ja.t.Errorf("invalid actual JSON: %v", err)
		return false
	}
	return ja.assertValues(actual, expected)
}

// AssertYAML compares a YAML document against expected JSON.
func (ja *JSONAsserter) AssertYAML(actualYAML, expectedJSON string) bool {
	var actual interface{}
	if err := yaml.Unmarshal([]byte(actualYAML), &actual); err != nil {
		ja.t.Errorf("invalid actual YAML: %v", err)
		return false
	}
	// Round-trip through JSON so numbers and maps have JSON shapes.
	data, err := json.Marshal(actual)
	if err != nil {
		ja.t.Errorf("YAML document is not JSON compatible: %v", err)
		return false
	}
	return ja.Assert(string(data), expectedJSON)
}

func (ja *JSONAsserter) assertValues(actual, expected interface{}) bool {
	diff := ja.diff(actual, expected)
	if diff != "" {
		ja.t.Errorf("JSON assertion failed:\n%s", diff)
		return false
	}
	return true
}

func (ja *JSONAsserter) diff(actual, expected interface{}) string {
	// gojsondiff compares objects only
	if _, ok := expected.([]interface{}); ok {
		expected = map[string]interface{}{"array": expected}
		actual = map[string]interface{}{"array": actual}
	}

	if ja.options.AllowPresencePlaceholder {
		replacePresenceWithActual(expected, actual)
	}
	if len(ja.options.IgnoredFields) > 0 {
		removeIgnoredFields(expected, ja.options.IgnoredFields)
		removeIgnoredFields(actual, ja.options.IgnoredFields)
	}
	if ja.options.IgnoreExtraKeys {
		pruneExtraKeys(actual, expected)
	}

	expectedObj, ok := expected.(map[string]interface{})
	if !ok {
		return fmt.Sprintf("expected JSON must be an object or array, got %T", expected)
	}
	actualObj, ok := actual.(map[string]interface{})
	if !ok {
		return fmt.Sprintf("actual JSON must be an object or array, got %T", actual)
	}

	d := gojsondiff.New().CompareObjects(expectedObj, actualObj)
	if !d.Modified() {
		return ""
	}

	f := formatter.NewAsciiFormatter(expectedObj, formatter.AsciiFormatterConfig{ShowArrayIndex: true})
	out, err := f.Format(d)
	if err != nil {
		return fmt.Sprintf("JSON diff formatting failed: %v", err)
	}
	return out
}

// replacePresenceWithActual copies actual values over presence placeholders.
func replacePresenceWithActual(expected, actual interface{}) {
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return
		}
		for k := range exp {
			if s, ok := exp[k].(string); ok && s == PresencePlaceholder {
				if v, present := act[k]; present {
					exp[k] = v
				}
				continue
			}
			replacePresenceWithActual(exp[k], act[k])
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return
		}
		for i := range exp {
			if i < len(act) {
				replacePresenceWithActual(exp[i], act[i])
			}
		}
	}
}

// pruneExtraKeys removes keys from actual that expected does not mention.
func pruneExtraKeys(actual, expected interface{}) {
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return
		}
		for k := range act {
			if _, exists := exp[k]; !exists {
				delete(act, k)
			}
		}
		for k := range exp {
			pruneExtraKeys(act[k], exp[k])
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return
		}
		for i := range exp {
			if i < len(act) {
				pruneExtraKeys(act[i], exp[i])
			}
		}
	}
}

func removeIgnoredFields(v interface{}, fields []string) {
	switch val := v.(type) {
	case map[string]interface{}:
		for _, field := range fields {
			delete(val, field)
		}
		for _, child := range val {
			removeIgnoredFields(child, fields)
		}
	case []interface{}:
		for _, child := range val {
			removeIgnoredFields(child, fields)
		}
	}
}

func WithIgnoreExtraKeys(ignore bool) JSONOption {
	return func(opts *JSONAssertOptions) {
		opts.IgnoreExtraKeys = ignore
	}
}

func WithAllowPresencePlaceholder(allow bool) JSONOption {
	return func(opts *JSONAssertOptions) {
		opts.AllowPresencePlaceholder = allow
	}
}

// WithIgnoredFields drops the named keys at every depth before comparing.
func WithIgnoredFields(fields ...string) JSONOption {
	return func(opts *JSONAssertOptions) {
		opts.IgnoredFields = fields
	}
}
