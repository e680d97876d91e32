package harness

import "time"

// Status is the outcome of a single test.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusError   Status = "ERROR"
	StatusTimeout Status = "TIMEOUT"
	StatusNotRun  Status = "NOTRUN"
)

// AllStatuses lists statuses in reporting order.
var AllStatuses = []Status{StatusPass, StatusFail, StatusError, StatusTimeout, StatusNotRun}

// Result is the outcome of one test. Diff carries the expected/actual diff of a failed assertion.
type Result struct {
	Name     string        `json:"name" yaml:"name"`
	Status   Status        `json:"status" yaml:"status"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`
	Diff     string        `json:"diff,omitempty" yaml:"diff,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report collects the results of a run in registration order.
type Report struct {
	Results  []Result      `json:"results" yaml:"results"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Counts returns the number of results per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int, len(AllStatuses))
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Passed reports whether every test that ran passed. NOTRUN tests are ignored.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if res.Status != StatusPass && res.Status != StatusNotRun {
			return false
		}
	}
	return true
}

// Result returns the result of the named test.
func (r *Report) Result(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return Result{}, false
}
