package harness

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/bleconform/internal/groutine"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TestFunc is a test body. Returning an *AssertionError reports FAIL,
// any other non-nil error reports ERROR.
type TestFunc func(ctx context.Context, t *T) error

// Options configure a Harness.
type Options struct {
	// Timeout is the per-test timeout before the multiplier is applied.
	Timeout time.Duration `default:"10s"`
	// TimeoutMultiplier scales Timeout for slow environments.
	TimeoutMultiplier float64 `default:"1"`
	// Debug disables per-test timeouts so a test can be stepped through.
	Debug bool `default:"false"`

	Logger *logrus.Logger
}

// Option is a functional option for configuring a Harness.
type Option func(*Options)

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func WithTimeoutMultiplier(multiplier float64) Option {
	return func(o *Options) {
		o.TimeoutMultiplier = multiplier
	}
}

func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Harness holds registered tests in registration order and runs them.
type Harness struct {
	opts  Options
	tests *orderedmap.OrderedMap[string, TestFunc]
}

// New creates a harness with default options overridden by opts.
func New(opts ...Option) *Harness {
	o := Options{}
	defaults.SetDefaults(&o)
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logrus.New()
		o.Logger.SetLevel(logrus.PanicLevel)
	}
	return &Harness{
		opts:  o,
		tests: orderedmap.New[string, TestFunc](),
	}
}

// Register adds a named test. Names must be unique and non-empty.
func (h *Harness) Register(name string, fn TestFunc) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("test name is empty")
	}
	if fn == nil {
		return fmt.Errorf("test %q has no body", name)
	}
	if _, exists := h.tests.Get(name); exists {
		return fmt.Errorf("test %q already registered", name)
	}
	h.tests.Set(name, fn)
	return nil
}

// Tests returns registered test names in registration order.
func (h *Harness) Tests() []string {
	names := make([]string, 0, h.tests.Len())
	for pair := h.tests.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// TestTimeout returns the effective per-test timeout; zero means none.
func (h *Harness) TestTimeout() time.Duration {
	if h.opts.Debug || h.opts.Timeout <= 0 {
		return 0
	}
	multiplier := h.opts.TimeoutMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	return time.Duration(float64(h.opts.Timeout) * multiplier)
}

// Run runs every registered test.
func (h *Harness) Run(ctx context.Context) *Report {
	return h.RunFiltered(ctx, nil)
}

// RunFiltered runs the tests whose names match filter; the rest are NOTRUN.
// A nil filter runs everything. Once ctx is canceled the remaining tests are NOTRUN.
func (h *Harness) RunFiltered(ctx context.Context, filter *regexp.Regexp) *Report {
	start := time.Now()
	report := &Report{}

	for pair := h.tests.Oldest(); pair != nil; pair = pair.Next() {
		name, fn := pair.Key, pair.Value

		switch {
		case filter != nil && !filter.MatchString(name):
			report.Results = append(report.Results, Result{Name: name, Status: StatusNotRun, Message: "excluded by filter"})
		case ctx.Err() != nil:
			report.Results = append(report.Results, Result{Name: name, Status: StatusNotRun, Message: "run canceled"})
		default:
			report.Results = append(report.Results, h.runOne(ctx, name, fn))
		}
	}

	report.Duration = time.Since(start)
	return report
}

func (h *Harness) runOne(parent context.Context, name string, fn TestFunc) Result {
	logger := h.opts.Logger.WithField("test", name)
	logger.Debug("Test started")

	ctx, cancel := parent, context.CancelFunc(func() {})
	timeout := h.TestTimeout()
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	}

	t := newT(name, logger)
	start := time.Now()
	_, err := groutine.Await(ctx, "test:"+name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx, t)
	})
	timedOut := err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil
	cancel()
	t.runCleanups()

	result := Result{Name: name, Duration: time.Since(start)}
	switch {
	case timedOut:
		result.Status = StatusTimeout
		result.Message = fmt.Sprintf("test timed out after %v", timeout)
	case err == nil:
		result.Status = StatusPass
	case IsAssertion(err):
		result.Status = StatusFail
		result.Message = err.Error()
		var aerr *AssertionError
		if errors.As(err, &aerr) {
			result.Diff = aerr.Diff
		}
	default:
		result.Status = StatusError
		result.Message = err.Error()
	}

	entry := logger.WithFields(logrus.Fields{
		"status":   result.Status,
		"duration": result.Duration,
	})
	if result.Status == StatusPass {
		entry.Debug("Test finished")
	} else {
		entry.WithField("message", result.Message).Warn("Test finished")
	}
	return result
}
