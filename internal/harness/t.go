package harness

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// T is passed to a test body. It scopes cleanups and logging to one test.
type T struct {
	name   string
	logger *logrus.Entry

	mu       sync.Mutex
	cleanups []func()
	closed   bool
}

func newT(name string, logger *logrus.Entry) *T {
	return &T{name: name, logger: logger}
}

func (t *T) Name() string {
	return t.name
}

// Logger returns the test-scoped logger.
func (t *T) Logger() *logrus.Entry {
	return t.logger
}

// Logf logs at info level with the test name attached.
func (t *T) Logf(format string, args ...any) {
	t.logger.Info(fmt.Sprintf(format, args...))
}

// Cleanup registers fn to run after the test body returns or times out.
// Cleanups run in last-in, first-out order. A body abandoned on timeout may
// still register cleanups; those run immediately.
func (t *T) Cleanup(fn func()) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.runCleanup(fn)
		return
	}
	t.cleanups = append(t.cleanups, fn)
	t.mu.Unlock()
}

func (t *T) runCleanups() {
	t.mu.Lock()
	cleanups := t.cleanups
	t.cleanups = nil
	t.closed = true
	t.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		t.runCleanup(cleanups[i])
	}
}

func (t *T) runCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.WithField("panic", r).Error("Cleanup panicked")
		}
	}()
	fn()
}
