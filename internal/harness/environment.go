package harness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultPollInterval is how often EnsureStarted re-checks readiness.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultStartTimeout bounds how long EnsureStarted waits.
	DefaultStartTimeout = 30 * time.Second
)

// ErrEnvironmentNested is returned when entering an environment that is already entered.
var ErrEnvironmentNested = errors.New("test environment cannot be nested")

// Extra is a resource the environment sets up before tests and tears down after.
type Extra interface {
	Enter(ctx context.Context) error
	Exit() error
}

// Environment owns the extras a run depends on.
type Environment struct {
	logger       *logrus.Logger
	extras       []Extra
	PollInterval time.Duration
	StartTimeout time.Duration

	mu      sync.Mutex
	entered []Extra
	active  bool
}

// NewEnvironment creates an environment that manages extras in the given order.
func NewEnvironment(logger *logrus.Logger, extras ...Extra) *Environment {
	return &Environment{
		logger:       logger,
		extras:       extras,
		PollInterval: DefaultPollInterval,
		StartTimeout: DefaultStartTimeout,
	}
}

// Enter sets up every extra. If one fails, the extras already entered are
// exited in reverse order and the error is returned.
func (e *Environment) Enter(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return ErrEnvironmentNested
	}

	for i, extra := range e.extras {
		if err := extra.Enter(ctx); err != nil {
			exitErr := exitAll(e.entered)
			e.entered = nil
			return errors.Join(fmt.Errorf("failed to enter extra %d: %w", i, err), exitErr)
		}
		e.entered = append(e.entered, extra)
	}

	e.active = true
	e.logger.WithField("extras", len(e.extras)).Debug("Test environment entered")
	return nil
}

// Exit tears down entered extras in reverse order. Exiting an environment
// that was never entered is a no-op.
func (e *Environment) Exit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil
	}
	err := exitAll(e.entered)
	e.entered = nil
	e.active = false
	e.logger.Debug("Test environment exited")
	return err
}

func exitAll(extras []Extra) error {
	var errs []error
	for i := len(extras) - 1; i >= 0; i-- {
		if err := extras[i].Exit(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EnsureStarted polls check until it reports ready, returns an error, or
// StartTimeout elapses.
func (e *Environment) EnsureStarted(ctx context.Context, check func() (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, e.StartTimeout)
	defer cancel()

	ticker := time.NewTicker(e.PollInterval)
	defer ticker.Stop()

	for {
		ready, err := check()
		if err != nil {
			return fmt.Errorf("environment failed to start: %w", err)
		}
		if ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("environment not ready after %v: %w", e.StartTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}
