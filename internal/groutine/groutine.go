// Package groutine runs work on named goroutines. Names are attached as pprof
// labels so simulated responders and test bodies are identifiable in
// goroutine dumps.
package groutine

import (
	"context"
	"fmt"
	"runtime/pprof"
)

type ctxKey string

const goroutineNameKey ctxKey = "goroutine_name"

// Go starts a goroutine with a name and an optional parent context.
// Example usage:
//
//	groutine.Go(ctx, "read-2a21", func(ctx context.Context) {
//	    // work
//	})
//
// If parentCtx is nil, context.Background() is used.
func Go(parentCtx context.Context, name string, fn func(ctx context.Context)) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	labels := pprof.Labels("goroutine_name", name)

	go pprof.Do(parentCtx, labels, func(ctx context.Context) {
		ctx = context.WithValue(ctx, goroutineNameKey, name)
		fn(ctx)
	})
}

// PanicError is returned by Await when fn panics.
type PanicError struct {
	Name  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("goroutine %q panicked: %v", e.Name, e.Value)
}

// Await runs fn on a named goroutine and waits for its result or for ctx to
// be done, whichever comes first. On ctx expiry it returns ctx.Err() without
// waiting for fn; fn observes the cancellation through its own ctx.
// A panic inside fn is returned as *PanicError.
func Await[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	resultCh := make(chan result, 1)

	Go(ctx, name, func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				resultCh <- result{value: zero, err: &PanicError{Name: name, Value: r}}
			}
		}()
		v, err := fn(ctx)
		resultCh <- result{value: v, err: err}
	})

	select {
	case r := <-resultCh:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// GetName retrieves the goroutine name from the context.
func GetName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(goroutineNameKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
