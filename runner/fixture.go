package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/testforge/spectree/reporting"
	"github.com/testforge/spectree/types"
)

// TestCase is the per-test context handed to the fixture chain: the raw
// body plus the name, effective tags, and informer the wrappers may need
// for setup/teardown decisions.
type TestCase struct {
	Name     string
	Tags     map[string]bool
	Fn       types.TestFunc
	Informer *reporting.Informer
}

// Invoker actually invokes a test body. The dispatcher never calls the raw
// body directly; it always goes through an Invoker, so wrappers can run
// setup and teardown around it or decide not to call it at all.
type Invoker func(ctx context.Context, tc TestCase) error

// Wrapper decorates an Invoker. Wrappers compose into an ordered chain;
// each wrapper decides whether and how to call the next.
type Wrapper func(next Invoker) Invoker

// baseInvoker calls the raw test body.
func baseInvoker(_ context.Context, tc TestCase) error {
	return tc.Fn()
}

// Chain composes wrappers around the base invocation. The first wrapper is
// outermost: Chain(a, b) runs a's setup, then b's, then the body.
func Chain(wrappers ...Wrapper) Invoker {
	invoke := Invoker(baseInvoker)
	for i := len(wrappers) - 1; i >= 0; i-- {
		invoke = wrappers[i](invoke)
	}
	return invoke
}

// InvocationError marks an error produced by the invocation machinery
// around a test body rather than by the body itself. The dispatcher strips
// InvocationError layers to reach the underlying cause before classifying
// the outcome.
type InvocationError struct {
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// unwrapInvocation strips any InvocationError layers and returns the
// underlying cause.
func unwrapInvocation(err error) error {
	for {
		var invErr *InvocationError
		if !errors.As(err, &invErr) || invErr.Err == nil {
			return err
		}
		err = invErr.Err
	}
}
