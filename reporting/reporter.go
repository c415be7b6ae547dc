// Package reporting defines the event channel between the execution
// dispatcher and whatever renders a run, plus a few concrete sinks.
package reporting

import "time"

// Reporter receives ordered lifecycle events for one run. Implementations
// must be safe to call from whichever goroutine runs a given test.
type Reporter interface {
	// ScopeOpened and ScopeClosed bracket the tests of one scope and carry
	// the scope's display name. They are only emitted for scopes that
	// contain at least one selected test.
	ScopeOpened(name string)
	ScopeClosed(name string)

	TestStarting(name string)
	TestSucceeded(name string, duration time.Duration)
	TestFailed(name string, cause error, duration time.Duration)
	TestPending(name string)
	TestIgnored(name string)

	// Info carries ad hoc messages emitted by running test bodies through
	// the informer side channel.
	Info(message string)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) ScopeOpened(string)                      {}
func (NopReporter) ScopeClosed(string)                      {}
func (NopReporter) TestStarting(string)                     {}
func (NopReporter) TestSucceeded(string, time.Duration)     {}
func (NopReporter) TestFailed(string, error, time.Duration) {}
func (NopReporter) TestPending(string)                      {}
func (NopReporter) TestIgnored(string)                      {}
func (NopReporter) Info(string)                             {}

// Composite fans every event out to multiple reporters in order.
type Composite struct {
	reporters []Reporter
}

// NewComposite creates a reporter that forwards to all given reporters.
func NewComposite(reporters ...Reporter) *Composite {
	return &Composite{reporters: reporters}
}

func (c *Composite) ScopeOpened(name string) {
	for _, r := range c.reporters {
		r.ScopeOpened(name)
	}
}

func (c *Composite) ScopeClosed(name string) {
	for _, r := range c.reporters {
		r.ScopeClosed(name)
	}
}

func (c *Composite) TestStarting(name string) {
	for _, r := range c.reporters {
		r.TestStarting(name)
	}
}

func (c *Composite) TestSucceeded(name string, duration time.Duration) {
	for _, r := range c.reporters {
		r.TestSucceeded(name, duration)
	}
}

func (c *Composite) TestFailed(name string, cause error, duration time.Duration) {
	for _, r := range c.reporters {
		r.TestFailed(name, cause, duration)
	}
}

func (c *Composite) TestPending(name string) {
	for _, r := range c.reporters {
		r.TestPending(name)
	}
}

func (c *Composite) TestIgnored(name string) {
	for _, r := range c.reporters {
		r.TestIgnored(name)
	}
}

func (c *Composite) Info(message string) {
	for _, r := range c.reporters {
		r.Info(message)
	}
}
