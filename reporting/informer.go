package reporting

import "sync"

// Informer is the side channel a running test body uses to emit ad hoc
// messages. Messages sent before a reporter is attached are buffered and
// replayed in order on attach; afterwards they forward immediately. Safe
// for concurrent use from any goroutine.
type Informer struct {
	mu       sync.Mutex
	reporter Reporter
	buffer   []string
}

// NewInformer creates a detached informer that buffers messages.
func NewInformer() *Informer {
	return &Informer{}
}

// Info records or forwards one message.
func (i *Informer) Info(message string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.reporter == nil {
		i.buffer = append(i.buffer, message)
		return
	}
	i.reporter.Info(message)
}

// Attach connects a reporter, replaying any buffered messages in the
// order they were recorded. Attaching again replaces the reporter.
func (i *Informer) Attach(reporter Reporter) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.reporter = reporter
	for _, message := range i.buffer {
		reporter.Info(message)
	}
	i.buffer = nil
}
