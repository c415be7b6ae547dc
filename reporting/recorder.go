package reporting

import (
	"sync"
	"time"
)

// EventKind identifies one recorded reporter event.
type EventKind string

const (
	EventScopeOpened   EventKind = "scope_opened"
	EventScopeClosed   EventKind = "scope_closed"
	EventTestStarting  EventKind = "test_starting"
	EventTestSucceeded EventKind = "test_succeeded"
	EventTestFailed    EventKind = "test_failed"
	EventTestPending   EventKind = "test_pending"
	EventTestIgnored   EventKind = "test_ignored"
	EventInfo          EventKind = "info"
)

// Event is one recorded reporter call.
type Event struct {
	Kind     EventKind
	Name     string // test or scope name, or the info message
	Cause    error
	Duration time.Duration
}

// Recorder captures events in arrival order. It is the in-memory reporter
// used by tests and by anything that wants to post-process a run.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Events returns a copy of all recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the Name field of every recorded event of the given kind,
// in arrival order.
func (r *Recorder) Names(kind EventKind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, ev := range r.events {
		if ev.Kind == kind {
			names = append(names, ev.Name)
		}
	}
	return names
}

func (r *Recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) ScopeOpened(name string) {
	r.record(Event{Kind: EventScopeOpened, Name: name})
}

func (r *Recorder) ScopeClosed(name string) {
	r.record(Event{Kind: EventScopeClosed, Name: name})
}

func (r *Recorder) TestStarting(name string) {
	r.record(Event{Kind: EventTestStarting, Name: name})
}

func (r *Recorder) TestSucceeded(name string, duration time.Duration) {
	r.record(Event{Kind: EventTestSucceeded, Name: name, Duration: duration})
}

func (r *Recorder) TestFailed(name string, cause error, duration time.Duration) {
	r.record(Event{Kind: EventTestFailed, Name: name, Cause: cause, Duration: duration})
}

func (r *Recorder) TestPending(name string) {
	r.record(Event{Kind: EventTestPending, Name: name})
}

func (r *Recorder) TestIgnored(name string) {
	r.record(Event{Kind: EventTestIgnored, Name: name})
}

func (r *Recorder) Info(message string) {
	r.record(Event{Kind: EventInfo, Name: message})
}
