// Package runner is the execution dispatcher: it decides which registered
// tests run, drives them in registration order through the fixture chain,
// and translates outcomes into reporter calls.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/testforge/spectree/metrics"
	"github.com/testforge/spectree/registry"
	"github.com/testforge/spectree/reporting"
	"github.com/testforge/spectree/types"
)

// Stats tracks outcome counts for one run.
type Stats struct {
	Total     int // selected tests, ignored included
	Passed    int
	Failed    int
	Pending   int
	Ignored   int
	StartTime time.Time
	EndTime   time.Time
}

// Result captures the complete outcome of one run.
type Result struct {
	SuiteName string
	RunID     string
	Status    types.TestStatus
	Duration  time.Duration
	Stats     Stats
	Tests     []*types.TestResult // in execution order
}

// String renders a one-line summary of the run.
func (r *Result) String() string {
	return fmt.Sprintf("suite %q run %s: %s (%d tests, %d passed, %d failed, %d pending, %d ignored) in %.1fs",
		r.SuiteName, r.RunID, r.Status,
		r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Pending, r.Stats.Ignored,
		r.Duration.Seconds())
}

// Config holds configuration for creating a new runner
type Config struct {
	Registry *registry.Registry
	Log      log.Logger
	Wrappers []Wrapper           // fixture chain, outermost first
	Informer *reporting.Informer // optional side channel attached to the reporter at run start
}

// Runner drives test execution for one registry. Safe for concurrent use;
// the registry's tree is immutable once registered and the runner keeps no
// per-run mutable state on itself.
type Runner struct {
	registry *registry.Registry
	log      log.Logger
	invoke   Invoker
	informer *reporting.Informer
	tracer   trace.Tracer
}

// NewRunner creates a new runner instance
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	return &Runner{
		registry: cfg.Registry,
		log:      cfg.Log,
		invoke:   Chain(cfg.Wrappers...),
		informer: cfg.Informer,
		tracer:   otel.Tracer("suite runner"),
	}, nil
}

// Run executes the selected subset of the registered tests in registration
// order and reports every outcome. testName selects a single test by full
// name, overriding the filter; an empty testName runs everything the
// filter selects. Per-test failures are contained and never returned as an
// error; the returned error covers registration failures and unknown test
// names only.
func (r *Runner) Run(ctx context.Context, testName string, filter types.Filter, reporter reporting.Reporter) (*Result, error) {
	if reporter == nil {
		reporter = reporting.NopReporter{}
	}

	root, err := r.registry.Root()
	if err != nil {
		return nil, err
	}

	selected, err := r.selectTests(testName, filter)
	if err != nil {
		return nil, err
	}

	if r.informer != nil {
		r.informer.Attach(reporter)
	}

	runID := uuid.New().String()
	start := time.Now()
	r.log.Debug("Starting run", "suite", r.registry.SuiteName(), "run_id", runID, "selected", len(selected))

	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("suite %s", r.registry.SuiteName()))
	defer span.End()

	result := &Result{
		SuiteName: r.registry.SuiteName(),
		RunID:     runID,
		Stats:     Stats{StartTime: start},
	}
	r.runScope(ctx, root, selected, reporter, result)

	result.Duration = time.Since(start)
	result.Stats.EndTime = time.Now()
	result.Status = determineRunStatus(result)

	metrics.RecordRun(result.SuiteName, runID,
		result.Stats.Passed, result.Stats.Failed, result.Stats.Pending, result.Stats.Ignored,
		result.Duration)
	r.log.Info("Run completed", "suite", result.SuiteName, "run_id", runID, "status", result.Status,
		"passed", result.Stats.Passed, "failed", result.Stats.Failed,
		"pending", result.Stats.Pending, "ignored", result.Stats.Ignored)

	return result, nil
}

// ExpectedTestCount returns how many tests would execute under the filter,
// excluding ignored tests.
func (r *Runner) ExpectedTestCount(filter types.Filter) (int, error) {
	return r.registry.ExpectedTestCount(filter)
}

// selectTests computes the set of full names to run. Explicit selection by
// name overrides the filter but must name a registered test.
func (r *Runner) selectTests(testName string, filter types.Filter) (map[string]bool, error) {
	if testName != "" {
		if _, err := r.registry.Leaf(testName); err != nil {
			return nil, err
		}
		return map[string]bool{testName: true}, nil
	}

	names, err := r.registry.TestNames()
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(names))
	for _, name := range names {
		leaf, err := r.registry.Leaf(name)
		if err != nil {
			return nil, err
		}
		if filter.Selects(leaf.Tags) {
			selected[name] = true
		}
	}
	return selected, nil
}

// runScope walks one scope in registration order. Scope markers are only
// emitted for scopes that contain at least one selected test, so a
// filtered-out subtree leaves no trace in the report.
func (r *Runner) runScope(ctx context.Context, node *registry.TreeNode, selected map[string]bool, reporter reporting.Reporter, result *Result) {
	for _, entry := range node.Children {
		switch {
		case entry.Scope != nil:
			if !containsSelected(entry.Scope, selected) {
				continue
			}
			reporter.ScopeOpened(entry.Scope.Name)
			r.runScope(ctx, entry.Scope, selected, reporter, result)
			reporter.ScopeClosed(entry.Scope.Name)
		case entry.Leaf != nil:
			if !selected[entry.Leaf.Name] {
				continue
			}
			r.runLeaf(ctx, entry.Leaf, reporter, result)
		}
	}
}

// runLeaf executes a single selected leaf and records its terminal
// outcome: ignored, succeeded, failed, or pending.
func (r *Runner) runLeaf(ctx context.Context, leaf *registry.Leaf, reporter reporting.Reporter, result *Result) {
	result.Stats.Total++

	if leaf.Ignored {
		reporter.TestIgnored(leaf.Name)
		result.Stats.Ignored++
		result.Tests = append(result.Tests, &types.TestResult{Name: leaf.Name, Status: types.TestStatusIgnored})
		metrics.RecordTest(result.SuiteName, result.RunID, leaf.Name, types.TestStatusIgnored)
		return
	}

	reporter.TestStarting(leaf.Name)

	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("test %s", leaf.Name))
	start := time.Now()
	err := r.invokeContained(ctx, TestCase{
		Name:     leaf.Name,
		Tags:     leaf.Tags,
		Fn:       leaf.Fn,
		Informer: r.informer,
	})
	duration := time.Since(start)
	span.End()

	testResult := &types.TestResult{Name: leaf.Name, Duration: duration}
	switch {
	case err == nil:
		testResult.Status = types.TestStatusPass
		result.Stats.Passed++
		reporter.TestSucceeded(leaf.Name, duration)
	case errors.Is(err, types.ErrPending):
		testResult.Status = types.TestStatusPending
		result.Stats.Pending++
		reporter.TestPending(leaf.Name)
	default:
		cause := unwrapInvocation(err)
		testResult.Status = types.TestStatusFail
		testResult.Error = cause
		result.Stats.Failed++
		reporter.TestFailed(leaf.Name, cause, duration)
		r.log.Debug("Test failed", "test", leaf.Name, "err", cause)
	}

	result.Tests = append(result.Tests, testResult)
	metrics.RecordTest(result.SuiteName, result.RunID, leaf.Name, testResult.Status)
}

// invokeContained runs the fixture chain and converts a panicking body
// into an error, so one test's failure never aborts its siblings.
func (r *Runner) invokeContained(ctx context.Context, tc TestCase) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if recErr, ok := rec.(error); ok {
				err = recErr
				return
			}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.invoke(ctx, tc)
}

// containsSelected reports whether any leaf under the node is selected.
func containsSelected(node *registry.TreeNode, selected map[string]bool) bool {
	for _, entry := range node.Children {
		if entry.Leaf != nil && selected[entry.Leaf.Name] {
			return true
		}
		if entry.Scope != nil && containsSelected(entry.Scope, selected) {
			return true
		}
	}
	return false
}

// determineRunStatus aggregates per-test outcomes into a run status. Any
// failure fails the run; a run where nothing executed (all selected tests
// ignored, or nothing selected) reports as ignored rather than pass.
func determineRunStatus(result *Result) types.TestStatus {
	if result.Stats.Failed > 0 {
		return types.TestStatusFail
	}
	if result.Stats.Passed == 0 && result.Stats.Pending == 0 {
		return types.TestStatusIgnored
	}
	return types.TestStatusPass
}
