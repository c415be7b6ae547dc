// Package spectree ties the engine's pieces into a runnable application:
// it loads a suite definition, registers it, runs the selected tests on a
// one-shot or periodic schedule, and renders the results.
package spectree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/testforge/spectree/discovery"
	"github.com/testforge/spectree/exectest"
	"github.com/testforge/spectree/registry"
	"github.com/testforge/spectree/reporting"
	"github.com/testforge/spectree/runner"
	"github.com/testforge/spectree/types"
)

// App is the spectree application: one suite, one registry, one runner.
type App struct {
	config   *Config
	version  string
	registry *registry.Registry
	runner   *runner.Runner
	informer *reporting.Informer
	result   *runner.Result
}

// New loads the configured suite file and assembles the registry and
// runner. Registration itself stays lazy; it is triggered by the first
// enumeration or run.
func New(config *Config, version string) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating app",
		"suiteFile", config.SuiteFile,
		"test", config.TestName,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	factory := exectest.NewLeafFactory(exectest.Config{
		WorkDir:         config.WorkDir,
		PendingExitCode: config.PendingExitCode,
		Log:             config.Log,
	})
	driver, err := discovery.LoadSuiteFile(config.SuiteFile, version, factory)
	if err != nil {
		return nil, fmt.Errorf("failed to load suite file: %w", err)
	}

	reg := registry.NewRegistry(registry.Config{
		Log:       config.Log,
		SuiteName: driver.SuiteName(),
		Driver:    driver,
		AutoTags:  driver.AutoTags(),
	})

	informer := reporting.NewInformer()
	testRunner, err := runner.NewRunner(runner.Config{
		Registry: reg,
		Log:      config.Log,
		Informer: informer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &App{
		config:   config,
		version:  version,
		registry: reg,
		runner:   testRunner,
		informer: informer,
	}, nil
}

// Run executes the configured workload: a listing, a single run, or a
// periodic loop until the context is canceled. Test failures surface as a
// TestFailureError; everything operational surfaces as a RuntimeError.
func (a *App) Run(ctx context.Context) error {
	if a.config.ListOnly {
		return a.listTests()
	}

	if err := a.runTests(ctx); err != nil {
		return err
	}

	if a.config.RunOnce {
		a.config.Log.Info("Run completed, exiting (run-once mode)")
		if a.result != nil && a.result.Status == types.TestStatusFail {
			return NewTestFailureError(a.result.String())
		}
		return nil
	}

	a.config.Log.Info("Starting periodic runs", "interval", a.config.RunInterval)
	ticker := time.NewTicker(a.config.RunInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := a.runTests(ctx); err != nil {
				a.config.Log.Error("Error running periodic tests", "error", err)
			}
		case <-ctx.Done():
			a.config.Log.Debug("Context canceled, stopping periodic runs")
			return nil
		}
	}
}

// listTests prints the selected test names in registration order together
// with the expected execution count, without running anything.
func (a *App) listTests() error {
	names, err := a.registry.TestNames()
	if err != nil {
		return NewRuntimeError(err)
	}
	filter := a.filter()
	count, err := a.registry.ExpectedTestCount(filter)
	if err != nil {
		return NewRuntimeError(err)
	}

	for _, name := range names {
		tags, err := a.registry.TagsFor(name)
		if err != nil {
			return NewRuntimeError(err)
		}
		if !filter.Selects(tags) {
			continue
		}
		marker := " "
		if tags[types.TagIgnore] {
			marker = "-"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	fmt.Printf("%d tests would run\n", count)
	return nil
}

// runTests performs one full run and renders the results.
func (a *App) runTests(ctx context.Context) error {
	reporters := []reporting.Reporter{reporting.NewConsole(os.Stdout)}

	var transcript *reporting.FileSink
	if a.config.Transcript != "" {
		sink, err := reporting.NewFileSink(a.config.Transcript)
		if err != nil {
			return NewRuntimeError(err)
		}
		transcript = sink
		reporters = append(reporters, sink)
	}

	result, err := a.runner.Run(ctx, a.config.TestName, a.filter(), reporting.NewComposite(reporters...))
	if transcript != nil {
		if closeErr := transcript.Close(); closeErr != nil {
			a.config.Log.Warn("Failed to close transcript", "error", closeErr)
		}
	}
	if err != nil {
		a.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}
	a.result = result

	a.printResultsTable(result)
	fmt.Println(result.String())
	a.config.Log.Info("Run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

func (a *App) filter() types.Filter {
	return types.Filter{
		Include: a.config.IncludeTags,
		Exclude: a.config.ExcludeTags,
	}
}

// Result returns the most recent run result, nil before the first run.
func (a *App) Result() *runner.Result {
	return a.result
}

// printResultsTable renders the per-test outcomes of one run.
func (a *App) printResultsTable(result *runner.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s (%.1fs)", result.SuiteName, result.Duration.Seconds()))

	t.AppendHeader(table.Row{"Test", "Duration", "Status", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, test := range result.Tests {
		errMsg := ""
		if test.Error != nil {
			errMsg = firstLine(test.Error.Error())
		}
		t.AppendRow(table.Row{
			test.Name,
			fmt.Sprintf("%.1fs", test.Duration.Seconds()),
			statusString(test.Status),
			errMsg,
		})
	}

	switch result.Status {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusIgnored:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("TOTAL %d", result.Stats.Total),
		fmt.Sprintf("%.1fs", result.Duration.Seconds()),
		statusString(result.Status),
		fmt.Sprintf("%d passed, %d failed, %d pending, %d ignored",
			result.Stats.Passed, result.Stats.Failed, result.Stats.Pending, result.Stats.Ignored),
	})

	t.Render()
}

func statusString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusPending:
		return "? pending"
	case types.TestStatusIgnored:
		return "- ignored"
	default:
		return "✗ fail"
	}
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
