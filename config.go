package spectree

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/testforge/spectree/flags"
)

// Config holds the application configuration
type Config struct {
	SuiteFile       string        // path to the suite definition file
	TestName        string        // single test to run; empty runs the filtered set
	IncludeTags     []string      // nil means no include constraint
	ExcludeTags     []string      // tags that exclude a test from the run
	ListOnly        bool          // enumerate instead of running
	WorkDir         string        // working directory for test commands
	RunInterval     time.Duration // interval between runs
	RunOnce         bool          // exit after one run
	Transcript      string        // optional transcript file path
	PendingExitCode int           // exit code test commands use to report pending
	Log             log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	suiteFile, err := filepath.Abs(ctx.String(flags.SuiteFile.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for suite file: %w", err)
	}

	workDir := ctx.String(flags.WorkDir.Name)
	if workDir != "" {
		workDir, err = filepath.Abs(workDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for work directory: %w", err)
		}
	}

	// The include flag distinguishes unset (nil, no constraint) from set;
	// an explicitly empty include would select nothing.
	var includeTags []string
	if ctx.IsSet(flags.IncludeTags.Name) {
		includeTags = ctx.StringSlice(flags.IncludeTags.Name)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)

	return &Config{
		SuiteFile:       suiteFile,
		TestName:        ctx.String(flags.TestName.Name),
		IncludeTags:     includeTags,
		ExcludeTags:     ctx.StringSlice(flags.ExcludeTags.Name),
		ListOnly:        ctx.Bool(flags.ListOnly.Name),
		WorkDir:         workDir,
		RunInterval:     runInterval,
		RunOnce:         runInterval == 0,
		Transcript:      ctx.String(flags.Transcript.Name),
		PendingExitCode: ctx.Int(flags.PendingExitCode.Name),
		Log:             logger,
	}, nil
}
