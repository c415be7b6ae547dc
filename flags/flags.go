package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "SPECTREE"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	SuiteFile = &cli.StringFlag{
		Name:     "suite",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("SUITE"),
		Usage:    "Path to the suite definition file (eg. 'suite.yaml')",
	}
	TestName = &cli.StringFlag{
		Name:    "test",
		Value:   "",
		EnvVars: prefixEnvVars("TEST"),
		Usage:   "Full name of a single test to run; overrides tag filtering",
	}
	IncludeTags = &cli.StringSliceFlag{
		Name:    "include",
		EnvVars: prefixEnvVars("INCLUDE"),
		Usage:   "Only run tests carrying at least one of these tags; omit to run all",
	}
	ExcludeTags = &cli.StringSliceFlag{
		Name:    "exclude",
		EnvVars: prefixEnvVars("EXCLUDE"),
		Usage:   "Never run tests carrying any of these tags",
	}
	ListOnly = &cli.BoolFlag{
		Name:    "list",
		Value:   false,
		EnvVars: prefixEnvVars("LIST"),
		Usage:   "List the selected test names and expected count without running",
	}
	WorkDir = &cli.StringFlag{
		Name:    "workdir",
		Value:   "",
		EnvVars: prefixEnvVars("WORKDIR"),
		Usage:   "Working directory for test commands",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	Transcript = &cli.StringFlag{
		Name:    "transcript",
		Value:   "",
		EnvVars: prefixEnvVars("TRANSCRIPT"),
		Usage:   "Path to write a plain-text run transcript",
	}
	PendingExitCode = &cli.IntFlag{
		Name:    "pending-exit-code",
		Value:   77,
		EnvVars: prefixEnvVars("PENDING_EXIT_CODE"),
		Usage:   "Exit code a test command uses to report a pending outcome",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level: trace, debug, info, warn, error",
	}
)

var requiredFlags = []cli.Flag{
	SuiteFile,
}

var optionalFlags = []cli.Flag{
	TestName,
	IncludeTags,
	ExcludeTags,
	ListOnly,
	WorkDir,
	RunInterval,
	Transcript,
	PendingExitCode,
	LogLevel,
}

// Flags contains the list of configuration options available to the binary.
var Flags []cli.Flag

func init() {
	Flags = append(Flags, requiredFlags...)
	Flags = append(Flags, optionalFlags...)
}

// CheckRequired verifies that all required flags are set.
func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
