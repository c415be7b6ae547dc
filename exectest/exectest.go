// Package exectest binds suite-file leaves to subprocess commands. Each
// leaf's argv is executed once per run; the process exit code decides the
// outcome.
package exectest

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/testforge/spectree/discovery"
	"github.com/testforge/spectree/types"
)

// DefaultPendingExitCode is the exit code a command uses to signal a
// pending outcome. 77 follows the automake convention for skipped tests.
const DefaultPendingExitCode = 77

// Config holds configuration for the command-backed leaf factory
type Config struct {
	WorkDir         string // working directory for every command; empty means inherit
	PendingExitCode int    // exit code treated as pending; 0 means DefaultPendingExitCode
	Log             log.Logger
}

// NewLeafFactory returns a LeafFactory producing bodies that run the leaf's
// command. Exit 0 is a pass, the pending exit code is a pending outcome,
// any other exit is a failure carrying the command's stderr. A leaf with no
// command at all is a declared placeholder and always reports pending.
func NewLeafFactory(cfg Config) discovery.LeafFactory {
	if cfg.PendingExitCode == 0 {
		cfg.PendingExitCode = DefaultPendingExitCode
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}

	return func(spec discovery.LeafSpec) (types.TestFunc, error) {
		if len(spec.Command) == 0 {
			return func() error { return types.ErrPending }, nil
		}
		argv := append([]string{}, spec.Command...)

		return func() error {
			cmd := exec.Command(argv[0], argv[1:]...)
			cmd.Dir = cfg.WorkDir
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			cfg.Log.Debug("Running test command", "test", spec.Name, "command", strings.Join(argv, " "))
			err := cmd.Run()
			if err == nil {
				return nil
			}

			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				if exitErr.ExitCode() == cfg.PendingExitCode {
					return types.ErrPending
				}
				return fmt.Errorf("command %q exited %d: %s",
					strings.Join(argv, " "), exitErr.ExitCode(), firstNonEmpty(stderr.String(), stdout.String()))
			}
			return fmt.Errorf("starting command %q: %w", strings.Join(argv, " "), err)
		}, nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return "(no output)"
}
