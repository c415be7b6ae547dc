package spectree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testforge/spectree/types"
)

func writeSuiteFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T, suiteFile string) *Config {
	t.Helper()
	return &Config{
		SuiteFile:       suiteFile,
		RunOnce:         true,
		PendingExitCode: 77,
		Log:             log.New(),
	}
}

const mixedSuite = `
suite: Mixed outcomes
nodes:
  - scope: Group
    nodes:
      - test: passes
        command: ["true"]
      - test: fails
        command: ["sh", "-c", "echo broken >&2; exit 1"]
  - test: declared only
`

func TestAppRunOnceReportsFailure(t *testing.T) {
	app, err := New(testConfig(t, writeSuiteFile(t, mixedSuite)), "v1.0.0")
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err), "a failed run surfaces as a test failure, not a runtime error")

	result := app.Result()
	require.NotNil(t, result)
	assert.Equal(t, types.TestStatusFail, result.Status)
	assert.Equal(t, 1, result.Stats.Passed)
	assert.Equal(t, 1, result.Stats.Failed)
	assert.Equal(t, 1, result.Stats.Pending)
}

func TestAppRunOncePassingSuite(t *testing.T) {
	suite := `
suite: All green
nodes:
  - test: passes
    command: ["true"]
`
	app, err := New(testConfig(t, writeSuiteFile(t, suite)), "v1.0.0")
	require.NoError(t, err)

	require.NoError(t, app.Run(context.Background()))
	result := app.Result()
	require.NotNil(t, result)
	assert.Equal(t, types.TestStatusPass, result.Status)
}

func TestAppListOnlyDoesNotRun(t *testing.T) {
	cfg := testConfig(t, writeSuiteFile(t, mixedSuite))
	cfg.ListOnly = true
	app, err := New(cfg, "v1.0.0")
	require.NoError(t, err)

	require.NoError(t, app.Run(context.Background()))
	assert.Nil(t, app.Result(), "listing never executes tests")
}

func TestAppMissingSuiteFile(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := New(cfg, "v1.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load suite file")
}

func TestAppWritesTranscript(t *testing.T) {
	cfg := testConfig(t, writeSuiteFile(t, mixedSuite))
	cfg.Transcript = filepath.Join(t.TempDir(), "out", "run.log")
	app, err := New(cfg, "v1.0.0")
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.Error(t, err) // the suite contains a failing test

	data, readErr := os.ReadFile(cfg.Transcript)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "PASS   Group passes")
	assert.Contains(t, string(data), "FAIL   Group fails")
}
