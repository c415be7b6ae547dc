package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
)

// FileSink writes a plain-text transcript of the run to a file. All text is
// stripped of ANSI escape sequences so transcripts from colorized test
// commands stay readable.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink creates the transcript file, creating parent directories as
// needed and truncating any previous transcript at the same path.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating transcript directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating transcript file: %w", err)
	}
	return &FileSink{file: file}, nil
}

func (s *FileSink) ScopeOpened(name string) {
	s.writeLine("SCOPE  %s", name)
}

func (s *FileSink) ScopeClosed(name string) {
	s.writeLine("END    %s", name)
}

func (s *FileSink) TestStarting(name string) {
	s.writeLine("START  %s", name)
}

func (s *FileSink) TestSucceeded(name string, duration time.Duration) {
	s.writeLine("PASS   %s (%s)", name, duration.Round(time.Millisecond))
}

func (s *FileSink) TestFailed(name string, cause error, duration time.Duration) {
	if cause != nil {
		s.writeLine("FAIL   %s (%s): %s", name, duration.Round(time.Millisecond), cause.Error())
		return
	}
	s.writeLine("FAIL   %s (%s)", name, duration.Round(time.Millisecond))
}

func (s *FileSink) TestPending(name string) {
	s.writeLine("PEND   %s", name)
}

func (s *FileSink) TestIgnored(name string) {
	s.writeLine("IGNORE %s", name)
}

func (s *FileSink) Info(message string) {
	s.writeLine("INFO   %s", message)
}

// Close flushes and closes the transcript file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *FileSink) writeLine(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := stripansi.Strip(fmt.Sprintf(format, args...))
	fmt.Fprintln(s.file, line)
}
