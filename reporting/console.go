package reporting

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Console writes a live, indented progress line per event. It is a
// streaming view of the run; the summary table is rendered separately
// once the run completes.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	depth int
}

// NewConsole creates a console reporter writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) ScopeOpened(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s%s\n", c.indent(), name)
	c.depth++
}

func (c *Console) ScopeClosed(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depth > 0 {
		c.depth--
	}
}

func (c *Console) TestStarting(string) {}

func (c *Console) TestSucceeded(name string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s✓ %s (%s)\n", c.indent(), name, formatDuration(duration))
}

func (c *Console) TestFailed(name string, cause error, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s✗ %s (%s)\n", c.indent(), name, formatDuration(duration))
	if cause != nil {
		c.printf("%s    %s\n", c.indent(), firstLine(cause.Error()))
	}
}

func (c *Console) TestPending(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s? %s (pending)\n", c.indent(), name)
}

func (c *Console) TestIgnored(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s- %s (ignored)\n", c.indent(), name)
}

func (c *Console) Info(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s· %s\n", c.indent(), message)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) indent() string {
	return strings.Repeat("  ", c.depth)
}

func firstLine(s string) string {
	if idx := strings.Index(s, "\n"); idx != -1 {
		return s[:idx]
	}
	return s
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
