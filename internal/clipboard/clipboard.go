// Package clipboard exchanges TSV text with other applications through the
// system clipboard, keeping an in-process copy when none is available.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/kobzarvs/tabedit/internal/logger"
)

// ErrClipboardUnavailable is returned when the system clipboard cannot be
// used and nothing has been copied in this process yet.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard reads and writes text. With the system clipboard disabled or
// unsupported it behaves as a process-local register.
type Clipboard struct {
	mu     sync.Mutex
	system bool
	local  string
	filled bool

	// overridable in tests
	write func(string) error
	read  func() (string, error)
}

func New(useSystem bool) *Clipboard {
	return &Clipboard{
		system: useSystem && !clipboard.Unsupported,
		write:  clipboard.WriteAll,
		read:   clipboard.ReadAll,
	}
}

// System reports whether the system clipboard is in use.
func (c *Clipboard) System() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.system
}

// Write stores text locally and, when enabled, on the system clipboard. A
// failing system clipboard is disabled for the rest of the session.
func (c *Clipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local, c.filled = text, true
	if !c.system {
		return nil
	}
	if err := c.write(text); err != nil {
		c.system = false
		logger.Warn("clipboard: system write failed, using local register", "error", err)
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}

// Read returns the system clipboard text, falling back to the local copy.
func (c *Clipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.system {
		text, err := c.read()
		if err == nil {
			return text, nil
		}
		logger.Warn("clipboard: system read failed", "error", err)
	}
	if !c.filled {
		return "", ErrClipboardUnavailable
	}
	return c.local, nil
}
