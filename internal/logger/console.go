package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// Console is a captured logging surface. While active, nothing reaches the
// original output; every entry is recorded instead.
type Console struct {
	hook *test.Hook

	mu       sync.Mutex
	out      io.Writer
	level    logrus.Level
	hooks    logrus.LevelHooks
	restored bool
}

// Capture silences the shared logger and starts recording its entries.
// Call Restore to reinstate the original output, level and hooks.
func Capture() *Console {
	c := &Console{
		hook:  new(test.Hook),
		out:   log.Out,
		level: log.GetLevel(),
	}
	c.hooks = log.ReplaceHooks(make(logrus.LevelHooks))
	log.AddHook(c.hook)
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.TraceLevel)
	return c
}

// Entries returns every entry recorded since the capture started or was last reset
func (c *Console) Entries() []*logrus.Entry {
	return c.hook.AllEntries()
}

// Last returns the most recent entry, or nil
func (c *Console) Last() *logrus.Entry {
	return c.hook.LastEntry()
}

// Count returns the number of recorded entries at the given level
func (c *Console) Count(level logrus.Level) int {
	n := 0
	for _, e := range c.hook.AllEntries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Messages returns the recorded messages in order
func (c *Console) Messages() []string {
	entries := c.hook.AllEntries()
	msgs := make([]string, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// Reset drops the recorded entries
func (c *Console) Reset() {
	c.hook.Reset()
}

// Restore reinstates the logging surface captured by Capture.
// Calling it more than once is a no-op.
func (c *Console) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.restored {
		return
	}
	c.restored = true
	log.ReplaceHooks(c.hooks)
	log.SetOutput(c.out)
	log.SetLevel(c.level)
}

// Restored reports whether Restore has run
func (c *Console) Restored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restored
}
