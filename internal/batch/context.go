package batch

import (
	"sync"

	"github.com/viperball/matchsim/pkg/core"
)

// Progress counts the finished games of the running batch.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Done returns the number of finished games, failed or not.
func (p Progress) Done() int {
	return p.Completed + p.Failed
}

// Context holds the batch currently running and its progress.
type Context struct {
	mu       sync.RWMutex
	batch    *core.Batch
	progress Progress
	running  bool
}

// NewContext creates a Context with no batch loaded.
func NewContext() *Context {
	return &Context{batch: &core.Batch{Label: "No batch loaded"}}
}

// GetBatch returns the current or last batch.
func (c *Context) GetBatch() *core.Batch {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.batch
}

// BatchID returns the id of the running batch, or "" when idle.
func (c *Context) BatchID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.running {
		return ""
	}
	return c.batch.ID
}

// GetProgress returns a snapshot of the batch progress.
func (c *Context) GetProgress() Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.progress
}

// Running reports whether a batch is in progress.
func (c *Context) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Start sets the running batch and resets the progress.
func (c *Context) Start(b *core.Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch = b
	c.progress = Progress{Total: b.Games}
	c.running = true
}

func (c *Context) completed() {
	c.mu.Lock()
	c.progress.Completed++
	c.mu.Unlock()
}

func (c *Context) failed() {
	c.mu.Lock()
	c.progress.Failed++
	c.mu.Unlock()
}

// Finish marks the batch as no longer running. The batch and its progress
// stay readable.
func (c *Context) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}
