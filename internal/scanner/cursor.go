package scanner

import "sync"

// BlockCursor tracks the last fully scanned height of a chain. The zero
// value is an uninitialized cursor.
type BlockCursor struct {
	mu     sync.RWMutex
	height uint64
	set    bool
}

// Height returns the last scanned height, or false when nothing was scanned.
func (c *BlockCursor) Height() (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.height, c.set
}

// Advance moves the cursor to height.
func (c *BlockCursor) Advance(height uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.height = height
	c.set = true
}
