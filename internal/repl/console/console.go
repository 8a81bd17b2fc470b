// Package console shares the terminal's input stream between the line editor
// and short-lived exclusive readers such as the completion menu.
//
// The editor reads its input from a background goroutine that never stops,
// so handing it os.Stdin directly would let it swallow keystrokes meant for
// whatever takes over the screen. A Console reads the underlying stream only
// on demand and routes every byte to the current owner.
package console

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/muesli/cancelreader"
)

const readChunkSize = 1024

// Console owns the source stream. Exactly one Lease owns the console at a
// time; reads from any other lease block until ownership returns to it.
type Console struct {
	src io.Reader
	// reader wraps src while it is a file so a pending read can be
	// cancelled. A cancelled reader is discarded and reopened on demand.
	reader cancelreader.CancelReader

	mu      sync.Mutex
	cond    *sync.Cond
	owner   *Lease
	root    *Lease
	pending []byte
	err     error
	filling bool
}

// New creates a Console reading from src.
func New(src io.Reader) *Console {
	c := &Console{src: src}
	c.cond = sync.NewCond(&c.mu)
	c.root = &Lease{console: c}
	c.owner = c.root
	return c
}

// EditorInput returns the base reader that owns the console whenever no
// other lease is held. Closing it makes its pending and future reads return
// io.EOF.
func (c *Console) EditorInput() io.ReadCloser {
	return c.root
}

// Acquire transfers ownership to a new lease until it is released.
func (c *Console) Acquire() *Lease {
	c.mu.Lock()
	defer c.mu.Unlock()

	lease := &Lease{console: c, parent: c.owner}
	c.owner = lease
	c.cond.Broadcast()
	return lease
}

// Hold takes ownership without reading, so the source is left alone until
// the returned lease is released. A read already in flight is cancelled when
// the source supports it. Use it while another process reads the terminal.
func (c *Console) Hold() *Lease {
	lease := c.Acquire()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filling && c.reader != nil {
		c.reader.Cancel()
	}
	return lease
}

// startFill begins one background read of the source. Called with c.mu held.
func (c *Console) startFill() {
	c.filling = true
	if c.reader == nil {
		if f, ok := c.src.(*os.File); ok {
			if r, err := cancelreader.NewReader(f); err == nil {
				c.reader = r
			}
		}
	}

	var src io.Reader = c.src
	if c.reader != nil {
		src = c.reader
	}
	go c.fill(src)
}

// fill performs one read of src outside the lock.
func (c *Console) fill(src io.Reader) {
	buf := make([]byte, readChunkSize)
	n, err := src.Read(buf)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = append(c.pending, buf[:n]...)
	switch {
	case errors.Is(err, cancelreader.ErrCanceled):
		if c.reader != nil {
			_ = c.reader.Close()
			c.reader = nil
		}
	case err != nil:
		c.err = err
	}
	c.filling = false
	c.cond.Broadcast()
}

// Lease is a reader that receives input only while it owns the console.
type Lease struct {
	console  *Console
	parent   *Lease
	released bool
}

var _ io.ReadCloser = (*Lease)(nil)

// Read blocks until the lease owns the console and input is available.
// Once the lease is released it returns io.EOF.
func (l *Lease) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	c := l.console
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if l.released {
			return 0, io.EOF
		}
		if c.owner == l {
			if len(c.pending) > 0 {
				n := copy(p, c.pending)
				c.pending = c.pending[n:]
				return n, nil
			}
			if c.err != nil {
				return 0, c.err
			}
			if !c.filling {
				c.startFill()
			}
		}
		c.cond.Wait()
	}
}

// Release gives ownership back to the nearest unreleased lease that was
// active when this one was acquired. Releasing twice is a no-op.
func (l *Lease) Release() {
	c := l.console
	c.mu.Lock()
	defer c.mu.Unlock()

	if l.released {
		return
	}
	l.released = true

	if c.owner == l {
		next := l.parent
		for next != nil && next.released {
			next = next.parent
		}
		c.owner = next
	}
	c.cond.Broadcast()
}

// Close releases the lease.
func (l *Lease) Close() error {
	l.Release()
	return nil
}
