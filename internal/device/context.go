package device

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Context owns the lifetime of one device connection at a time.
//
// Each Create opens the driver and starts a new generation identified by a
// strictly increasing Epoch. Destroy closes the driver and resets the
// buffer pool; every object stamped with the old epoch becomes inoperable
// at once, without being visited. A Context is not safe for concurrent use.
type Context struct {
	open   Opener
	driver Driver
	pool   *BufferPool
	logger *slog.Logger

	active Epoch
	next   Epoch
	fp64   bool
	label  string
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used by the context and its pool.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxPerBucket sets how many released buffers the pool keeps per size.
func WithMaxPerBucket(n int) Option {
	return func(c *Context) {
		if n >= 0 {
			c.pool.maxPer = n
		}
	}
}

// NewContext returns an inactive context that opens drivers with open.
func NewContext(open Opener, opts ...Option) *Context {
	c := &Context{
		open:   open,
		logger: slog.Default(),
		next:   1,
	}
	c.pool = NewBufferPool(nil, c.logger)
	for _, opt := range opts {
		opt(c)
	}
	c.pool.logger = c.logger
	return c
}

// Create opens the device and makes a new generation active.
func (c *Context) Create() (Epoch, error) {
	if c.active != NoEpoch {
		return NoEpoch, fmt.Errorf("%w: epoch %s", ErrContextActive, c.active)
	}
	if c.open == nil {
		return NoEpoch, Wrap("open", errors.New("no driver opener configured"))
	}

	drv, err := c.open()
	if err != nil {
		return NoEpoch, Wrap("open", err)
	}

	c.driver = drv
	c.pool.attach(drv)
	c.active = c.next
	c.next++
	c.fp64 = drv.FP64()
	c.label = uuid.NewString()

	c.logger.Info("device context created",
		"epoch", c.active, "device", drv.Name(), "fp64", c.fp64, "id", c.label)
	return c.active, nil
}

// EnsureActive returns the active epoch, creating a context if needed.
func (c *Context) EnsureActive() (Epoch, error) {
	if c.active != NoEpoch {
		return c.active, nil
	}
	return c.Create()
}

// Destroy closes the device. All buffers of the current generation are
// forgotten by the pool without being freed. It is a no-op when inactive.
func (c *Context) Destroy() {
	if c.active == NoEpoch {
		return
	}

	if err := c.driver.Close(); err != nil {
		c.logger.Warn("device close failed", "epoch", c.active, "error", err)
	}
	c.logger.Info("device context destroyed", "epoch", c.active, "id", c.label)

	c.pool.Reset()
	c.pool.attach(nil)
	c.driver = nil
	c.active = NoEpoch
	c.fp64 = false
	c.label = ""
}

// Stamp returns a stamp for a new object. Objects that need the device get
// the active epoch and fail when no context is active; others get the
// zero stamp.
func (c *Context) Stamp(requiresContext bool) (Stamp, error) {
	if !requiresContext {
		return Stamp{}, nil
	}
	if c.active == NoEpoch {
		return Stamp{}, fmt.Errorf("%w: no active device context", ErrInoperable)
	}
	return StampOf(c.active), nil
}

// StillValid reports whether s belongs to the active generation.
func (c *Context) StillValid(s Stamp) bool {
	return s.ValidAt(c.active)
}

// IsActive reports whether e is the active generation.
func (c *Context) IsActive(e Epoch) bool {
	return e != NoEpoch && e == c.active
}

// ActiveEpoch returns the active epoch, or NoEpoch.
func (c *Context) ActiveEpoch() Epoch {
	return c.active
}

// FP64 reports whether the active device supports double precision.
func (c *Context) FP64() bool {
	return c.fp64
}

// Driver returns the open driver, or nil when inactive.
func (c *Context) Driver() Driver {
	return c.driver
}

// DriverName returns the name of the open device, or "" when inactive.
func (c *Context) DriverName() string {
	if c.driver == nil {
		return ""
	}
	return c.driver.Name()
}

// Pool returns the buffer pool of this context.
func (c *Context) Pool() *BufferPool {
	return c.pool
}

// Label returns a unique id for the active generation, for logs.
func (c *Context) Label() string {
	return c.label
}

// Logger returns the context logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}
