package devices

import (
	"context"
	"fmt"
	"sync"

	"voc-dashboard/internal/monitorapi"
)

// API is the slice of the monitor API the device context needs.
type API interface {
	SelectDevice(ctx context.Context, device monitorapi.Device) error
	CurrentDevice(ctx context.Context) (monitorapi.Device, error)
}

// SelectionError reports a failed device switch. The previous selection is
// left in place when it occurs.
type SelectionError struct {
	Device monitorapi.Device
	Err    error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("devices: select %q: %v", e.Device.Name, e.Err)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// Context tracks the active upstream data source. A selection is committed
// only after the server confirms it; failure leaves the previous selection
// untouched.
type Context struct {
	api API

	mu      sync.Mutex
	current monitorapi.Device
}

// NewContext constructs a device context.
func NewContext(api API) *Context {
	return &Context{api: api}
}

// Select asks the server to switch to the device and commits the selection on
// confirmation.
func (c *Context) Select(ctx context.Context, device monitorapi.Device) error {
	if err := c.api.SelectDevice(ctx, device); err != nil {
		return &SelectionError{Device: device, Err: err}
	}
	c.mu.Lock()
	c.current = device
	c.mu.Unlock()
	return nil
}

// Current returns the active selection.
func (c *Context) Current() monitorapi.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Refresh pulls the active selection from the server, used once at session
// start to pick up the device chosen in a previous session.
func (c *Context) Refresh(ctx context.Context) error {
	device, err := c.api.CurrentDevice(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.current = device
	c.mu.Unlock()
	return nil
}
