package alerts

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"voc-dashboard/internal/observability/metrics"
)

// Notifier receives alert messages for the user-notification surface.
type Notifier interface {
	Notify(message string)
}

// Event is one server-pushed alert.
type Event struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// Channel is a persistent push subscription for out-of-band alerts, fully
// independent of the polling cadence. Every received alert is delivered to
// the notifier exactly once, in arrival order; a single read loop is the only
// deliverer, so ordering needs no further coordination.
type Channel struct {
	url            string
	notifier       Notifier
	logger         *log.Logger
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
}

// NewChannel constructs an alert channel for the given websocket URL.
func NewChannel(url string, notifier Notifier, reconnectDelay time.Duration, logger *log.Logger) *Channel {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	return &Channel{
		url:            url,
		notifier:       notifier,
		logger:         logger,
		reconnectDelay: reconnectDelay,
		dialer:         websocket.DefaultDialer,
	}
}

// Run connects and relays alerts until the context ends, reconnecting with a
// fixed delay after a connection loss.
func (c *Channel) Run(ctx context.Context) {
	for {
		if err := c.listen(ctx); err != nil && ctx.Err() == nil && c.logger != nil {
			c.logger.Printf("alerts: connection lost: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Channel) listen(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage when the session ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			if c.logger != nil {
				c.logger.Printf("alerts: bad payload: %v", err)
			}
			continue
		}
		if event.Event != "" && event.Event != "alert" {
			continue
		}
		c.notifier.Notify(event.Message)
		metrics.IncAlertDelivered()
	}
}
