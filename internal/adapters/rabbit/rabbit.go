// Package rabbit implements the broker port over RabbitMQ. The platform
// publishes inventory mutations and raw-file events on per-organisation
// queues; schedulers poll them with non-blocking gets and ack only after a
// message was fully handled.
package rabbit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/strixlab/patrol/internal/core"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

var _ core.Broker = (*Broker)(nil)

// dialTimeout bounds the TCP connect to the broker. AMQP handshakes after
// the dial are governed by the server.
const dialTimeout = 10 * time.Second

// connectionName identifies the scheduler in the RabbitMQ management UI.
const connectionName = "patrol-scheduler"

// BrokerOptions groups settings for a Broker.
type BrokerOptions struct {
	// URI is the AMQP connection string.
	URI string

	Logger *slog.Logger
}

// Broker manages one AMQP connection with one channel per queue. Queues are
// declared on first use; declaration is idempotent, so it does not matter
// whether the publisher or this consumer gets there first. A failed get
// drops the channel (and connection when it died) and the next call
// reconnects.
type Broker struct {
	uri    string
	logger *slog.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	channels map[string]*amqp.Channel
	closed   bool
}

// NewBroker constructs a Broker. No connection is made until the first Get.
func NewBroker(opts BrokerOptions) (*Broker, error) {
	if opts.URI == "" {
		return nil, apperrors.Validation("broker URI is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		uri:      opts.URI,
		logger:   logger.With("adapter", "rabbit"),
		channels: make(map[string]*amqp.Channel),
	}, nil
}

// Get fetches one message from the named queue without waiting. Returns
// (nil, nil) when the queue is empty. The returned delivery must be acked
// or nacked by the caller.
func (b *Broker) Get(ctx context.Context, queue string) (core.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch, err := b.channel(queue)
	if err != nil {
		return nil, err
	}

	msg, ok, err := ch.Get(queue, false)
	if err != nil {
		b.dropChannel(queue)
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "get from queue %s", queue)
	}
	if !ok {
		return nil, nil
	}
	return &delivery{msg: msg}, nil
}

// Ping connects to the broker without touching any queue. Used for startup
// readiness and health checks.
func (b *Broker) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.connectionLocked()
	return err
}

// Close shuts the connection and all channels down. The broker cannot be
// used afterwards.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var firstErr error
	for name, ch := range b.channels {
		if err := ch.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close channel %s: %w", name, err)
		}
	}
	b.channels = make(map[string]*amqp.Channel)

	if b.conn != nil && !b.conn.IsClosed() {
		if err := b.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close connection: %w", err)
		}
	}
	b.conn = nil
	return firstErr
}

// channel returns the queue's channel, connecting and declaring the queue
// when needed.
func (b *Broker) channel(queue string) (*amqp.Channel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, apperrors.Unavailable("broker is closed")
	}

	if ch, ok := b.channels[queue]; ok && !ch.IsClosed() {
		return ch, nil
	}

	conn, err := b.connectionLocked()
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "open channel for queue %s", queue)
	}

	// Matches the declaration the publishers use; a mismatch closes the
	// channel with a 406.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "declare queue %s", queue)
	}

	b.channels[queue] = ch
	return ch, nil
}

// connectionLocked returns the live connection, dialing when there is none.
// The caller holds b.mu.
func (b *Broker) connectionLocked() (*amqp.Connection, error) {
	if b.closed {
		return nil, apperrors.Unavailable("broker is closed")
	}
	if b.conn != nil && !b.conn.IsClosed() {
		return b.conn, nil
	}

	// A dead connection invalidates every channel hanging off it.
	b.channels = make(map[string]*amqp.Channel)

	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(connectionName)

	conn, err := amqp.DialConfig(b.uri, amqp.Config{
		Dial:       amqp.DefaultDial(dialTimeout),
		Properties: props,
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "connect to broker")
	}

	b.logger.Info("connected to broker")
	b.conn = conn
	return conn, nil
}

// dropChannel forgets a queue's channel so the next Get reopens it. When
// the underlying connection died too, it is forgotten as well.
func (b *Broker) dropChannel(queue string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.channels[queue]; ok {
		if !ch.IsClosed() {
			_ = ch.Close()
		}
		delete(b.channels, queue)
	}
	if b.conn != nil && b.conn.IsClosed() {
		b.conn = nil
	}
}

// delivery adapts one AMQP message to the broker port.
type delivery struct {
	msg amqp.Delivery
}

// Body returns the message payload.
func (d *delivery) Body() []byte { return d.msg.Body }

// Ack acknowledges the message, removing it from the queue.
func (d *delivery) Ack() error {
	return d.msg.Ack(false)
}

// Nack rejects the message. With requeue the broker redelivers it later;
// without, the message is dropped.
func (d *delivery) Nack(requeue bool) error {
	return d.msg.Nack(false, requeue)
}
