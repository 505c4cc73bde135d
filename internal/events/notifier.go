package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderDeleted       = "order.deleted"
	StatsUpdated       = "stats.updated"
)

// Publisher is the broker-facing side, implemented by the rabbitmq client.
type Publisher interface {
	Publish(ctx context.Context, event string, body []byte) error
}

type envelope struct {
	event   string
	payload []byte
}

// Notifier decouples state mutations from broker delivery: Publish only
// enqueues onto a buffered channel and a single dispatcher goroutine
// talks to the broker. A slow or absent broker never blocks the
// triggering transaction; on a full buffer the event is dropped with a
// warning.
type Notifier struct {
	publisher Publisher
	logger    *zap.Logger
	queue     chan envelope

	closeOnce sync.Once
	done      chan struct{}
}

func NewNotifier(publisher Publisher, bufferSize int, logger *zap.Logger) *Notifier {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	n := &Notifier{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan envelope, bufferSize),
		done:      make(chan struct{}),
	}
	go n.dispatch()
	return n
}

// Publish is fire-and-forget. Payload marshalling failures and full
// buffers are logged, never surfaced to the caller.
func (n *Notifier) Publish(event string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("encoding event payload", zap.String("event", event), zap.Error(err))
		return
	}

	select {
	case n.queue <- envelope{event: event, payload: body}:
	default:
		n.logger.Warn("event buffer full, dropping event", zap.String("event", event))
	}
}

func (n *Notifier) dispatch() {
	defer close(n.done)
	for env := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := n.publisher.Publish(ctx, env.event, env.payload); err != nil {
			n.logger.Warn("event delivery failed",
				zap.String("event", env.event), zap.Error(err))
		}
		cancel()
	}
}

// Close drains the queue and stops the dispatcher.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
	})
	<-n.done
}
