package mail

import (
	"sync"

	"go.uber.org/zap"
)

// Outbox is the in-process queue between the lifecycle engine and the mail
// worker. Enqueue never blocks the request path: when the queue is full the
// message is dropped and logged, preserving the "never blocks, never rolls
// back" contract.
type Outbox struct {
	ch     chan Message
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewOutbox creates a bounded outbox.
func NewOutbox(size int, logger *zap.Logger) *Outbox {
	if size <= 0 {
		size = 256
	}
	return &Outbox{
		ch:     make(chan Message, size),
		logger: logger,
	}
}

// Enqueue offers a message to the queue without blocking.
func (o *Outbox) Enqueue(msg Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		o.logger.Warn("outbox closed; dropping email", zap.String("subject", msg.Subject))
		return
	}
	select {
	case o.ch <- msg:
	default:
		o.logger.Warn("outbox full; dropping email",
			zap.String("subject", msg.Subject),
			zap.Strings("recipients", msg.Recipients))
	}
}

// Messages exposes the consume side for the worker.
func (o *Outbox) Messages() <-chan Message {
	return o.ch
}

// Close stops accepting messages. The worker drains what is already queued.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}
