package email

import (
	"context"
	"sync"

	"github.com/mkovalchuk/contacts-api/internal/logging"
)

// Sender is the delivery surface the dispatcher drains into
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

type job struct {
	kind  string
	to    string
	token string
}

// Dispatcher decouples request latency from mail delivery. Enqueue never
// blocks the caller; delivery failures are logged, not surfaced. The caller's
// contract ends at "enqueued".
type Dispatcher struct {
	sender Sender
	logger *logging.Logger
	queue  chan job

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a single background worker draining the queue
func NewDispatcher(sender Sender, logger *logging.Logger, queueSize int) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		logger: logger,
		queue:  make(chan job, queueSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		// Fresh context: request contexts are long gone by delivery time
		ctx := context.Background()

		var err error
		switch j.kind {
		case "verification":
			err = d.sender.SendVerificationEmail(ctx, j.to, j.token)
		case "password_reset":
			err = d.sender.SendPasswordResetEmail(ctx, j.to, j.token)
		}
		if err != nil {
			d.logger.Warn("failed to deliver email", "kind", j.kind, "email", j.to, "error", err)
		}
	}
}

func (d *Dispatcher) enqueue(j job) {
	// The send happens under the lock so Close can never close the channel
	// between the closed check and the send
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("outbound email queue closed, dropping message", "kind", j.kind, "email", j.to)
		return
	}

	select {
	case d.queue <- j:
	default:
		d.logger.Warn("outbound email queue full, dropping message", "kind", j.kind, "email", j.to)
	}
}

// EnqueueVerification queues a verification message; never blocks
func (d *Dispatcher) EnqueueVerification(to, token string) {
	d.enqueue(job{kind: "verification", to: to, token: token})
}

// EnqueuePasswordReset queues a reset message; never blocks
func (d *Dispatcher) EnqueuePasswordReset(to, token string) {
	d.enqueue(job{kind: "password_reset", to: to, token: token})
}

// Close stops accepting jobs and waits for the worker to drain the queue.
// Safe to call more than once; enqueues after Close are dropped, not panics.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
