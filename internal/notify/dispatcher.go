package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Dispatcher delivers events in the background from a buffered queue
// drained by a fixed pool of workers. A delivery failure is logged and
// never reaches the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	queue    chan SubmissionEvent

	mu     sync.Mutex
	closed bool
	g      errgroup.Group
}

func NewDispatcher(n Notifier, workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	d := &Dispatcher{
		notifier: n,
		timeout:  timeout,
		queue:    make(chan SubmissionEvent, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.g.Go(func() error {
			for ev := range d.queue {
				d.deliver(ev)
			}
			return nil
		})
	}
	return d
}

// Dispatch queues ev for delivery without blocking. It returns false only
// when the queue is full or the dispatcher is closed; the event is dropped
// in that case.
func (d *Dispatcher) Dispatch(ev SubmissionEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		eventLogger(ev).Warn("notify: dispatcher closed, dropping event")
		return false
	}
	select {
	case d.queue <- ev:
		return true
	default:
		eventLogger(ev).WithField("queue_size", cap(d.queue)).Warn("notify: queue full, dropping event")
		return false
	}
}

func (d *Dispatcher) deliver(ev SubmissionEvent) {
	logger := eventLogger(ev)
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Error("notify: notifier panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := d.notifier.Notify(ctx, ev); err != nil {
		logger.WithError(err).Warn("notify: delivery failed")
		return
	}
	logger.WithField("duration", time.Since(start).Round(time.Millisecond)).Debug("notify: delivered")
}

// Close stops accepting events, delivers everything already queued and
// waits for the workers to exit. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	_ = d.g.Wait()
}

func eventLogger(ev SubmissionEvent) *log.Entry {
	return log.WithFields(log.Fields{"response_id": ev.ResponseID, "form_id": ev.FormID})
}
