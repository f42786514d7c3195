package notifier

import (
	"context"
	"sync"
	"time"

	"ladder/internal/logger"
	"ladder/internal/pkg/circuit"
)

// Queue delivers messages from a single goroutine so slow sends never block
// the caller. Messages are dropped when the buffer is full, and while the
// breaker is open after repeated send failures.
type Queue struct {
	next    TextNotifier
	timeout time.Duration
	breaker *circuit.Breaker
	ch      chan string
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewQueue(next TextNotifier, size int) *Queue {
	if next == nil {
		next = Nop{}
	}
	if size <= 0 {
		size = 32
	}
	q := &Queue{
		next:    next,
		timeout: 10 * time.Second,
		breaker: circuit.New("notifier", 3, time.Minute),
		ch:      make(chan string, size),
	}
	q.wg.Add(1)
	go q.loop()
	return q
}

// SendText enqueues text; the returned error is always nil.
func (q *Queue) SendText(_ context.Context, text string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil
	}
	select {
	case q.ch <- text:
	default:
		logger.Warnf("notifier queue full, dropping message")
	}
	return nil
}

// Close drains pending messages and stops the worker.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) loop() {
	defer q.wg.Done()
	for text := range q.ch {
		if !q.breaker.Allow() {
			logger.Debugf("notifier circuit open, dropping message")
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.next.SendText(ctx, text); err != nil {
			q.breaker.RecordFailure()
			logger.Warnf("notifier send failed: %v", err)
		} else {
			q.breaker.RecordSuccess()
		}
		cancel()
	}
}
