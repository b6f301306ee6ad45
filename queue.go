package tray

import "sync"

// queue is an unbounded FIFO channel pair. Pushes never block, so bus
// method handlers and the synchronization loop can hand values off
// without waiting on the consumer. Values are delivered on out in push
// order; closing the queue delivers the remaining values and then closes
// out.
type queue[T any] struct {
	in  chan T
	out chan T

	mu     sync.Mutex
	closed bool
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{
		in:  make(chan T),
		out: make(chan T),
	}

	go q.pump()

	return q
}

// push enqueues v. Pushing to a closed queue is a no-op.
func (q *queue[T]) push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	// The pump always drains in promptly; the send only waits for the
	// buffer append, not for the consumer.
	q.in <- v
}

// close stops the queue. Buffered values are still delivered.
func (q *queue[T]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.in)
}

// pump moves values from in to out through a growable buffer.
func (q *queue[T]) pump() {
	var buf []T

	for {
		var (
			out  chan T
			next T
		)
		if len(buf) > 0 {
			out = q.out
			next = buf[0]
		}

		select {
		case v, ok := <-q.in:
			if !ok {
				for _, v := range buf {
					q.out <- v
				}
				close(q.out)
				return
			}
			buf = append(buf, v)

		case out <- next:
			buf = buf[1:]
		}
	}
}
