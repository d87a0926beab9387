package runtime

import (
	"github.com/sigboard/sigboard/pkg/datastore"
	"github.com/sigboard/sigboard/pkg/signals"
)

type delivery struct {
	listener datastore.Listener
	matches  map[string][]*signals.Signal
}

// queuedListener collects the matches the store delivers while r.mu is held.
// flushDeliveries hands them to the subscriber once the lock is released.
type queuedListener struct {
	r        *Runtime
	listener datastore.Listener
}

// PatternsMatched must be called with r.mu held
func (q *queuedListener) PatternsMatched(matches map[string][]*signals.Signal) {
	q.r.outbox = append(q.r.outbox, delivery{listener: q.listener, matches: matches})
}

// flushDeliveries delivers queued matches in order without holding r.mu, so listeners may call
// back into the runtime. A flush started from inside a listener leaves the queue to the
// delivery already in progress.
func (r *Runtime) flushDeliveries() {
	for {
		if !r.deliverMu.TryLock() {
			return
		}
		for {
			batch := r.takeOutbox()
			if len(batch) == 0 {
				break
			}
			for _, d := range batch {
				d.listener.PatternsMatched(d.matches)
			}
		}
		r.deliverMu.Unlock()

		if r.outboxLen() == 0 {
			return
		}
	}
}

func (r *Runtime) takeOutbox() []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := r.outbox
	r.outbox = nil
	return batch
}

func (r *Runtime) outboxLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.outbox)
}
