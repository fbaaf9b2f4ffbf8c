package window

import "sync"

// eventQueue buffers events produced by host callbacks until the loop goroutine drains them.
// Pushing never blocks. Once the queue holds its limit, pointer motion is merged into a trailing
// motion event or dropped; every other event is always kept so button releases and close
// requests cannot be lost.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	limit  int

	// notify holds at most one pending wakeup for the consumer
	notify chan struct{}
}

func newEventQueue(limit int) *eventQueue {
	if limit < 1 {
		limit = 1
	}
	return &eventQueue{
		events: make([]Event, 0, limit),
		limit:  limit,
		notify: make(chan struct{}, 1),
	}
}

// push appends e in arrival order and wakes the consumer.
//
// Parameters:
//   - e: the event to queue
//
// Returns:
//   - bool: false if e was motion dropped because the queue is full
func (q *eventQueue) push(e Event) bool {
	q.mu.Lock()
	if m, ok := e.(MouseMotion); ok && len(q.events) >= q.limit {
		last := len(q.events) - 1
		tail, isMotion := q.events[last].(MouseMotion)
		if !isMotion {
			q.mu.Unlock()
			return false
		}
		q.events[last] = MouseMotion{DX: tail.DX + m.DX, DY: tail.DY + m.DY}
	} else {
		q.events = append(q.events, e)
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// drain removes and returns every queued event, oldest first.
func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]Event, 0, q.limit)
	return out
}

// wait returns the channel signalled after a push.
func (q *eventQueue) wait() <-chan struct{} {
	return q.notify
}
