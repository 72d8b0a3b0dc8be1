package engine

import "github.com/lexpattern/engine/internal/ir"

// followEvent is one entry in the follow-event queue (spec §4.4.2): an
// event id plus the data it carries, whether externally fed or
// generated by a completing action slot.
type followEvent struct {
	id   ir.EventID
	data ir.EventData
}

// followQueue is the per-transition FIFO described in spec §4.4.2. One
// state machine is strictly single-threaded and cooperatively
// event-driven (spec §5): unlike the teacher's mutex+channel
// eventQueue, nothing here needs synchronization — the whole queue is
// seeded with one external event and drained synchronously inside one
// do_transition call before it returns.
type followQueue struct {
	items []followEvent
	head  int
}

// newFollowQueue returns an empty queue.
func newFollowQueue() *followQueue {
	return &followQueue{}
}

// push appends an event to the back of the queue.
func (q *followQueue) push(id ir.EventID, data ir.EventData) {
	q.items = append(q.items, followEvent{id: id, data: data})
}

// pop removes and returns the front event. Returns false if the queue
// is empty.
func (q *followQueue) pop() (followEvent, bool) {
	if q.head >= len(q.items) {
		return followEvent{}, false
	}
	e := q.items[q.head]
	q.items[q.head] = followEvent{}
	q.head++
	return e, true
}

// len returns the number of events not yet popped.
func (q *followQueue) len() int {
	return len(q.items) - q.head
}
