package physics

import "sync"

// EventKind distinguishes the start and end of a contact.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopped
)

func (k EventKind) String() string {
	if k == EventStarted {
		return "started"
	}
	return "stopped"
}

// EventFlags qualify a RawEvent.
type EventFlags uint8

const (
	// EventFlagSensor marks a pair involving at least one sensor.
	EventFlagSensor EventFlags = 1 << iota
	// EventFlagRemoved marks a stop caused by removing one of the colliders.
	EventFlagRemoved
)

// RawEvent is a pairwise contact notification from the solver.
type RawEvent struct {
	Kind      EventKind
	Collider1 ColliderHandle
	Collider2 ColliderHandle
	Flags     EventFlags
}

// Sensor reports whether the pair was flagged as a sensor contact.
func (e RawEvent) Sensor() bool {
	return e.Flags&EventFlagSensor != 0
}

// Removed reports whether the stop was caused by a removal.
func (e RawEvent) Removed() bool {
	return e.Flags&EventFlagRemoved != 0
}

// EventQueue is an unbounded FIFO of raw events. Push never blocks or drops.
type EventQueue struct {
	mu    sync.Mutex
	buf   []RawEvent
	head  int
	count int
}

// NewEventQueue returns an empty queue with room for capacity events.
func NewEventQueue(capacity int) *EventQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &EventQueue{buf: make([]RawEvent, capacity)}
}

// Push appends an event, growing the ring when full.
func (q *EventQueue) Push(event RawEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.count)%len(q.buf)] = event
	q.count++
}

func (q *EventQueue) grow() {
	size := len(q.buf) * 2
	if size == 0 {
		size = 8
	}
	buf := make([]RawEvent, size)
	for i := 0; i < q.count; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}

// Drain removes and returns every pending event in arrival order.
func (q *EventQueue) Drain() []RawEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}
	out := make([]RawEvent, q.count)
	for i := range out {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	clear(q.buf)
	q.head = 0
	q.count = 0
	return out
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
