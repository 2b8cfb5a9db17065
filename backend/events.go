package backend

import "github.com/gogpu/sdcs"

// Modifiers is a bitmask of modifier keys held during an event.
type Modifiers uint8

const (
	// ModShift is set while a shift key is held.
	ModShift Modifiers = 1 << iota
	// ModAlt is set while an alt key is held.
	ModAlt
	// ModCtrl is set while a control key is held.
	ModCtrl
	// ModMeta is set while a meta/super key is held.
	ModMeta
)

// Has reports whether all bits of m2 are set.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// KeyEvent is the common shape every backend translates its native
// keyboard events into.
type KeyEvent struct {
	// Code is the platform key code.
	Code uint32

	// Modifiers are the modifier keys held during the event.
	Modifiers Modifiers

	// Pressed is true for key-down, false for key-up.
	Pressed bool
}

// MouseButton identifies the button of a mouse event.
type MouseButton uint8

const (
	ButtonLeft MouseButton = iota
	ButtonMiddle
	ButtonRight
	ButtonScrollUp
	ButtonScrollDown
	ButtonScrollLeft
	ButtonScrollRight
	Button4
	Button5
)

// String returns a human-readable name for the button.
func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonScrollUp:
		return "scroll-up"
	case ButtonScrollDown:
		return "scroll-down"
	case ButtonScrollLeft:
		return "scroll-left"
	case ButtonScrollRight:
		return "scroll-right"
	case Button4:
		return "button4"
	case Button5:
		return "button5"
	default:
		return "unknown"
	}
}

// MouseEventType identifies what happened in a mouse event.
type MouseEventType uint8

const (
	MousePress MouseEventType = iota
	MouseRelease
	MouseMotion
)

// MouseEvent is the common shape every backend translates its native
// pointer events into.
type MouseEvent struct {
	// X and Y are surface coordinates.
	X, Y int32

	// Button is the button involved; meaningful for press and release.
	Button MouseButton

	// Type is the kind of event.
	Type MouseEventType

	// Modifiers are the modifier keys held during the event.
	Modifiers Modifiers
}

// Default event queue capacities per poll cycle. These are tunables, not
// protocol requirements.
const (
	DefaultKeyQueueCap   = 32
	DefaultMouseQueueCap = 64
)

// EventQueue is a bounded queue of input events accumulated between
// drains. When full, Push drops the newest event and counts the drop; the
// drop total is logged on the next Drain. Not safe for concurrent use,
// matching the single-threaded backend model.
type EventQueue[T any] struct {
	name    string
	buf     []T
	limit   int
	dropped int
}

// NewEventQueue creates a queue bounded at limit events per drain cycle.
// A non-positive limit is clamped to 1.
func NewEventQueue[T any](name string, limit int) *EventQueue[T] {
	if limit <= 0 {
		limit = 1
	}
	return &EventQueue[T]{
		name:  name,
		buf:   make([]T, 0, limit),
		limit: limit,
	}
}

// Push appends an event, dropping it if the queue is full.
func (q *EventQueue[T]) Push(ev T) {
	if len(q.buf) >= q.limit {
		q.dropped++
		return
	}
	q.buf = append(q.buf, ev)
}

// Drain atomically returns the accumulated events and clears the queue.
// The returned slice is owned by the caller.
func (q *EventQueue[T]) Drain() []T {
	if q.dropped > 0 {
		sdcs.Logger().Warn("backend: event queue overflow, events dropped",
			"queue", q.name, "dropped", q.dropped, "limit", q.limit)
		q.dropped = 0
	}
	if len(q.buf) == 0 {
		return nil
	}
	out := q.buf
	q.buf = make([]T, 0, q.limit)
	return out
}

// Len returns the number of queued events.
func (q *EventQueue[T]) Len() int { return len(q.buf) }

// Dropped returns the number of events dropped since the last drain.
func (q *EventQueue[T]) Dropped() int { return q.dropped }
