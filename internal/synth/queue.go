package synth

import "sync/atomic"

type EventKind uint8

const (
	NoteOn EventKind = iota + 1
	NoteOff
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	}
	return "none"
}

// Event is a note change headed for the audio context. Note already
// includes the octave shift. Seq orders events from one producer.
type Event struct {
	Kind EventKind
	Note int
	Seq  uint64
}

type cell struct {
	seq atomic.Uint64
	ev  Event
}

// Queue is a bounded lock-free ring. Any number of goroutines may Push;
// only one may Pop. Neither side ever blocks.
type Queue struct {
	mask  uint64
	cells []cell
	head  atomic.Uint64 // next slot to write
	_     [56]byte
	tail  atomic.Uint64 // next slot to read
}

// NewQueue allocates a ring holding at least size events, rounded up to a
// power of two.
func NewQueue(size int) *Queue {
	n := 2
	for n < size {
		n <<= 1
	}
	q := &Queue{mask: uint64(n - 1), cells: make([]cell, n)}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q
}

func (q *Queue) Cap() int { return len(q.cells) }

// Push reports false when the ring is full.
func (q *Queue) Push(ev Event) bool {
	pos := q.head.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		switch diff := int64(seq) - int64(pos); {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				c.ev = ev
				c.seq.Store(pos + 1)
				return true
			}
			pos = q.head.Load()
		case diff < 0:
			return false
		default:
			pos = q.head.Load()
		}
	}
}

// Pop reports false when no event is ready.
func (q *Queue) Pop() (Event, bool) {
	pos := q.tail.Load()
	c := &q.cells[pos&q.mask]
	if c.seq.Load() != pos+1 {
		return Event{}, false
	}
	ev := c.ev
	c.seq.Store(pos + q.mask + 1)
	q.tail.Store(pos + 1)
	return ev, true
}
