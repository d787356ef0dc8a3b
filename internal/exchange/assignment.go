package exchange

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a completed draw: a bijection from givers to receivers
// covering the whole roster. It is read-only once produced; the reveal
// layer queries one giver at a time and never prints the full mapping.
type Assignment struct {
	id    string
	drawn time.Time
	pairs map[string]string
	order []string
}

func newAssignment(order []string, pairs map[string]string) *Assignment {
	cloned := make(map[string]string, len(pairs))
	for giver, receiver := range pairs {
		cloned[giver] = receiver
	}
	givers := make([]string, len(order))
	copy(givers, order)
	return &Assignment{
		id:    uuid.NewString(),
		drawn: time.Now().UTC(),
		pairs: cloned,
		order: givers,
	}
}

// ID identifies this draw in the logbook.
func (a *Assignment) ID() string {
	return a.id
}

// DrawnAt returns when the draw completed.
func (a *Assignment) DrawnAt() time.Time {
	return a.drawn
}

// Len returns the number of giver→receiver pairs.
func (a *Assignment) Len() int {
	return len(a.pairs)
}

// Receiver returns the receiver drawn for giver.
func (a *Assignment) Receiver(giver string) (string, bool) {
	receiver, ok := a.pairs[giver]
	return receiver, ok
}

// Givers returns the givers in roster order.
func (a *Assignment) Givers() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Pairs returns every edge in roster order. Callers that care about
// secrecy should use Receiver instead.
func (a *Assignment) Pairs() []Pair {
	out := make([]Pair, 0, len(a.order))
	for _, giver := range a.order {
		out = append(out, Pair{Giver: giver, Receiver: a.pairs[giver]})
	}
	return out
}
