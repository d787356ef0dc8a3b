// internal/exchange/roster.go
//
// The roster is the single input to a draw: who is taking part, which
// pairs may not be matched, and any pairs the organizer fixed up front.
// It is built once from collected input and treated as immutable by the
// solver.

package exchange

import (
	"strings"

	"github.com/samber/lo"
)

// Pair is one giver→receiver edge of a draw.
type Pair struct {
	Giver    string
	Receiver string
}

// pairKey stores an exclusion as an unordered pair so that excluding
// {p, q} also excludes {q, p}.
type pairKey struct {
	a, b string
}

func keyFor(p, q string) pairKey {
	if q < p {
		p, q = q, p
	}
	return pairKey{a: p, b: q}
}

// Roster holds the participant list in entry order, the symmetric
// exclusion relation, and the forced giver→receiver pairs.
type Roster struct {
	names      []string
	index      map[string]struct{}
	exclusions map[pairKey]struct{}
	forced     map[string]string
	forcedRecv map[string]string
	forcedIn   []string
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		index:      map[string]struct{}{},
		exclusions: map[pairKey]struct{}{},
		forced:     map[string]string{},
		forcedRecv: map[string]string{},
	}
}

// AddParticipant registers a new participant. Names are unique within a
// roster; registering the same name twice is a configuration error.
func (r *Roster) AddParticipant(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return configErrorf("participant name is required")
	}
	if _, ok := r.index[name]; ok {
		return configErrorf("duplicate participant %q", name)
	}
	r.index[name] = struct{}{}
	r.names = append(r.names, name)
	return nil
}

// AddPartners records two participants as a couple: neither may draw the
// other. A name not yet on the roster is added first, so organizers can
// list couples one line at a time.
func (r *Roster) AddPartners(name, partner string) error {
	name = strings.TrimSpace(name)
	partner = strings.TrimSpace(partner)
	if name == "" || partner == "" {
		return configErrorf("partner pairs need two names")
	}
	if name == partner {
		return configErrorf("%q cannot be their own partner", name)
	}
	for _, candidate := range []string{name, partner} {
		if _, ok := r.index[candidate]; !ok {
			if err := r.AddParticipant(candidate); err != nil {
				return err
			}
		}
	}
	return r.AddExclusion(name, partner)
}

// AddExclusion forbids the draw from matching p and q in either
// direction. Both names must already be on the roster.
func (r *Roster) AddExclusion(p, q string) error {
	p = strings.TrimSpace(p)
	q = strings.TrimSpace(q)
	if p == q {
		return configErrorf("%q is always excluded from drawing themself", p)
	}
	for _, name := range []string{p, q} {
		if _, ok := r.index[name]; !ok {
			return configErrorf("exclusion references unknown participant %q", name)
		}
	}
	r.exclusions[keyFor(p, q)] = struct{}{}
	return nil
}

// AddForced fixes giver→receiver before the draw. The pair must satisfy
// every rule a drawn pair would: known names, no self-gifting, no
// excluded pair, and neither side already committed to another forced
// pair.
func (r *Roster) AddForced(giver, receiver string) error {
	giver = strings.TrimSpace(giver)
	receiver = strings.TrimSpace(receiver)
	for _, name := range []string{giver, receiver} {
		if _, ok := r.index[name]; !ok {
			return configErrorf("forced pair references unknown participant %q", name)
		}
	}
	if giver == receiver {
		return configErrorf("forced pair assigns %q to themself", giver)
	}
	if r.Excluded(giver, receiver) {
		return configErrorf("forced pair %s > %s violates an exclusion", giver, receiver)
	}
	if prev, ok := r.forced[giver]; ok {
		return configErrorf("giver %q is already forced to %q", giver, prev)
	}
	if prev, ok := r.forcedRecv[receiver]; ok {
		return configErrorf("receiver %q is already taken by forced giver %q", receiver, prev)
	}
	r.forced[giver] = receiver
	r.forcedRecv[receiver] = giver
	r.forcedIn = append(r.forcedIn, giver)
	return nil
}

// Validate runs the whole-roster checks that only make sense once input
// collection has finished.
func (r *Roster) Validate() error {
	if len(r.names) == 0 {
		return configErrorf("at least one participant is required")
	}
	return nil
}

// Participants returns the roster names in entry order.
func (r *Roster) Participants() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of participants.
func (r *Roster) Len() int {
	return len(r.names)
}

// Contains reports whether name is on the roster.
func (r *Roster) Contains(name string) bool {
	_, ok := r.index[strings.TrimSpace(name)]
	return ok
}

// Excluded reports whether giver may not draw receiver. Self-pairs are
// excluded even when never registered explicitly.
func (r *Roster) Excluded(giver, receiver string) bool {
	if giver == receiver {
		return true
	}
	_, ok := r.exclusions[keyFor(giver, receiver)]
	return ok
}

// Partner returns the recorded exclusion partners of name, in entry
// order. The TUI review screen uses this to echo couples back.
func (r *Roster) Partners(name string) []string {
	return lo.Filter(r.names, func(other string, _ int) bool {
		if other == name {
			return false
		}
		_, ok := r.exclusions[keyFor(name, other)]
		return ok
	})
}

// Forced returns the pre-decided pairs in the order they were added.
func (r *Roster) Forced() []Pair {
	return lo.Map(r.forcedIn, func(giver string, _ int) Pair {
		return Pair{Giver: giver, Receiver: r.forced[giver]}
	})
}

// ForcedReceiver returns the receiver giver is bound to, if any.
func (r *Roster) ForcedReceiver(giver string) (string, bool) {
	receiver, ok := r.forced[giver]
	return receiver, ok
}

// Candidates returns every receiver the giver could legally draw,
// ignoring what other givers have already taken.
func (r *Roster) Candidates(giver string) []string {
	return lo.Filter(r.names, func(name string, _ int) bool {
		return !r.Excluded(giver, name)
	})
}

// freeGivers returns participants without a forced receiver, in entry
// order.
func (r *Roster) freeGivers() []string {
	return lo.Filter(r.names, func(name string, _ int) bool {
		_, forced := r.forced[name]
		return !forced
	})
}

// freeReceivers returns participants not claimed by a forced pair, in
// entry order.
func (r *Roster) freeReceivers() []string {
	return lo.Filter(r.names, func(name string, _ int) bool {
		_, taken := r.forcedRecv[name]
		return !taken
	})
}
