package exchange

import (
	"errors"
	"math/rand"
	"testing"
)

func mustRoster(t *testing.T, names []string, exclusions [][2]string, forced [][2]string) *Roster {
	t.Helper()
	r := NewRoster()
	for _, name := range names {
		if err := r.AddParticipant(name); err != nil {
			t.Fatalf("add participant %s: %v", name, err)
		}
	}
	for _, pair := range exclusions {
		if err := r.AddExclusion(pair[0], pair[1]); err != nil {
			t.Fatalf("add exclusion %v: %v", pair, err)
		}
	}
	for _, pair := range forced {
		if err := r.AddForced(pair[0], pair[1]); err != nil {
			t.Fatalf("add forced %v: %v", pair, err)
		}
	}
	return r
}

// enumerate lists every valid total assignment by brute force. Only used
// as an independent cross-check on small rosters.
func enumerate(r *Roster) []map[string]string {
	names := r.Participants()
	var out []map[string]string
	used := map[string]bool{}
	current := map[string]string{}
	var walk func(idx int)
	walk = func(idx int) {
		if idx == len(names) {
			found := make(map[string]string, len(current))
			for giver, receiver := range current {
				found[giver] = receiver
			}
			out = append(out, found)
			return
		}
		giver := names[idx]
		for _, receiver := range names {
			if used[receiver] || r.Excluded(giver, receiver) {
				continue
			}
			if want, ok := r.ForcedReceiver(giver); ok && want != receiver {
				continue
			}
			used[receiver] = true
			current[giver] = receiver
			walk(idx + 1)
			delete(current, giver)
			used[receiver] = false
		}
	}
	walk(0)
	return out
}

func checkAssignment(t *testing.T, r *Roster, a *Assignment) {
	t.Helper()
	names := r.Participants()
	if a.Len() != len(names) {
		t.Fatalf("assignment covers %d givers, want %d", a.Len(), len(names))
	}
	seen := map[string]bool{}
	for _, giver := range names {
		receiver, ok := a.Receiver(giver)
		if !ok {
			t.Fatalf("giver %s has no receiver", giver)
		}
		if receiver == giver {
			t.Fatalf("giver %s drew themself", giver)
		}
		if r.Excluded(giver, receiver) {
			t.Fatalf("pair %s -> %s violates an exclusion", giver, receiver)
		}
		if seen[receiver] {
			t.Fatalf("receiver %s drawn twice", receiver)
		}
		seen[receiver] = true
	}
	for _, forced := range r.Forced() {
		receiver, _ := a.Receiver(forced.Giver)
		if receiver != forced.Receiver {
			t.Fatalf("forced pair %s -> %s came back as %s -> %s",
				forced.Giver, forced.Receiver, forced.Giver, receiver)
		}
	}
}

func TestSolveThreeWayDraw(t *testing.T) {
	// Scenario A: with three names and no exclusions only the two
	// three-cycles are valid.
	for seed := int64(0); seed < 20; seed++ {
		r := mustRoster(t, []string{"A", "B", "C"}, nil, nil)
		a, err := Solve(r, WithRand(rand.New(rand.NewSource(seed))))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		checkAssignment(t, r, a)
		first, _ := a.Receiver("A")
		if first != "B" && first != "C" {
			t.Fatalf("seed %d: A drew %s", seed, first)
		}
	}
}

func TestSolveRespectsPartnersAndForced(t *testing.T) {
	// Scenario B: partners A/B plus the forced pair C>D.
	valid := enumerate(mustRoster(t,
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}},
		[][2]string{{"C", "D"}},
	))
	if len(valid) == 0 {
		t.Fatalf("scenario must be feasible")
	}
	for seed := int64(0); seed < 25; seed++ {
		r := mustRoster(t,
			[]string{"A", "B", "C", "D"},
			[][2]string{{"A", "B"}},
			[][2]string{{"C", "D"}},
		)
		a, err := Solve(r, WithRand(rand.New(rand.NewSource(seed))))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		checkAssignment(t, r, a)
		if got, _ := a.Receiver("A"); got == "B" {
			t.Fatalf("seed %d: A drew their partner", seed)
		}
		if got, _ := a.Receiver("B"); got == "A" {
			t.Fatalf("seed %d: B drew their partner", seed)
		}
		if got, _ := a.Receiver("C"); got != "D" {
			t.Fatalf("seed %d: forced pair lost, C drew %s", seed, got)
		}
		if !within(valid, a) {
			t.Fatalf("seed %d: draw %v not in the enumerated valid set", seed, a.Pairs())
		}
	}
}

func within(valid []map[string]string, a *Assignment) bool {
	for _, candidate := range valid {
		match := true
		for giver, receiver := range candidate {
			if got, _ := a.Receiver(giver); got != receiver {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestSolveTwoPartnersIsInfeasible(t *testing.T) {
	// Scenario C: two participants who exclude each other.
	r := mustRoster(t, []string{"A", "B"}, [][2]string{{"A", "B"}}, nil)
	_, err := Solve(r, WithRand(rand.New(rand.NewSource(1))))
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
	if IsConfigError(err) {
		t.Fatalf("infeasibility must not be reported as a config error")
	}
}

func TestSolveSingleParticipantIsInfeasible(t *testing.T) {
	r := mustRoster(t, []string{"A"}, nil, nil)
	_, err := Solve(r, WithRand(rand.New(rand.NewSource(1))))
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestSolveForcedExhaustionIsInfeasible(t *testing.T) {
	// A and B are forced onto each other, leaving C with only themself.
	r := mustRoster(t, []string{"A", "B", "C"}, nil, [][2]string{{"A", "B"}, {"B", "A"}})
	_, err := Solve(r, WithRand(rand.New(rand.NewSource(1))))
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestSolveSelfForcedIsConfigError(t *testing.T) {
	// Scenario D: a forced self-pair never reaches the draw.
	r := NewRoster()
	if err := r.AddParticipant("A"); err != nil {
		t.Fatal(err)
	}
	err := r.AddForced("A", "A")
	if err == nil {
		t.Fatalf("expected config error for forced self pair")
	}
	if !IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestSolveEmptyRosterIsConfigError(t *testing.T) {
	_, err := Solve(NewRoster())
	if !IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestSolveFallbackFindsUniqueSolution(t *testing.T) {
	// With these exclusions exactly one assignment remains:
	// A->D, B->C, C->B, D->A. A single retry attempt forces the exact
	// matcher to do the work.
	names := []string{"A", "B", "C", "D"}
	exclusions := [][2]string{{"A", "B"}, {"C", "D"}, {"A", "C"}, {"B", "D"}}
	valid := enumerate(mustRoster(t, names, exclusions, nil))
	if len(valid) != 1 {
		t.Fatalf("expected a unique valid assignment, enumeration found %d", len(valid))
	}
	r := mustRoster(t, names, exclusions, nil)
	a, err := Solve(r, WithRand(rand.New(rand.NewSource(7))), WithMaxAttempts(1))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	checkAssignment(t, r, a)
	want := valid[0]
	for giver, receiver := range want {
		if got, _ := a.Receiver(giver); got != receiver {
			t.Fatalf("giver %s drew %s, want %s", giver, got, receiver)
		}
	}
}

func TestSolveFallbackProvesDenseInfeasibility(t *testing.T) {
	// Partners everywhere: each of the four can only draw within one
	// remaining pair, and the enumeration confirms nothing is left.
	names := []string{"A", "B", "C", "D"}
	exclusions := [][2]string{{"A", "B"}, {"C", "D"}, {"A", "C"}, {"B", "D"}, {"A", "D"}}
	if got := len(enumerate(mustRoster(t, names, exclusions, nil))); got != 0 {
		t.Fatalf("expected no valid assignment, enumeration found %d", got)
	}
	r := mustRoster(t, names, exclusions, nil)
	_, err := Solve(r, WithRand(rand.New(rand.NewSource(3))), WithMaxAttempts(1))
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestSolveSameSeedSameDraw(t *testing.T) {
	build := func(t *testing.T) *Roster {
		return mustRoster(t,
			[]string{"A", "B", "C", "D", "E", "F"},
			[][2]string{{"A", "B"}, {"C", "D"}},
			[][2]string{{"E", "A"}},
		)
	}
	first, err := Solve(build(t), WithRand(rand.New(rand.NewSource(42))))
	if err != nil {
		t.Fatalf("first solve: %v", err)
	}
	second, err := Solve(build(t), WithRand(rand.New(rand.NewSource(42))))
	if err != nil {
		t.Fatalf("second solve: %v", err)
	}
	for _, giver := range first.Givers() {
		a, _ := first.Receiver(giver)
		b, _ := second.Receiver(giver)
		if a != b {
			t.Fatalf("seeded draws diverged for %s: %s vs %s", giver, a, b)
		}
	}
	if first.ID() == second.ID() {
		t.Fatalf("each draw must carry its own id")
	}
}

func TestSolveInvariantsAcrossSeeds(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		r := mustRoster(t,
			[]string{"A", "B", "C", "D", "E", "F", "G", "H"},
			[][2]string{{"A", "B"}, {"C", "D"}, {"E", "F"}},
			[][2]string{{"G", "A"}},
		)
		a, err := Solve(r, WithRand(rand.New(rand.NewSource(seed))))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		checkAssignment(t, r, a)
	}
}
