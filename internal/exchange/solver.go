// internal/exchange/solver.go
//
// The draw algorithm. Two phases:
//
// 1. Random retry: shuffle the free receivers, pair them positionally
//    with the free givers, keep the first shuffle that clears every
//    exclusion. For the light constraint density of a real exchange
//    this almost always succeeds within a handful of attempts and the
//    accepted draw is uniform over the valid assignments.
// 2. Exact matching: if the retry cap runs out, a backtracking bipartite
//    matcher (most-constrained giver first) either completes the draw or
//    proves that no valid assignment exists. ErrInfeasible always rests
//    on a proof: either this phase exhausting the search space, or the
//    cheaper precheck finding a giver with no legal receiver at all.

package exchange

import (
	"math/rand"
	"sort"
	"time"

	"github.com/samber/lo"
)

// DefaultMaxAttempts caps the random-retry phase before the exact
// matcher takes over.
const DefaultMaxAttempts = 5000

type solveConfig struct {
	rng         *rand.Rand
	maxAttempts int
}

// SolveOption customizes a single draw.
type SolveOption func(*solveConfig)

// WithRand injects the random source for the draw. Tests pass a seeded
// source for reproducible draws.
func WithRand(rng *rand.Rand) SolveOption {
	return func(cfg *solveConfig) {
		if rng != nil {
			cfg.rng = rng
		}
	}
}

// WithMaxAttempts overrides the retry cap for the random phase. Values
// below one keep the default.
func WithMaxAttempts(n int) SolveOption {
	return func(cfg *solveConfig) {
		if n >= 1 {
			cfg.maxAttempts = n
		}
	}
}

// Solve produces a complete assignment for the roster, or reports why
// none can be produced. Roster problems surface as *ConfigError before
// any drawing happens; ErrInfeasible is returned only once infeasibility
// is proven.
func Solve(roster *Roster, opts ...SolveOption) (*Assignment, error) {
	if roster == nil {
		return nil, configErrorf("roster is required")
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	cfg := solveConfig{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	names := roster.Participants()
	pairs := make(map[string]string, len(names))
	for _, forced := range roster.Forced() {
		pairs[forced.Giver] = forced.Receiver
	}
	givers := roster.freeGivers()
	receivers := roster.freeReceivers()

	// A giver with no legal receiver left in the free pool already
	// proves that no assignment exists.
	for _, giver := range givers {
		open := lo.SomeBy(receivers, func(name string) bool {
			return !roster.Excluded(giver, name)
		})
		if !open {
			return nil, ErrInfeasible
		}
	}

	if drawn, ok := drawRandom(roster, givers, receivers, cfg); ok {
		return newAssignment(names, merge(pairs, drawn)), nil
	}
	matched, ok := matchExact(roster, givers, receivers, cfg.rng)
	if !ok {
		return nil, ErrInfeasible
	}
	return newAssignment(names, merge(pairs, matched)), nil
}

// drawRandom runs the retry phase. It reports false once the attempt cap
// is exhausted without a clean shuffle.
func drawRandom(roster *Roster, givers, receivers []string, cfg solveConfig) (map[string]string, bool) {
	if len(givers) == 0 {
		return map[string]string{}, true
	}
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		perm := cfg.rng.Perm(len(receivers))
		clean := true
		for i, giver := range givers {
			if roster.Excluded(giver, receivers[perm[i]]) {
				clean = false
				break
			}
		}
		if !clean {
			continue
		}
		out := make(map[string]string, len(givers))
		for i, giver := range givers {
			out[giver] = receivers[perm[i]]
		}
		return out, true
	}
	return nil, false
}

// matchExact is the deterministic fallback: backtracking bipartite
// matching over the free pools, most-constrained giver first. Candidate
// lists are shuffled so the fallback does not always land on the same
// matching. It reports false only after the full search space is
// exhausted.
func matchExact(roster *Roster, givers, receivers []string, rng *rand.Rand) (map[string]string, bool) {
	order := make([]string, len(givers))
	copy(order, givers)
	candidates := make(map[string][]string, len(order))
	for _, giver := range order {
		cands := lo.Filter(receivers, func(name string, _ int) bool {
			return !roster.Excluded(giver, name)
		})
		rng.Shuffle(len(cands), func(i, j int) {
			cands[i], cands[j] = cands[j], cands[i]
		})
		candidates[giver] = cands
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(candidates[order[i]]) < len(candidates[order[j]])
	})

	assigned := make(map[string]string, len(order))
	used := make(map[string]struct{}, len(order))
	var place func(idx int) bool
	place = func(idx int) bool {
		if idx == len(order) {
			return true
		}
		giver := order[idx]
		for _, candidate := range candidates[giver] {
			if _, taken := used[candidate]; taken {
				continue
			}
			assigned[giver] = candidate
			used[candidate] = struct{}{}
			if place(idx + 1) {
				return true
			}
			delete(assigned, giver)
			delete(used, candidate)
		}
		return false
	}
	if !place(0) {
		return nil, false
	}
	return assigned, true
}

func merge(into map[string]string, from map[string]string) map[string]string {
	for giver, receiver := range from {
		into[giver] = receiver
	}
	return into
}
