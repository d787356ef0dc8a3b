// internal/envelope/store.go
//
// Sealed draw results. kringle-draw writes one envelope file per giver
// so results can be distributed without the organizer seeing a pairing;
// this package owns that directory. Envelope files are mode 0600 and
// named after the giver.

package envelope

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ohalloran/kringle/internal/exchange"
)

// State describes an envelope on disk.
type State int

const (
	StateMissing State = iota
	StateSealed
	StateError
)

// Store manages envelope IO rooted at a single directory, normally
// .kringle/envelopes/.
type Store struct {
	dir string
	now func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock stamped into envelope contents.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store rooted at dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Path returns where the envelope for giver lives.
func (s *Store) Path(giver string) string {
	return filepath.Join(s.dir, giver+".txt")
}

// Check reports whether an envelope exists for giver.
func (s *Store) Check(giver string) (State, error) {
	info, err := os.Stat(s.Path(giver))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StateMissing, nil
		}
		return StateError, err
	}
	if info.IsDir() {
		return StateError, fmt.Errorf("envelope: %s is a directory", s.Path(giver))
	}
	return StateSealed, nil
}

// SealAll clears any previous draw's envelopes and writes one per giver.
// It returns the path written for each giver.
func (s *Store) SealAll(assignment *exchange.Assignment) (map[string]string, error) {
	if assignment == nil || assignment.Len() == 0 {
		return nil, fmt.Errorf("envelope: nothing to seal")
	}
	if err := s.Clear(); err != nil {
		return nil, err
	}
	paths := make(map[string]string, assignment.Len())
	for _, giver := range assignment.Givers() {
		receiver, _ := assignment.Receiver(giver)
		path, err := s.seal(giver, receiver, assignment.ID())
		if err != nil {
			return nil, err
		}
		paths[giver] = path
	}
	return paths, nil
}

func (s *Store) seal(giver, receiver, drawID string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("envelope: ensure dir: %w", err)
	}
	path := s.Path(giver)
	content := fmt.Sprintf("Kringle draw %s · %s\n\n%s, you are the secret santa for: %s\n\nKeep it to yourself.\n",
		drawID, s.now().UTC().Format("2006-01-02"), giver, receiver)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("envelope: write envelope for %s: %w", giver, err)
	}
	return path, nil
}

// Clear removes every envelope from a previous draw. Stale envelopes
// would otherwise mix two draws in one directory.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("envelope: read dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("envelope: remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// List returns the givers with sealed envelopes, sorted by name.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("envelope: read dir: %w", err)
	}
	var givers []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		givers = append(givers, strings.TrimSuffix(entry.Name(), ".txt"))
	}
	sort.Strings(givers)
	return givers, nil
}
