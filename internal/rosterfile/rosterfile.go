// internal/rosterfile/rosterfile.go
//
// YAML roster documents. Organizers who run the same exchange every year
// keep the participant list in a file instead of retyping it; this
// package decodes that file, checks its shape, and builds the immutable
// roster the solver consumes.

package rosterfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ohalloran/kringle/internal/exchange"
)

var validate = validator.New()

// ParticipantEntry declares one participant and, optionally, the partner
// they must not draw.
type ParticipantEntry struct {
	Name    string `yaml:"name" validate:"required"`
	Partner string `yaml:"partner,omitempty"`
}

// ForcedEntry fixes a giver→receiver pair before the draw.
type ForcedEntry struct {
	Giver    string `yaml:"giver" validate:"required"`
	Receiver string `yaml:"receiver" validate:"required"`
}

// Document models a roster.yaml file.
type Document struct {
	Version      int                `yaml:"version" validate:"gte=1"`
	Participants []ParticipantEntry `yaml:"participants" validate:"required,min=1,dive"`
	Exclusions   [][]string         `yaml:"exclusions,omitempty" validate:"omitempty,dive,len=2,dive,required"`
	Forced       []ForcedEntry      `yaml:"forced,omitempty" validate:"omitempty,dive"`
}

// Parse decodes and shape-checks a roster document. Semantic problems
// (unknown names, contradictory forced pairs) are caught later when the
// document is turned into a roster.
func Parse(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, fmt.Errorf("rosterfile: document is empty")
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("rosterfile: parse: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	if err := validate.Struct(doc); err != nil {
		return Document{}, fmt.Errorf("rosterfile: invalid document: %w", err)
	}
	return doc, nil
}

// Load reads and parses the roster file at path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("rosterfile: read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Roster builds the solver input from the document. Errors here are
// *exchange.ConfigError values: the file is well-formed YAML but the
// roster it describes contradicts itself.
func (doc Document) Roster() (*exchange.Roster, error) {
	r := exchange.NewRoster()
	for _, entry := range doc.Participants {
		if r.Contains(entry.Name) {
			// Partner entries may have added the name already.
			if entry.Partner == "" {
				continue
			}
		} else if err := r.AddParticipant(entry.Name); err != nil {
			return nil, err
		}
		if entry.Partner != "" {
			if err := r.AddPartners(entry.Name, entry.Partner); err != nil {
				return nil, err
			}
		}
	}
	for _, pair := range doc.Exclusions {
		if err := r.AddExclusion(pair[0], pair[1]); err != nil {
			return nil, err
		}
	}
	for _, entry := range doc.Forced {
		if err := r.AddForced(entry.Giver, entry.Receiver); err != nil {
			return nil, err
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// FromRoster captures a built roster back into a document so the TUI can
// save what the organizer typed. Partner pairs come back as plain
// exclusion entries; the draw treats both identically.
func FromRoster(r *exchange.Roster) Document {
	names := r.Participants()
	doc := Document{
		Version: 1,
		Participants: lo.Map(names, func(name string, _ int) ParticipantEntry {
			return ParticipantEntry{Name: name}
		}),
	}
	for i, p := range names {
		for _, q := range names[i+1:] {
			if r.Excluded(p, q) {
				doc.Exclusions = append(doc.Exclusions, []string{p, q})
			}
		}
	}
	for _, pair := range r.Forced() {
		doc.Forced = append(doc.Forced, ForcedEntry{Giver: pair.Giver, Receiver: pair.Receiver})
	}
	return doc
}

// Save writes the document to path, creating parent directories as
// needed.
func Save(path string, doc Document) error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("rosterfile: invalid document: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("rosterfile: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("rosterfile: ensure dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("rosterfile: write %s: %w", path, err)
	}
	return nil
}
