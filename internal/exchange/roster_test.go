package exchange

import (
	"strings"
	"testing"
)

func TestAddParticipantRejectsDuplicates(t *testing.T) {
	r := NewRoster()
	if err := r.AddParticipant("Alice"); err != nil {
		t.Fatalf("add participant: %v", err)
	}
	err := r.AddParticipant("Alice")
	if err == nil {
		t.Fatalf("expected duplicate participant error")
	}
	if !IsConfigError(err) {
		t.Fatalf("duplicate participant should be a config error, got %v", err)
	}
}

func TestAddParticipantRejectsEmptyName(t *testing.T) {
	r := NewRoster()
	if err := r.AddParticipant("   "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestAddPartnersRegistersBothAndExcludes(t *testing.T) {
	r := NewRoster()
	if err := r.AddPartners("Alice", "Bob"); err != nil {
		t.Fatalf("add partners: %v", err)
	}
	if got := r.Len(); got != 2 {
		t.Fatalf("expected 2 participants, got %d", got)
	}
	if !r.Excluded("Alice", "Bob") || !r.Excluded("Bob", "Alice") {
		t.Fatalf("partner exclusion must apply in both directions")
	}
	partners := r.Partners("Alice")
	if len(partners) != 1 || partners[0] != "Bob" {
		t.Fatalf("Partners(Alice) = %v, want [Bob]", partners)
	}
}

func TestAddPartnersRejectsOwnPartner(t *testing.T) {
	r := NewRoster()
	err := r.AddPartners("Alice", "Alice")
	if err == nil {
		t.Fatalf("expected own-partner error")
	}
	if !strings.Contains(err.Error(), "own partner") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddExclusionRequiresKnownNames(t *testing.T) {
	r := NewRoster()
	if err := r.AddParticipant("Alice"); err != nil {
		t.Fatal(err)
	}
	err := r.AddExclusion("Alice", "Ghost")
	if err == nil {
		t.Fatalf("expected unknown participant error")
	}
	if !strings.Contains(err.Error(), "unknown participant") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSelfPairAlwaysExcluded(t *testing.T) {
	r := NewRoster()
	if err := r.AddParticipant("Alice"); err != nil {
		t.Fatal(err)
	}
	if !r.Excluded("Alice", "Alice") {
		t.Fatalf("self pair must be excluded without explicit registration")
	}
}

func TestAddForcedValidation(t *testing.T) {
	build := func(t *testing.T) *Roster {
		t.Helper()
		r := NewRoster()
		for _, name := range []string{"Alice", "Bob", "Carol", "Dana"} {
			if err := r.AddParticipant(name); err != nil {
				t.Fatal(err)
			}
		}
		if err := r.AddExclusion("Alice", "Bob"); err != nil {
			t.Fatal(err)
		}
		return r
	}

	cases := []struct {
		name     string
		giver    string
		receiver string
		wantErr  string
	}{
		{name: "unknown giver", giver: "Ghost", receiver: "Alice", wantErr: "unknown participant"},
		{name: "unknown receiver", giver: "Alice", receiver: "Ghost", wantErr: "unknown participant"},
		{name: "self pair", giver: "Alice", receiver: "Alice", wantErr: "themself"},
		{name: "excluded pair", giver: "Alice", receiver: "Bob", wantErr: "violates an exclusion"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := build(t)
			err := r.AddForced(tc.giver, tc.receiver)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !IsConfigError(err) {
				t.Fatalf("expected config error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q missing %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestAddForcedRejectsDoubleBooking(t *testing.T) {
	r := NewRoster()
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if err := r.AddParticipant(name); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.AddForced("Alice", "Bob"); err != nil {
		t.Fatalf("first forced pair: %v", err)
	}
	if err := r.AddForced("Alice", "Carol"); err == nil {
		t.Fatalf("expected duplicate giver error")
	}
	if err := r.AddForced("Carol", "Bob"); err == nil {
		t.Fatalf("expected duplicate receiver error")
	}
	forced := r.Forced()
	if len(forced) != 1 || forced[0] != (Pair{Giver: "Alice", Receiver: "Bob"}) {
		t.Fatalf("forced pairs = %v, want [{Alice Bob}]", forced)
	}
}

func TestCandidatesRespectExclusions(t *testing.T) {
	r := NewRoster()
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if err := r.AddParticipant(name); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.AddExclusion("Alice", "Carol"); err != nil {
		t.Fatal(err)
	}
	got := r.Candidates("Alice")
	if len(got) != 1 || got[0] != "Bob" {
		t.Fatalf("Candidates(Alice) = %v, want [Bob]", got)
	}
}

func TestValidateRequiresParticipants(t *testing.T) {
	err := NewRoster().Validate()
	if err == nil {
		t.Fatalf("expected error for empty roster")
	}
	if !IsConfigError(err) {
		t.Fatalf("empty roster should be a config error, got %v", err)
	}
}
