package grading

import (
	"fmt"
	"strings"
	"sync"
)

// Kind identifies a course weighting scheme.
type Kind string

const (
	KindStandard  Kind = "standard"  // two evaluation stages (superior)
	KindTechnical Kind = "technical" // four evaluation stages (técnico integrado)
)

// Slot names a recorded score stage.
type Slot string

const (
	N1 Slot = "n1"
	N2 Slot = "n2"
	N3 Slot = "n3"
	N4 Slot = "n4"
)

// Weight is one entry of a profile's weight table.
type Weight struct {
	Slot   Slot
	Weight float64
}

// Profile is the weight table for a course kind. Values are immutable;
// use the package-level profiles or Lookup.
type Profile struct {
	Kind        Kind
	Weights     []Weight
	Denominator float64
}

var (
	Standard = Profile{
		Kind:        KindStandard,
		Weights:     []Weight{{N1, 2}, {N2, 3}},
		Denominator: 5,
	}
	Technical = Profile{
		Kind:        KindTechnical,
		Weights:     []Weight{{N1, 2}, {N2, 2}, {N3, 3}, {N4, 3}},
		Denominator: 10,
	}
)

// Registry of profiles by kind, seeded with the built-ins.
var (
	profilesMu sync.RWMutex
	profiles   = map[Kind]Profile{
		KindStandard:  Standard,
		KindTechnical: Technical,
	}
)

// Register adds a weighting scheme. Call from init() or before serving.
// The built-in kinds cannot be replaced.
func Register(p Profile) error {
	if p.Kind == "" || len(p.Weights) == 0 || p.Denominator <= 0 {
		return fmt.Errorf("grading: invalid profile %q", p.Kind)
	}
	if p.Kind == KindStandard || p.Kind == KindTechnical {
		return fmt.Errorf("grading: profile %q is built in", p.Kind)
	}
	profilesMu.Lock()
	defer profilesMu.Unlock()
	profiles[p.Kind] = p
	return nil
}

// Lookup returns a registered profile for a kind.
func Lookup(k Kind) (Profile, bool) {
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	p, ok := profiles[k]
	return p, ok
}

// ProfileFor is Lookup with a Standard fallback for unknown kinds.
func ProfileFor(k Kind) Profile {
	if p, ok := Lookup(k); ok {
		return p
	}
	return Standard
}

// ParseKind accepts the english names, the portal's portuguese labels and
// registered kinds. Anything unrecognised maps to KindStandard.
func ParseKind(s string) Kind {
	k := strings.ToLower(strings.TrimSpace(s))
	switch k {
	case "technical", "tecnico", "técnico", "integrado":
		return KindTechnical
	}
	if _, ok := Lookup(Kind(k)); ok {
		return Kind(k)
	}
	return KindStandard
}

// Slots returns the profile's slots in weight-table order.
func (p Profile) Slots() []Slot {
	out := make([]Slot, 0, len(p.Weights))
	for _, w := range p.Weights {
		out = append(out, w.Slot)
	}
	return out
}

// WeightOf returns the weight for slot, or false if the profile lacks it.
func (p Profile) WeightOf(s Slot) (float64, bool) {
	for _, w := range p.Weights {
		if w.Slot == s {
			return w.Weight, true
		}
	}
	return 0, false
}
