package grading

// Scores maps a slot to its recorded value. A missing key means the score
// has not been recorded yet; it counts as 0 in averages.
type Scores map[Slot]float64

// Has reports whether slot has a recorded value.
func (s Scores) Has(slot Slot) bool {
	_, ok := s[slot]
	return ok
}

// Value returns the recorded value or 0.
func (s Scores) Value(slot Slot) float64 { return s[slot] }

// Any reports whether at least one of the profile's slots is recorded.
func (s Scores) Any(p Profile) bool {
	for _, w := range p.Weights {
		if s.Has(w.Slot) {
			return true
		}
	}
	return false
}

// With returns a copy of s with slot set to v.
func (s Scores) With(slot Slot, v float64) Scores {
	out := make(Scores, len(s)+1)
	for k, x := range s {
		out[k] = x
	}
	out[slot] = v
	return out
}

// FromOptional builds Scores from nullable values in slot order N1..N4.
// Nil entries are left absent.
func FromOptional(vals ...*float64) Scores {
	slots := []Slot{N1, N2, N3, N4}
	out := Scores{}
	for i, v := range vals {
		if i >= len(slots) {
			break
		}
		if v != nil {
			out[slots[i]] = *v
		}
	}
	return out
}
