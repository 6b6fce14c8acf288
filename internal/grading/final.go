package grading

import "math"

// finalSolver finds the final exam score that lifts a course to threshold.
type finalSolver interface {
	solve(p Profile, s Scores, average, threshold float64) (float64, bool)
}

// meanSolver: final average = (partial + final) / 2.
type meanSolver struct{}

func (meanSolver) solve(_ Profile, _ Scores, average, threshold float64) (float64, bool) {
	v := meanCandidate(average, threshold)
	if v > MaxScore {
		return MaxScore, false
	}
	return clampZero(ceilScore(v)), true
}

// candidateSolver evaluates the mean rule plus one closed-form candidate per
// weight slot (the final replacing that slot's score) and keeps the lowest
// reachable one.
type candidateSolver struct{}

func (candidateSolver) solve(p Profile, s Scores, average, threshold float64) (float64, bool) {
	best, found := 0.0, false
	for _, c := range Candidates(p, s, average, threshold) {
		if c > MaxScore {
			continue
		}
		c = ceilScore(c)
		if !found || c < best {
			best, found = c, true
		}
	}
	if !found {
		return MaxScore, false
	}
	return clampZero(best), true
}

// Candidates returns the raw required final score under each rule: first the
// mean of partial average and final, then the final substituting each slot
// of the weight table in order.
func Candidates(p Profile, s Scores, average, threshold float64) []float64 {
	out := make([]float64, 0, len(p.Weights)+1)
	out = append(out, meanCandidate(average, threshold))
	for _, w := range p.Weights {
		if w.Weight == 0 {
			continue
		}
		rest := 0.0
		for _, o := range p.Weights {
			if o.Slot != w.Slot {
				rest += o.Weight * s.Value(o.Slot)
			}
		}
		out = append(out, (threshold*p.Denominator-rest)/w.Weight)
	}
	return out
}

// searchSolver scans [0, MaxScore] in 0.1 steps for the first final score
// whose best-of-rules final average reaches the threshold.
type searchSolver struct{}

const searchSteps = 1000

func (searchSolver) solve(p Profile, s Scores, average, threshold float64) (float64, bool) {
	v, ok := SearchFinalScore(p, s, average, threshold)
	if !ok {
		return MaxScore, false
	}
	return clampZero(ceilScore(v)), true
}

// SearchFinalScore returns the first 0.1-step final score in [0, 100] for
// which FinalAverage reaches threshold. It stops after at most 1001 steps.
func SearchFinalScore(p Profile, s Scores, average, threshold float64) (float64, bool) {
	for i := 0; i <= searchSteps; i++ {
		f := float64(i) / 10
		if FinalAverage(p, s, average, f) >= threshold {
			return f, true
		}
	}
	return MaxScore, false
}

// FinalAverage is the best final average obtainable with final score f:
// the mean of partial average and f, or the weighted average with f
// replacing any single slot.
func FinalAverage(p Profile, s Scores, average, f float64) float64 {
	best := (average + f) / 2
	for _, w := range p.Weights {
		if v := ComputeAverage(p, s.With(w.Slot, f)); v > best {
			best = v
		}
	}
	return best
}

func meanCandidate(average, threshold float64) float64 { return 2*threshold - average }

// ceilScore rounds up to a whole score. The small epsilon absorbs float
// noise such as 70.00000000000001.
func ceilScore(v float64) float64 { return math.Ceil(v - 1e-9) }

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
