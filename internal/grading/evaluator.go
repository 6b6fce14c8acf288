package grading

// Outcome is the classification of a partial average.
type Outcome string

const (
	Approved     Outcome = "approved"
	NeedsFinal   Outcome = "needs_final"
	Failed       Outcome = "failed"
	Insufficient Outcome = "insufficient" // no score recorded yet
)

const (
	DefaultApprovalThreshold = 60.0
	DefaultFinalExamFloor    = 40.0
	DefaultAbsenceRatio      = 0.25
	MaxScore                 = 100.0
)

// Result is the outcome of evaluating one course.
type Result struct {
	PartialAverage   float64 // full precision; see DisplayAverage
	Outcome          Outcome
	AttendanceMargin int // negative when the absence limit is exceeded

	// Set only when Outcome == NeedsFinal.
	RequiredFinalScore *float64
	FinalAchievable    bool

	// Standard profile with N1 recorded and N2 still missing.
	RequiredSecondScore *float64

	AllowedAbsences int
	Frequency       float64 // NaN when no hours are scheduled
}

// Evaluator options

type Option func(*config)

type config struct {
	ApprovalThreshold float64
	FinalExamFloor    float64
	AbsenceRatio      float64
	BestOfRules       bool // standard finals solved with the best-of-rules search
}

func WithApprovalThreshold(v float64) Option { return func(c *config) { c.ApprovalThreshold = v } }
func WithFinalExamFloor(v float64) Option    { return func(c *config) { c.FinalExamFloor = v } }
func WithAbsenceRatio(v float64) Option      { return func(c *config) { c.AbsenceRatio = v } }
func WithBestOfRules() Option                { return func(c *config) { c.BestOfRules = true } }

// Evaluator computes averages, outcomes and attendance figures. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	cfg     config
	solvers map[Kind]finalSolver
}

// New returns an Evaluator with the default thresholds (60/40) and the
// built-in final-score solvers.
func New(opts ...Option) *Evaluator {
	cfg := config{
		ApprovalThreshold: DefaultApprovalThreshold,
		FinalExamFloor:    DefaultFinalExamFloor,
		AbsenceRatio:      DefaultAbsenceRatio,
	}
	for _, o := range opts {
		o(&cfg)
	}
	var std finalSolver = meanSolver{}
	if cfg.BestOfRules {
		std = searchSolver{}
	}
	return &Evaluator{
		cfg: cfg,
		solvers: map[Kind]finalSolver{
			KindStandard:  std,
			KindTechnical: candidateSolver{},
		},
	}
}

func (e *Evaluator) ApprovalThreshold() float64 { return e.cfg.ApprovalThreshold }
func (e *Evaluator) FinalExamFloor() float64    { return e.cfg.FinalExamFloor }
func (e *Evaluator) AbsenceRatio() float64      { return e.cfg.AbsenceRatio }

// ComputeAverage is the weighted sum of the recorded scores over the
// profile's denominator. Missing scores count as 0. No rounding is applied.
func ComputeAverage(p Profile, s Scores) float64 {
	if p.Denominator == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range p.Weights {
		sum += w.Weight * s.Value(w.Slot)
	}
	return sum / p.Denominator
}

// Classify maps a partial average to an outcome. hasScores=false means the
// student has nothing recorded, which is reported as Insufficient rather
// than Failed.
func (e *Evaluator) Classify(average float64, hasScores bool) Outcome {
	switch {
	case !hasScores:
		return Insufficient
	case average >= e.cfg.ApprovalThreshold:
		return Approved
	case average < e.cfg.FinalExamFloor:
		return Failed
	default:
		return NeedsFinal
	}
}

// RequiredFinalScore returns the whole-number final exam score needed to
// reach the approval threshold. The bool is false when no rule can reach it
// within MaxScore, in which case MaxScore is returned.
func (e *Evaluator) RequiredFinalScore(p Profile, s Scores, average float64) (float64, bool) {
	solver, ok := e.solvers[p.Kind]
	if !ok {
		solver = meanSolver{}
	}
	return solver.solve(p, s, average, e.cfg.ApprovalThreshold)
}

// RequiredSecondScore solves the standard weighted average (2·N1 + 3·N2)/5
// for the N2 that reaches the approval threshold. The value is not rounded.
func (e *Evaluator) RequiredSecondScore(n1 float64) float64 {
	w1, _ := Standard.WeightOf(N1)
	w2, _ := Standard.WeightOf(N2)
	return (Standard.Denominator*e.cfg.ApprovalThreshold - w1*n1) / w2
}

// Evaluate runs every calculation for one course.
func (e *Evaluator) Evaluate(p Profile, s Scores, att AttendanceRecord) Result {
	avg := ComputeAverage(p, s)
	res := Result{
		PartialAverage:   avg,
		Outcome:          e.Classify(avg, s.Any(p)),
		AttendanceMargin: e.AttendanceMargin(att),
		AllowedAbsences:  e.AllowedAbsences(att),
		Frequency:        Frequency(att),
	}
	if res.Outcome == NeedsFinal {
		v, ok := e.RequiredFinalScore(p, s, avg)
		res.RequiredFinalScore = &v
		res.FinalAchievable = ok
	}
	if p.Kind == KindStandard && s.Has(N1) && !s.Has(N2) && avg < e.cfg.ApprovalThreshold {
		v := e.RequiredSecondScore(s.Value(N1))
		res.RequiredSecondScore = &v
	}
	return res
}
