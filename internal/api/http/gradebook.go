package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mind-engage/mindengage-boletim/internal/boletim"
	"github.com/mind-engage/mindengage-boletim/internal/sheets"
	"github.com/mind-engage/mindengage-boletim/internal/suap"
)

// ErrNoSession is returned for tokens that carry no SUAP session (local
// admin logins) or whose session has expired.
var ErrNoSession = errors.New("no SUAP session")

// Gradebook loads boletins through the user's SUAP session and keeps a
// snapshot of each fetch. Snapshots newer than MaxAge are served without
// calling SUAP, and older ones are served when SUAP is unavailable.
type Gradebook struct {
	store  sheets.Store
	apiURL string
	maxAge time.Duration
	now    func() time.Time
	client func(ctx context.Context, apiURL, token string) *suap.Client
}

func NewGradebook(store sheets.Store, apiURL string, maxAge time.Duration) *Gradebook {
	return &Gradebook{
		store:  store,
		apiURL: apiURL,
		maxAge: maxAge,
		now:    time.Now,
		client: suap.NewTokenClient,
	}
}

// Book is one term's boletim.
type Book struct {
	Period    suap.Period
	Subjects  []boletim.Subject
	FetchedAt time.Time
	Cached    bool
}

func (g *Gradebook) session(ctx context.Context, sessionID string) (sheets.Session, error) {
	if sessionID == "" {
		return sheets.Session{}, ErrNoSession
	}
	se, err := g.store.GetSession(ctx, sessionID)
	if errors.Is(err, sheets.ErrNotFound) {
		return sheets.Session{}, ErrNoSession
	}
	if err != nil {
		return sheets.Session{}, err
	}
	if se.Expired(g.now()) {
		return sheets.Session{}, ErrNoSession
	}
	return se, nil
}

// Client returns a SUAP client for the session.
func (g *Gradebook) Client(ctx context.Context, sessionID string) (*suap.Client, sheets.Session, error) {
	se, err := g.session(ctx, sessionID)
	if err != nil {
		return nil, sheets.Session{}, err
	}
	return g.client(ctx, g.apiURL, se.AccessToken), se, nil
}

// Periods lists the user's terms from SUAP, falling back to the terms of
// stored snapshots.
func (g *Gradebook) Periods(ctx context.Context, sessionID string) ([]suap.Period, error) {
	c, se, err := g.Client(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ps, err := c.Periods(ctx)
	if err == nil {
		return ps, nil
	}
	if errors.Is(err, suap.ErrUnauthorized) {
		return nil, err
	}
	log.Printf("gradebook: periods for %s: %v", se.UserID, err)

	stored, serr := g.store.ListSheets(ctx, se.UserID)
	if serr != nil || len(stored) == 0 {
		return nil, err
	}
	seen := map[string]bool{}
	var out []suap.Period
	for _, sh := range stored {
		p := suap.Period{Year: sh.Year, Period: sh.Period}
		if !seen[p.Semester()] {
			seen[p.Semester()] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// Load returns the boletim for a term. An empty year or period selects the
// most recent term.
func (g *Gradebook) Load(ctx context.Context, sessionID, year, period string) (Book, error) {
	c, se, err := g.Client(ctx, sessionID)
	if err != nil {
		return Book{}, err
	}
	if year == "" || period == "" {
		ps, err := g.Periods(ctx, sessionID)
		if err != nil {
			return Book{}, err
		}
		if len(ps) == 0 {
			return Book{}, suap.ErrNoPeriods
		}
		year, period = ps[0].Year, ps[0].Period
	}
	term := suap.Period{Year: year, Period: period}

	cached, cerr := g.store.LatestSheet(ctx, se.UserID, year, period)
	if cerr != nil && !errors.Is(cerr, sheets.ErrNotFound) {
		return Book{}, cerr
	}
	hasCached := cerr == nil
	if hasCached && g.maxAge > 0 && g.now().Sub(cached.FetchedAt) < g.maxAge {
		return bookFrom(term, cached, true)
	}

	raw, err := c.Grades(ctx, year, period)
	if err != nil {
		if hasCached && !errors.Is(err, suap.ErrUnauthorized) {
			log.Printf("gradebook: serving stored boletim for %s %s: %v", se.UserID, term.Semester(), err)
			return bookFrom(term, cached, true)
		}
		return Book{}, err
	}
	sh, err := g.store.PutSheet(ctx, sheets.Sheet{UserID: se.UserID, Year: year, Period: period, Payload: raw})
	if err != nil {
		log.Printf("gradebook: store snapshot: %v", err)
		sh = sheets.Sheet{Year: year, Period: period, Payload: raw, FetchedAt: g.now()}
	}
	return bookFrom(term, sh, false)
}

func bookFrom(p suap.Period, sh sheets.Sheet, cached bool) (Book, error) {
	subjects, err := boletim.ParseSubjects(sh.Payload)
	if err != nil {
		return Book{}, fmt.Errorf("boletim %s: %w", p.Semester(), err)
	}
	return Book{Period: p, Subjects: subjects, FetchedAt: sh.FetchedAt, Cached: cached}, nil
}

// Diaries returns the class diaries of a term through the user's session.
func (g *Gradebook) Diaries(ctx context.Context, sessionID string, p suap.Period) ([]map[string]any, error) {
	c, _, err := g.Client(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.Diaries(ctx, p.Semester())
}

// Student loads another student's record and boletim with the caller's
// SUAP session.
func (g *Gradebook) Student(ctx context.Context, sessionID, registration string) (map[string]any, []boletim.Subject, error) {
	c, _, err := g.Client(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	info, err := c.Student(ctx, registration)
	if err != nil {
		return nil, nil, err
	}
	raw, err := c.StudentGrades(ctx, registration)
	if err != nil {
		return nil, nil, err
	}
	subjects, err := boletim.ParseSubjects(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("boletim %s: %w", registration, err)
	}
	return info, subjects, nil
}
