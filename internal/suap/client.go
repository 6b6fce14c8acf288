package suap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/oauth2"
)

var (
	ErrUnauthorized = errors.New("suap: unauthorized")
	ErrNoPeriods    = errors.New("suap: no academic periods")
)

const (
	pathMe          = "rh/eu/"
	pathMyData      = "v2/minhas-informacoes/meus-dados/"
	pathPeriods     = "v2/minhas-informacoes/meus-periodos-letivos/"
	pathPeriodsOld  = "edu/periodos/"
	pathBoletim     = "v2/minhas-informacoes/boletim/%s/%s/"
	pathDiaries     = "v2/minhas-informacoes/meus-diarios/%s/"
	pathStudent     = "edu/alunos/%s/"
	pathStudentBook = "edu/alunos/%s/boletim/"
)

// User is the authenticated SUAP user.
type User struct {
	Identification string         `json:"identificacao"`
	Name           string         `json:"nome_usual"`
	Email          string         `json:"email"`
	Type           string         `json:"tipo_usuario"`
	Campus         string         `json:"campus,omitempty"`
	Photo          string         `json:"foto,omitempty"`
	Course         map[string]any `json:"curso,omitempty"`
}

// Period is an academic term.
type Period struct {
	Year   string `json:"ano_letivo"`
	Period string `json:"periodo_letivo"`
}

// Semester renders the period as SUAP's "2024/1" diary key.
func (p Period) Semester() string { return p.Year + "/" + p.Period }

// Client calls the SUAP REST API. The HTTP client is expected to carry the
// bearer token (see OAuth.Client and NewTokenClient).
type Client struct {
	base string
	http *http.Client
}

// RequestTimeout bounds every SUAP call, token exchange included.
var RequestTimeout = 20 * time.Second

func NewClient(apiURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: RequestTimeout}
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	return &Client{base: apiURL, http: hc}
}

// NewTokenClient wraps a stored access token.
func NewTokenClient(ctx context.Context, apiURL, accessToken string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = RequestTimeout
	return NewClient(apiURL, hc)
}

// Me returns the user from rh/eu/, with the course copied from the
// student's bond in meus-dados.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	if err := c.getJSON(ctx, pathMe, &u); err != nil {
		return User{}, err
	}
	var extra struct {
		Vinculo map[string]any `json:"vinculo"`
	}
	if err := c.getJSON(ctx, pathMyData, &extra); err != nil {
		return User{}, err
	}
	if curso, ok := extra.Vinculo["curso"]; ok {
		u.Course = cast.ToStringMap(curso)
	}
	return u, nil
}

// Periods lists the user's terms, most recent first. The v2 endpoint is
// tried first and the legacy one is used when it fails or is empty.
func (c *Client) Periods(ctx context.Context) ([]Period, error) {
	var raw []map[string]any
	if err := c.getJSON(ctx, pathPeriods, &raw); err == nil && len(raw) > 0 {
		return toPeriods(raw), nil
	} else if errors.Is(err, context.Canceled) {
		return nil, err
	}
	raw = nil
	if err := c.getJSON(ctx, pathPeriodsOld, &raw); err != nil {
		return nil, err
	}
	return toPeriods(raw), nil
}

// LatestPeriod returns the first period SUAP lists.
func (c *Client) LatestPeriod(ctx context.Context) (Period, error) {
	ps, err := c.Periods(ctx)
	if err != nil {
		return Period{}, err
	}
	if len(ps) == 0 {
		return Period{}, ErrNoPeriods
	}
	return ps[0], nil
}

// Grades returns the raw boletim for a term. With an empty year or period
// the most recent term is used.
func (c *Client) Grades(ctx context.Context, year, period string) (json.RawMessage, error) {
	if year == "" || period == "" {
		p, err := c.LatestPeriod(ctx)
		if err != nil {
			return nil, err
		}
		year, period = p.Year, p.Period
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, fmt.Sprintf(pathBoletim, year, period), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Diaries returns the class diaries for a "YYYY/P" semester.
func (c *Client) Diaries(ctx context.Context, semester string) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf(pathDiaries, semester), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Student fetches another student's record; staff tokens only.
func (c *Client) Student(ctx context.Context, registration string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf(pathStudent, registration), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StudentGrades fetches another student's boletim; staff tokens only.
func (c *Client) StudentGrades(ctx context.Context, registration string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, fmt.Sprintf(pathStudentBook, registration), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("suap %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w (%s)", ErrUnauthorized, path)
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("suap %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("suap %s: decode: %w", path, err)
	}
	return nil
}

func toPeriods(raw []map[string]any) []Period {
	out := make([]Period, 0, len(raw))
	for _, r := range raw {
		out = append(out, Period{
			Year:   firstString(r, "ano_letivo", "ano"),
			Period: firstString(r, "periodo_letivo", "periodo"),
		})
	}
	return out
}

func firstString(r map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			if s := cast.ToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}
