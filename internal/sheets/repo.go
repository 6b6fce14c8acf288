package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Sheet is a boletim snapshot fetched from SUAP for one user and term.
type Sheet struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Year      string          `json:"year"`
	Period    string          `json:"period"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Session links a portal session to the SUAP token obtained at login.
type Session struct {
	ID          string
	UserID      string
	Role        string
	AccessToken string
	ExpiresAt   time.Time
}

func (s Session) Expired(now time.Time) bool { return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt) }

type Store interface {
	PutSheet(ctx context.Context, s Sheet) (Sheet, error)
	// LatestSheet returns the most recent snapshot or ErrNotFound.
	LatestSheet(ctx context.Context, userID, year, period string) (Sheet, error)
	// ListSheets returns snapshot headers (no payload), newest first.
	ListSheets(ctx context.Context, userID string) ([]Sheet, error)

	PutSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	DeleteSession(ctx context.Context, id string) error
}
