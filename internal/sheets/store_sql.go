package sheets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) PutSheet(ctx context.Context, sh Sheet) (Sheet, error) {
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	if sh.FetchedAt.IsZero() {
		sh.FetchedAt = s.now()
	}
	if len(sh.Payload) == 0 {
		sh.Payload = json.RawMessage("[]")
	}
	data, _ := json.Marshal(map[string]any{"sheet_id": sh.ID, "bytes": len(sh.Payload)})

	// the snapshot and its audit event commit together
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Sheet{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO grade_sheets (id,user_id,year,period,payload,fetched_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		sh.ID, sh.UserID, sh.Year, sh.Period, string(sh.Payload), sh.FetchedAt.Unix()); err != nil {
		return Sheet{}, err
	}
	if err := appendEvent(ctx, tx, Event{
		Type:     EventGradesFetched,
		Key:      sh.UserID + "/" + sh.Year + "/" + sh.Period,
		DataJSON: string(data),
	}); err != nil {
		return Sheet{}, fmt.Errorf("sheets: audit event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Sheet{}, err
	}
	return sh, nil
}

func (s *SQLStore) LatestSheet(ctx context.Context, userID, year, period string) (Sheet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,year,period,payload,fetched_at FROM grade_sheets
		 WHERE user_id=$1 AND year=$2 AND period=$3
		 ORDER BY fetched_at DESC LIMIT 1`,
		userID, year, period)
	var (
		sh      Sheet
		payload string
		fetched int64
	)
	if err := row.Scan(&sh.ID, &sh.UserID, &sh.Year, &sh.Period, &payload, &fetched); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Sheet{}, ErrNotFound
		}
		return Sheet{}, err
	}
	sh.Payload = json.RawMessage(payload)
	sh.FetchedAt = time.Unix(fetched, 0)
	return sh, nil
}

func (s *SQLStore) ListSheets(ctx context.Context, userID string) ([]Sheet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,year,period,fetched_at FROM grade_sheets
		 WHERE user_id=$1 ORDER BY fetched_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sheet
	for rows.Next() {
		var (
			sh      Sheet
			fetched int64
		)
		if err := rows.Scan(&sh.ID, &sh.UserID, &sh.Year, &sh.Period, &fetched); err != nil {
			return nil, err
		}
		sh.FetchedAt = time.Unix(fetched, 0)
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutSession(ctx context.Context, se Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id,user_id,role,access_token,expires_at,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET access_token=EXCLUDED.access_token, expires_at=EXCLUDED.expires_at, role=EXCLUDED.role`,
		se.ID, se.UserID, se.Role, se.AccessToken, se.ExpiresAt.Unix(), s.now().Unix())
	return err
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (Session, error) {
	var (
		se      Session
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,role,access_token,expires_at FROM sessions WHERE id=$1`, id).
		Scan(&se.ID, &se.UserID, &se.Role, &se.AccessToken, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	se.ExpiresAt = time.Unix(expires, 0)
	return se, nil
}

func (s *SQLStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}
