package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type OutboxStatus string

const (
	OutboxFailed    OutboxStatus = "failed"
	OutboxDelivered OutboxStatus = "delivered"
)

// OutboxEntry is a notification that did not complete. Body is the exact
// JSON that was (or would have been) posted to Path.
type OutboxEntry struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Path      string          `json:"path"`
	Body      json.RawMessage `json:"body"`
	Status    OutboxStatus    `json:"status"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"lastError,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (s Store) OutboxAppend(ctx context.Context, e OutboxEntry) error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("outbox entry needs an id")
	}
	if e.Status == "" {
		e.Status = OutboxFailed
	}
	if e.Attempts == 0 {
		e.Attempts = 1
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now().UTC().UnixMilli()
	_, err = db.ExecContext(ctx, `INSERT INTO outbox(id, kind, path, body_json, status, attempts, last_error, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Path, string(e.Body), string(e.Status), e.Attempts, e.LastError, now, now)
	if err != nil {
		return fmt.Errorf("outbox append %s: %w", e.ID, err)
	}
	return nil
}

// OutboxList returns entries oldest first. With no statuses, all entries are
// returned.
func (s Store) OutboxList(ctx context.Context, statuses ...OutboxStatus) ([]OutboxEntry, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, kind, path, body_json, status, attempts, last_error, created_at_unixms, updated_at_unixms FROM outbox`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		marks := make([]string, 0, len(statuses))
		for _, st := range statuses {
			marks = append(marks, "?")
			args = append(args, string(st))
		}
		q += ` WHERE status IN (` + strings.Join(marks, ",") + `)`
	}
	q += ` ORDER BY created_at_unixms, id`

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OutboxEntry{}
	for rows.Next() {
		e, err := scanOutbox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s Store) OutboxGet(ctx context.Context, id string) (OutboxEntry, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return OutboxEntry{}, err
	}
	defer db.Close()

	row := db.QueryRowContext(ctx, `SELECT id, kind, path, body_json, status, attempts, last_error, created_at_unixms, updated_at_unixms FROM outbox WHERE id = ?`, id)
	e, err := scanOutbox(row)
	if errors.Is(err, sql.ErrNoRows) {
		return OutboxEntry{}, fmt.Errorf("outbox entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

// OutboxMark records the result of a retry and bumps the attempt count.
func (s Store) OutboxMark(ctx context.Context, id string, status OutboxStatus, lastErr string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `UPDATE outbox SET status = ?, last_error = ?, attempts = attempts + 1, updated_at_unixms = ? WHERE id = ?`,
		string(status), lastErr, time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("outbox entry %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutbox(r rowScanner) (OutboxEntry, error) {
	var (
		e                  OutboxEntry
		body, status       string
		createdMs, updated int64
	)
	if err := r.Scan(&e.ID, &e.Kind, &e.Path, &body, &status, &e.Attempts, &e.LastError, &createdMs, &updated); err != nil {
		return OutboxEntry{}, err
	}
	e.Body = json.RawMessage(body)
	e.Status = OutboxStatus(status)
	e.CreatedAt = time.UnixMilli(createdMs).UTC()
	e.UpdatedAt = time.UnixMilli(updated).UTC()
	return e, nil
}
