package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// Session keys written before a reload so the board lands where it was.
const (
	keyScrollLeft  = "board-scroll-left"
	keyRestoreOnce = "board-restore-once"
)

func (s Store) SessionGet(ctx context.Context, k string) (string, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM session_kv WHERE k = ?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (s Store) SessionSet(ctx context.Context, k, v string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO session_kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`,
		k, v, time.Now().UTC().UnixMilli())
	return err
}

func (s Store) SessionDelete(ctx context.Context, keys ...string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, k := range keys {
		if _, err := db.ExecContext(ctx, `DELETE FROM session_kv WHERE k = ?`, k); err != nil {
			return err
		}
	}
	return nil
}

// RememberScroll stores the board's horizontal scroll offset and arms a
// one-shot restore for the next load.
func (s Store) RememberScroll(ctx context.Context, left int) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().UnixMilli()
	for k, v := range map[string]string{
		keyRestoreOnce: "1",
		keyScrollLeft:  strconv.Itoa(left),
	} {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO session_kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`, k, v, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RestoreScroll returns the remembered offset if a restore was armed. Both
// keys are cleared whether or not a restore happens, so an offset is applied
// at most once.
func (s Store) RestoreScroll(ctx context.Context) (int, bool, error) {
	armed, err := s.SessionGet(ctx, keyRestoreOnce)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, false, err
	}
	raw, err := s.SessionGet(ctx, keyScrollLeft)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, false, err
	}
	if err := s.SessionDelete(ctx, keyRestoreOnce, keyScrollLeft); err != nil {
		return 0, false, err
	}
	if armed != "1" {
		return 0, false, nil
	}
	if raw == "" {
		raw = "0"
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, nil
	}
	return v, true, nil
}
