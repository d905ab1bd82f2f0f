package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/recurrence"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectChargeColumns = `
	id, client_name, ref, amount, due_date, due_time, status, settled_at,
	is_recurring, frequency, day_of_week, day_of_month, predecessor_id,
	created_at, updated_at
`

// scanCharge reads a charge row in selectChargeColumns order.
func scanCharge(s scanner) (*charge.Charge, error) {
	var c charge.Charge

	var (
		statusStr, freqStr string
		dueTime            sql.NullString
		dayOfWeek          sql.NullInt16
		dayOfMonth         sql.NullInt16
	)

	if err := s.Scan(
		&c.ID, &c.ClientName, &c.Reference, &c.Amount, &c.DueDate, &dueTime, &statusStr, &c.SettledAt,
		&c.Recurrence.Recurring, &freqStr, &dayOfWeek, &dayOfMonth, &c.PredecessorID,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	freq, err := recurrence.ParseFrequency(freqStr)
	if err != nil {
		return nil, err
	}

	c.Status = charge.Status(statusStr)
	c.Recurrence.Frequency = freq

	if dueTime.Valid {
		c.DueTime = new(dueTime.String)
	}

	if dayOfWeek.Valid {
		c.Recurrence.AnchorWeekday = new(time.Weekday(dayOfWeek.Int16))
	}

	if dayOfMonth.Valid {
		c.Recurrence.AnchorDay = new(int(dayOfMonth.Int16))
	}

	return &c, nil
}

func (s *Store) ListByDueDateRange(ctx context.Context, start, end calendar.Date) ([]*charge.Charge, error) {
	query := `SELECT ` + selectChargeColumns + `
		FROM charges
		WHERE due_date >= $1 AND due_date <= $2
		ORDER BY due_date ASC, client_name ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing charges: %w", err)
	}
	defer rows.Close()

	var charges []*charge.Charge

	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning charge: %w", err)
		}

		charges = append(charges, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating charge rows: %w", err)
	}

	return charges, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*charge.Charge, error) {
	query := `SELECT ` + selectChargeColumns + ` FROM charges WHERE id = $1`

	c, err := scanCharge(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, charge.ErrNotFound
		}

		return nil, fmt.Errorf("getting charge: %w", err)
	}

	return c, nil
}

func (s *Store) FindSuccessor(ctx context.Context, predecessorID uuid.UUID) (*charge.Charge, error) {
	return findSuccessor(ctx, s.db, predecessorID)
}

func (s *Store) Insert(ctx context.Context, c *charge.Charge) error {
	return insert(ctx, s.db, c)
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, patch charge.Patch) error {
	return update(ctx, s.db, id, patch)
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return remove(ctx, s.db, id)
}

type tx struct {
	tx *sql.Tx
}

// Begin starts a database transaction for a settle or unsettle pair.
func (s *Store) Begin(ctx context.Context) (charge.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &tx{tx: dbTx}, nil
}

func (t *tx) Commit() error   { return t.tx.Commit() }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func (t *tx) FindSuccessor(ctx context.Context, predecessorID uuid.UUID) (*charge.Charge, error) {
	return findSuccessor(ctx, t.tx, predecessorID)
}

func (t *tx) Insert(ctx context.Context, c *charge.Charge) error {
	return insert(ctx, t.tx, c)
}

func (t *tx) Update(ctx context.Context, id uuid.UUID, patch charge.Patch) error {
	return update(ctx, t.tx, id, patch)
}

func (t *tx) Delete(ctx context.Context, id uuid.UUID) error {
	return remove(ctx, t.tx, id)
}

func findSuccessor(ctx context.Context, q querier, predecessorID uuid.UUID) (*charge.Charge, error) {
	query := `SELECT ` + selectChargeColumns + ` FROM charges WHERE predecessor_id = $1`

	c, err := scanCharge(q.QueryRowContext(ctx, query, predecessorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, charge.ErrNotFound
		}

		return nil, fmt.Errorf("finding successor: %w", err)
	}

	return c, nil
}

func insert(ctx context.Context, q querier, c *charge.Charge) error {
	query := `
		INSERT INTO charges (
			client_name, ref, amount, due_date, due_time, status, settled_at,
			is_recurring, frequency, day_of_week, day_of_month, predecessor_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`

	var dayOfWeek, dayOfMonth *int16

	if wd := c.Recurrence.AnchorWeekday; wd != nil {
		dayOfWeek = new(int16(*wd))
	}

	if d := c.Recurrence.AnchorDay; d != nil {
		dayOfMonth = new(int16(*d))
	}

	freq := c.Recurrence.Frequency
	if freq == "" {
		freq = recurrence.None
	}

	err := q.QueryRowContext(ctx, query,
		c.ClientName,
		c.Reference,
		c.Amount,
		c.DueDate,
		c.DueTime,
		c.Status,
		c.SettledAt,
		c.Recurrence.Recurring,
		freq,
		dayOfWeek,
		dayOfMonth,
		c.PredecessorID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting charge: %w", err)
	}

	return nil
}

func update(ctx context.Context, q querier, id uuid.UUID, patch charge.Patch) error {
	query := `
		UPDATE charges
		SET status = $1, settled_at = $2, updated_at = NOW()
		WHERE id = $3`

	args := []any{patch.Status, patch.SettledAt, id}

	if patch.From != "" {
		query += ` AND status = $4`

		args = append(args, patch.From)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating charge: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM charges WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking charge: %w", err)
	}

	if !exists {
		return charge.ErrNotFound
	}

	return charge.ErrConflict
}

func remove(ctx context.Context, q querier, id uuid.UUID) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM charges WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting charge: %w", err)
	}

	return nil
}
