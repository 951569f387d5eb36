package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a confirmation id does not exist.
var ErrNotFound = errors.New("confirmation not found")

const confirmationColumns = `id, rsvp_id, event_id, event_name, event_date, event_location,
	guest_name, email, phone, response, status, error, attempts, attempted_at`

// RecordConfirmation stores the outcome of a first dispatch attempt. A nil sendErr
// records it as sent.
func (db *DB) RecordConfirmation(c *Confirmation, sendErr error) (*Confirmation, error) {
	c.ID = uuid.NewString()
	c.Attempts = 1
	c.AttemptedAt = time.Now().UTC()
	c.Status, c.Error = outcome(sendErr)

	_, err := db.Exec(
		`INSERT INTO confirmations (`+confirmationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ID, c.RSVPID, c.EventID, c.EventName, c.EventDate, c.EventLocation,
		c.GuestName, c.Email, c.Phone, c.Response, c.Status, c.Error, c.Attempts, c.AttemptedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record confirmation: %w", err)
	}
	return c, nil
}

// MarkAttempt records a manual resend of an existing confirmation.
func (db *DB) MarkAttempt(id string, sendErr error) error {
	status, errMsg := outcome(sendErr)

	res, err := db.Exec(
		`UPDATE confirmations SET status = $1, error = $2, attempts = attempts + 1, attempted_at = $3
		 WHERE id = $4`,
		status, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update confirmation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetConfirmation retrieves a confirmation by id.
func (db *DB) GetConfirmation(id string) (*Confirmation, error) {
	c, err := scanConfirmation(db.QueryRow(
		`SELECT `+confirmationColumns+` FROM confirmations WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return c, nil
}

// ListConfirmations returns confirmations newest first. An empty status lists all.
func (db *DB) ListConfirmations(status string) ([]*Confirmation, error) {
	query := `SELECT ` + confirmationColumns + ` FROM confirmations`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY attempted_at DESC`

	return db.queryConfirmations(query, args...)
}

// ListConfirmationsByEvent returns every confirmation recorded for one event.
func (db *DB) ListConfirmationsByEvent(eventID string) ([]*Confirmation, error) {
	return db.queryConfirmations(
		`SELECT `+confirmationColumns+` FROM confirmations WHERE event_id = $1 ORDER BY attempted_at DESC`,
		eventID,
	)
}

// UpdatePhone rewrites a stored phone number.
func (db *DB) UpdatePhone(id, phone string) error {
	if _, err := db.Exec(`UPDATE confirmations SET phone = $1 WHERE id = $2`, phone, id); err != nil {
		return fmt.Errorf("failed to update phone: %w", err)
	}
	return nil
}

func (db *DB) queryConfirmations(query string, args ...any) ([]*Confirmation, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmations: %w", err)
	}
	defer rows.Close()

	var confirmations []*Confirmation
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan confirmation: %w", err)
		}
		confirmations = append(confirmations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate confirmations: %w", err)
	}

	return confirmations, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfirmation(s scanner) (*Confirmation, error) {
	c := &Confirmation{}
	err := s.Scan(&c.ID, &c.RSVPID, &c.EventID, &c.EventName, &c.EventDate, &c.EventLocation,
		&c.GuestName, &c.Email, &c.Phone, &c.Response, &c.Status, &c.Error, &c.Attempts, &c.AttemptedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func outcome(sendErr error) (string, sql.NullString) {
	if sendErr == nil {
		return StatusSent, sql.NullString{}
	}
	return StatusFailed, sql.NullString{String: sendErr.Error(), Valid: true}
}
