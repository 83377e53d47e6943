package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"gatherly/internal/domain"
)

// Postgres SQLSTATE codes used to classify constraint violations.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type attendanceRepository struct {
	DB *sql.DB
}

func NewAttendanceRepository(db *sql.DB) domain.AttendanceRepository {
	return &attendanceRepository{
		DB: db,
	}
}

// Join atomically admits userID into the event's attendee set.
//
// The conditional UPDATE takes the event's row lock and encodes both
// admission predicates (free capacity, no existing membership), so two
// concurrent joins on the same event serialize on the row and the loser
// re-evaluates the predicates against the committed state. The membership
// INSERT runs in the same transaction; its primary key is the backstop for
// the duplicate predicate reading a stale snapshot under contention.
func (r *attendanceRepository) Join(ctx context.Context, eventID, userID string, now time.Time) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	const admit = `
		UPDATE events
		SET attendee_count = attendee_count + 1, updated_at = $3
		WHERE id = $1
		  AND attendee_count < capacity
		  AND NOT EXISTS (
			SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2
		  )
		RETURNING attendee_count
	`
	var count int
	if err := tx.QueryRowContext(ctx, admit, eventID, userID, now).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrConditionFailed
		}
		return 0, err
	}

	const insert = `
		INSERT INTO event_attendees (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, insert, eventID, userID, now); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case codeUniqueViolation:
				return 0, domain.ErrAlreadyAttending
			case codeForeignKeyViolation:
				// Event deleted between the UPDATE and the INSERT.
				return 0, domain.ErrNotFound
			}
		}
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// Leave removes userID from the event's attendee set iff currently present.
// A single statement keeps the membership delete and the counter decrement
// indivisible; no row means the condition did not hold.
func (r *attendanceRepository) Leave(ctx context.Context, eventID, userID string, now time.Time) (int, error) {
	const query = `
		WITH removed AS (
			DELETE FROM event_attendees
			WHERE event_id = $1 AND user_id = $2
			RETURNING event_id
		)
		UPDATE events e
		SET attendee_count = e.attendee_count - 1, updated_at = $3
		FROM removed
		WHERE e.id = removed.event_id
		RETURNING e.attendee_count
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, eventID, userID, now).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrConditionFailed
		}
		return 0, err
	}
	return count, nil
}

func (r *attendanceRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *attendanceRepository) ListUserIDs(ctx context.Context, eventID string) ([]string, error) {
	const query = `
		SELECT user_id
		FROM event_attendees
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	userIDs := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}
