package domain

import (
	"context"
	"errors"
	"time"
)

// Reservation errors. The first four are expected rejections with stable
// reason codes; ErrUnableToJoin is the defensive fallback for a failed
// condition that matches none of the known predicates.
var (
	ErrAlreadyAttending = errors.New("already attending")
	ErrEventFull        = errors.New("event full")
	ErrNotAttending     = errors.New("not attending")
	ErrUnableToJoin     = errors.New("unable to join")

	// ErrConditionFailed is reported by the repository when an atomic
	// conditional mutation did not apply. It carries no cause; callers
	// classify it with diagnostic reads.
	ErrConditionFailed = errors.New("condition not satisfied")
)

// Attendance is one row of an event's attendee set.
type Attendance struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceRepository is the store contract for attendee-set mutation.
//
// Join and Leave each submit the correctness-critical predicates and the
// mutation as one atomic operation relative to all other operations on the
// same event. They return the new attendee count on success. On failure:
//   - ErrConditionFailed: the condition did not hold (cause unknown here)
//   - ErrAlreadyAttending: the store's uniqueness backstop fired
//   - ErrNotFound: the event vanished under the mutation (deletion race)
//
// Exists is a diagnostic read only; it must never gate a mutation.
type AttendanceRepository interface {
	Join(ctx context.Context, eventID, userID string, now time.Time) (int, error)
	Leave(ctx context.Context, eventID, userID string, now time.Time) (int, error)
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	ListUserIDs(ctx context.Context, eventID string) ([]string, error)
}

// ReservationService admits or rejects a single user's join/leave request
// against one event's attendee set, atomically, with exact-cause errors:
// ErrNotFound, ErrAlreadyAttending, ErrEventFull, ErrNotAttending, or
// ErrUnableToJoin. Success returns the new attendee count.
type ReservationService interface {
	Join(ctx context.Context, eventID string, actor Principal) (int, error)
	Leave(ctx context.Context, eventID string, actor Principal) (int, error)
}
