package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrCapacityTooSmall is returned when an update would lower an event's
// capacity below its current attendee count.
var ErrCapacityTooSmall = errors.New("capacity below current attendee count")

// Event represents a schedulable gathering with bounded attendance.
// AttendeeCount is maintained by the store and always equals the size of the
// event's attendee set; it never exceeds Capacity.
// swagger:model Event
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	DateTime      time.Time `json:"date_time"`
	Capacity      int       `json:"capacity"`
	AttendeeCount int       `json:"attendees_count"`
	ImageURL      *string   `json:"image_url,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the
// repository on create; the attendee set starts empty.
func NewEvent(title, description, location string, dateTime time.Time, capacity int, createdBy string, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		DateTime:    dateTime,
		Capacity:    capacity,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// EventPatch carries a partial event update; nil fields retain their
// previous value.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	DateTime    *time.Time
	Capacity    *int
}

// EventRepository defines the interface for event storage.
//
// Update applies the patch conditionally: when the patch lowers capacity, the
// mutation only succeeds if the new capacity still covers the current
// attendee count. A failed condition is reported as ErrConditionFailed so the
// caller can classify the cause with a follow-up read.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, eventID string, patch EventPatch) (*Event, error)
	UpdateImageURL(ctx context.Context, eventID, imageURL string) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines lifecycle operations on events: plain CRUD plus the
// owner check. Attendee membership is never mutated here; that belongs
// exclusively to the ReservationService.
type EventService interface {
	CreateEvent(ctx context.Context, actorID string, event *Event) (*Event, error)
	UpdateEvent(ctx context.Context, actorID, eventID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, actorID, eventID string) error
	AttachImage(ctx context.Context, actorID, eventID, filename, contentType string, size int64, body io.Reader) (*Event, error)
}
