package domain

import (
	"context"
	"time"
)

// EventView is a read-only projection over an event snapshot.
// IsAttending is set only when the caller is known.
// swagger:model EventView
type EventView struct {
	*Event
	IsFull      bool  `json:"is_full"`
	IsAttending *bool `json:"is_attending,omitempty"`
}

// NewEventView projects a point-in-time event snapshot. The projection must
// never be used to authorize a mutation; admission decisions belong to the
// atomic conditional update.
func NewEventView(event *Event, isAttending *bool) *EventView {
	return &EventView{
		Event:       event,
		IsFull:      event.AttendeeCount >= event.Capacity,
		IsAttending: isAttending,
	}
}

// EventQueryService derives read-only views over events. callerID may be
// empty for anonymous reads, in which is_attending is omitted.
type EventQueryService interface {
	GetEvent(ctx context.Context, eventID, callerID string) (*EventView, error)
	ListEvents(ctx context.Context) ([]*EventView, error)
	// ListAttendees returns the attendee user IDs of an event; owner only.
	ListAttendees(ctx context.Context, eventID, callerID string) ([]string, error)
}

// EventCache is a read-through cache of event snapshots keyed by event ID.
// Get returns (nil, nil) on a miss. Writers invalidate after every
// successful mutation; the cache is an optimization only and never feeds an
// admission decision.
type EventCache interface {
	Get(ctx context.Context, eventID string) (*Event, error)
	Set(ctx context.Context, event *Event, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID string) error
}
