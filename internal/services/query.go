package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

const eventCacheTTL = 30 * time.Second

type eventQueryService struct {
	eventRepo      domain.EventRepository
	attendanceRepo domain.AttendanceRepository
	cache          domain.EventCache
	logger         *slog.Logger
}

// NewEventQueryService creates an EventQueryService. cache may be nil.
func NewEventQueryService(
	eventRepo domain.EventRepository,
	attendanceRepo domain.AttendanceRepository,
	cache domain.EventCache,
	logger *slog.Logger,
) domain.EventQueryService {
	return &eventQueryService{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		cache:          cache,
		logger:         logger,
	}
}

// GetEvent returns the projection for one event. The snapshot may come from
// the cache; membership is always read fresh since it is caller-specific.
func (s *eventQueryService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.EventView, error) {
	event, err := s.snapshot(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	var isAttending *bool
	if callerID != "" {
		attending, err := s.attendanceRepo.Exists(ctx, eventID, callerID)
		if err != nil {
			return nil, fmt.Errorf("check attendance: %w", err)
		}
		isAttending = &attending
	}
	return domain.NewEventView(event, isAttending), nil
}

func (s *eventQueryService) ListEvents(ctx context.Context) ([]*domain.EventView, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	views := make([]*domain.EventView, 0, len(events))
	for _, event := range events {
		views = append(views, domain.NewEventView(event, nil))
	}
	return views, nil
}

// ListAttendees returns the attendee user IDs; only the event owner may see
// them.
func (s *eventQueryService) ListAttendees(ctx context.Context, eventID, callerID string) ([]string, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != callerID {
		return nil, domain.ErrForbidden
	}

	userIDs, err := s.attendanceRepo.ListUserIDs(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return userIDs, nil
}

// snapshot reads the event through the cache when one is configured. Cache
// errors degrade to a repository read.
func (s *eventQueryService) snapshot(ctx context.Context, eventID string) (*domain.Event, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, eventID)
		if err != nil {
			s.logger.WarnContext(ctx, "event cache read failed", "event_id", eventID, "err", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, event, eventCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "event cache write failed", "event_id", eventID, "err", err)
		}
	}
	return event, nil
}
