package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"gatherly/internal/domain"
)

type eventService struct {
	eventRepo domain.EventRepository
	media     domain.MediaStore
	cache     domain.EventCache
	logger    *slog.Logger
}

// NewEventService creates an EventService. media and cache may be nil; image
// attachment fails with ErrInvalidInput when no media store is configured.
func NewEventService(
	eventRepo domain.EventRepository,
	media domain.MediaStore,
	cache domain.EventCache,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo: eventRepo,
		media:     media,
		cache:     cache,
		logger:    logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, actorID string, event *domain.Event) (*domain.Event, error) {
	if event.Title == "" || event.Description == "" || event.Location == "" || event.DateTime.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if event.Capacity < 1 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	created := domain.NewEvent(event.Title, event.Description, event.Location, event.DateTime, event.Capacity, actorID, now)
	if err := s.eventRepo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// UpdateEvent applies a partial update; only the creator may mutate. A
// capacity reduction below the current attendee count is rejected by the
// repository's conditional update and surfaced as ErrCapacityTooSmall.
func (s *eventService) UpdateEvent(ctx context.Context, actorID, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != actorID {
		return nil, domain.ErrForbidden
	}

	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrConditionFailed) {
			// Either the capacity guard held back the write or the event
			// was deleted underneath us; a re-read tells which.
			if _, rerr := s.eventRepo.GetByID(ctx, eventID); rerr != nil {
				if errors.Is(rerr, domain.ErrNotFound) {
					return nil, domain.ErrNotFound
				}
				return nil, fmt.Errorf("classify update failure: %w", rerr)
			}
			return nil, domain.ErrCapacityTooSmall
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.invalidate(ctx, eventID)
	return updated, nil
}

func validatePatch(patch domain.EventPatch) error {
	if patch.Title != nil && *patch.Title == "" {
		return domain.ErrInvalidInput
	}
	if patch.Description != nil && *patch.Description == "" {
		return domain.ErrInvalidInput
	}
	if patch.Location != nil && *patch.Location == "" {
		return domain.ErrInvalidInput
	}
	if patch.DateTime != nil && patch.DateTime.IsZero() {
		return domain.ErrInvalidInput
	}
	if patch.Capacity != nil && *patch.Capacity < 1 {
		return domain.ErrInvalidInput
	}
	return nil
}

// DeleteEvent removes the event; only the creator may delete. Memberships
// cascade in the store, so racing reservations observe not-found rather than
// a resurrected row.
func (s *eventService) DeleteEvent(ctx context.Context, actorID, eventID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != actorID {
		return domain.ErrForbidden
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	s.invalidate(ctx, eventID)
	return nil
}

func (s *eventService) AttachImage(ctx context.Context, actorID, eventID, filename, contentType string, size int64, body io.Reader) (*domain.Event, error) {
	if s.media == nil {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != actorID {
		return nil, domain.ErrForbidden
	}

	key := fmt.Sprintf("events/%s/%d%s", eventID, time.Now().UnixNano(), path.Ext(filename))
	url, err := s.media.Store(ctx, key, contentType, size, body)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	updated, err := s.eventRepo.UpdateImageURL(ctx, eventID, url)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update image url: %w", err)
	}

	s.invalidate(ctx, eventID)
	return updated, nil
}

func (s *eventService) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate event cache", "event_id", eventID, "err", err)
	}
}
