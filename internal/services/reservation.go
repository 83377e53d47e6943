package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
	"gatherly/internal/monitoring"
)

type reservationService struct {
	eventRepo      domain.EventRepository
	attendanceRepo domain.AttendanceRepository
	cache          domain.EventCache
	mailer         domain.Mailer
	logger         *slog.Logger
}

// NewReservationService creates a ReservationService. cache and mailer may be
// nil; both are side channels and never affect the admission decision.
func NewReservationService(
	eventRepo domain.EventRepository,
	attendanceRepo domain.AttendanceRepository,
	cache domain.EventCache,
	mailer domain.Mailer,
	logger *slog.Logger,
) domain.ReservationService {
	return &reservationService{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		cache:          cache,
		mailer:         mailer,
		logger:         logger,
	}
}

// Join admits the actor into the event's attendee set. The admission
// predicates (event exists, not already attending, free capacity) travel
// with the mutation as one atomic store operation; when that operation
// reports a failed condition, a second read classifies the cause for the
// caller. The classification read never decides admission.
func (s *reservationService) Join(ctx context.Context, eventID string, actor domain.Principal) (int, error) {
	count, err := s.attendanceRepo.Join(ctx, eventID, actor.UserID, time.Now())
	if err == nil {
		monitoring.ObserveReservation("join", monitoring.OutcomeAccepted)
		s.invalidate(ctx, eventID)
		s.notifyJoin(eventID, actor)
		return count, nil
	}

	switch {
	case errors.Is(err, domain.ErrAlreadyAttending):
		monitoring.ObserveReservation("join", monitoring.OutcomeAlreadyAttending)
		return 0, domain.ErrAlreadyAttending
	case errors.Is(err, domain.ErrNotFound):
		monitoring.ObserveReservation("join", monitoring.OutcomeNotFound)
		return 0, domain.ErrNotFound
	case errors.Is(err, domain.ErrConditionFailed):
		return 0, s.classifyJoinFailure(ctx, eventID, actor.UserID)
	default:
		monitoring.ObserveReservation("join", monitoring.OutcomeError)
		return 0, fmt.Errorf("join event: %w", err)
	}
}

// classifyJoinFailure re-reads the event to explain a failed join condition.
func (s *reservationService) classifyJoinFailure(ctx context.Context, eventID, userID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			monitoring.ObserveReservation("join", monitoring.OutcomeNotFound)
			return domain.ErrNotFound
		}
		monitoring.ObserveReservation("join", monitoring.OutcomeError)
		return fmt.Errorf("classify join failure: %w", err)
	}

	attending, err := s.attendanceRepo.Exists(ctx, eventID, userID)
	if err != nil {
		monitoring.ObserveReservation("join", monitoring.OutcomeError)
		return fmt.Errorf("classify join failure: %w", err)
	}
	if attending {
		monitoring.ObserveReservation("join", monitoring.OutcomeAlreadyAttending)
		return domain.ErrAlreadyAttending
	}
	if event.AttendeeCount >= event.Capacity {
		monitoring.ObserveReservation("join", monitoring.OutcomeFull)
		return domain.ErrEventFull
	}

	// The condition encodes exactly the two predicates above, so this
	// branch signals an invariant violation or store inconsistency.
	monitoring.ObserveReservation("join", monitoring.OutcomeUnknown)
	s.logger.ErrorContext(ctx, "join condition failed outside known predicates",
		"event_id", eventID,
		"user_id", userID,
		"attendee_count", event.AttendeeCount,
		"capacity", event.Capacity,
	)
	return domain.ErrUnableToJoin
}

// Leave withdraws the actor from the event's attendee set iff currently
// present. No capacity concern; only membership presence.
func (s *reservationService) Leave(ctx context.Context, eventID string, actor domain.Principal) (int, error) {
	count, err := s.attendanceRepo.Leave(ctx, eventID, actor.UserID, time.Now())
	if err == nil {
		monitoring.ObserveReservation("leave", monitoring.OutcomeAccepted)
		s.invalidate(ctx, eventID)
		return count, nil
	}

	if errors.Is(err, domain.ErrConditionFailed) {
		if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				monitoring.ObserveReservation("leave", monitoring.OutcomeNotFound)
				return 0, domain.ErrNotFound
			}
			monitoring.ObserveReservation("leave", monitoring.OutcomeError)
			return 0, fmt.Errorf("classify leave failure: %w", err)
		}
		monitoring.ObserveReservation("leave", monitoring.OutcomeNotAttending)
		return 0, domain.ErrNotAttending
	}

	monitoring.ObserveReservation("leave", monitoring.OutcomeError)
	return 0, fmt.Errorf("leave event: %w", err)
}

func (s *reservationService) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate event cache", "event_id", eventID, "err", err)
	}
}

// notifyJoin sends the RSVP confirmation off the request path. Failures are
// logged and never surfaced; the reservation already committed.
func (s *reservationService) notifyJoin(eventID string, actor domain.Principal) {
	if s.mailer == nil || actor.Email == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			s.logger.Warn("failed to load event for RSVP confirmation", "event_id", eventID, "err", err)
			return
		}
		subject := fmt.Sprintf("You're going to %s", event.Title)
		text := fmt.Sprintf("Your spot at %s on %s (%s) is confirmed.",
			event.Title, event.DateTime.Format("Jan 2, 2006 15:04 MST"), event.Location)
		if err := s.mailer.Send(actor.Email, subject, "", text); err != nil {
			s.logger.Warn("failed to send RSVP confirmation", "event_id", eventID, "err", err)
		}
	}()
}
