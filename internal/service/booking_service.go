package service

import (
	"context"
	"strings"
	"time"

	"hr-assistant-be/internal/dto"
	"hr-assistant-be/internal/model"
	"hr-assistant-be/internal/pkg/logger"
	"hr-assistant-be/internal/repository"
	"hr-assistant-be/pkg/events"
	pktNats "hr-assistant-be/pkg/nats"
	"hr-assistant-be/pkg/schedule"

	"github.com/google/uuid"
)

type IBookingService interface {
	FindSlots(ctx context.Context, req *dto.FindSlotsRequest) (*dto.FindSlotsResponse, error)
	Confirm(ctx context.Context, req *dto.ConfirmBookingRequest) (*dto.ConfirmBookingResponse, error)
}

type bookingService struct {
	engine         *schedule.Engine
	directory      schedule.AvailabilityProvider
	bookingRepo    repository.BookingRepository // nil when no database is configured
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewBookingService(
	engine *schedule.Engine,
	directory schedule.AvailabilityProvider,
	bookingRepo repository.BookingRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IBookingService {
	return &bookingService{
		engine:         engine,
		directory:      directory,
		bookingRepo:    bookingRepo,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *bookingService) FindSlots(ctx context.Context, req *dto.FindSlotsRequest) (*dto.FindSlotsResponse, error) {
	interviewers, err := s.directory.Participants(req.ParticipantIds)
	if err != nil {
		return nil, err
	}

	requester, err := s.directory.Participant(req.RequesterId)
	if err != nil {
		// An unlisted requester only constrains nothing: treat them as free.
		requester = schedule.Participant{
			ID:      req.RequesterId,
			Windows: []schedule.Window{{Start: req.HorizonStart, End: req.HorizonEnd}},
		}
	}

	slots, err := s.engine.FindSlots(ctx, requester, interviewers,
		time.Duration(req.DurationMinutes)*time.Minute, req.HorizonStart, req.HorizonEnd, 0)
	if err != nil {
		return nil, err
	}

	resp := &dto.FindSlotsResponse{}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, dto.SlotDTO{
			Start:          slot.Start,
			End:            slot.End,
			ParticipantIds: slot.ParticipantIDs,
			Rank:           slot.Rank,
		})
	}
	return resp, nil
}

func (s *bookingService) Confirm(ctx context.Context, req *dto.ConfirmBookingRequest) (*dto.ConfirmBookingResponse, error) {
	if err := s.directory.RemoveInterval(req.ParticipantIds, req.Start, req.End); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		Id:             uuid.New(),
		SessionId:      req.SessionId,
		StartTime:      req.Start,
		EndTime:        req.End,
		ParticipantIds: strings.Join(req.ParticipantIds, ","),
	}
	if s.bookingRepo != nil {
		if err := s.bookingRepo.Create(ctx, booking); err != nil {
			return nil, err
		}
	}

	s.logger.Info("booking_service", "Booking confirmed", map[string]interface{}{
		"booking_id": booking.Id.String(),
		"session_id": req.SessionId,
		"start":      req.Start.Format(time.RFC3339),
	})

	if s.eventPublisher != nil {
		evt := events.NewBookingConfirmed(req.SessionId, req.Start, req.End, req.ParticipantIds)
		// We log error but don't fail the request as notification is auxiliary
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("booking_service", "Failed to publish BOOKING_CONFIRMED event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &dto.ConfirmBookingResponse{BookingId: booking.Id.String()}, nil
}
