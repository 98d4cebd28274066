package dto

import "time"

type FindSlotsRequest struct {
	RequesterId     string    `json:"requester_id" validate:"required"`
	ParticipantIds  []string  `json:"participant_ids" validate:"required,min=1"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1"`
	HorizonStart    time.Time `json:"horizon_start" validate:"required"`
	HorizonEnd      time.Time `json:"horizon_end" validate:"required"`
}

type FindSlotsResponse struct {
	Slots []SlotDTO `json:"slots"`
}

type ConfirmBookingRequest struct {
	SessionId      string    `json:"session_id" validate:"required"`
	ParticipantIds []string  `json:"participant_ids" validate:"required,min=1"`
	Start          time.Time `json:"start" validate:"required"`
	End            time.Time `json:"end" validate:"required"`
}

type ConfirmBookingResponse struct {
	BookingId string `json:"booking_id"`
}
