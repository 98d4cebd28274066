package repository

import (
	"context"

	"hr-assistant-be/internal/model"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindBySessionId(ctx context.Context, sessionId string) ([]model.Booking, error)
}
