package implementation

import (
	"context"

	"hr-assistant-be/internal/model"
	"hr-assistant-be/internal/repository"

	"gorm.io/gorm"
)

type BookingRepositoryImpl struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) repository.BookingRepository {
	return &BookingRepositoryImpl{db: db}
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}
