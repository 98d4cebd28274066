package controller

import (
	"errors"

	"hr-assistant-be/internal/dto"
	"hr-assistant-be/internal/pkg/serverutils"
	"hr-assistant-be/internal/service"
	"hr-assistant-be/pkg/schedule"

	"github.com/gofiber/fiber/v2"
)

type IScheduleController interface {
	RegisterRoutes(r fiber.Router)
	FindSlots(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
}

type scheduleController struct {
	bookingService service.IBookingService
}

func NewScheduleController(bookingService service.IBookingService) IScheduleController {
	return &scheduleController{
		bookingService: bookingService,
	}
}

func (c *scheduleController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/schedule/v1")
	h.Post("/slots", c.FindSlots)
	h.Post("/confirm", c.Confirm)
}

func (c *scheduleController) FindSlots(ctx *fiber.Ctx) error {
	var req dto.FindSlotsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.bookingService.FindSlots(ctx.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrNoAvailability):
			return serverutils.NewAPIError(fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, schedule.ErrSearchBudget):
			return serverutils.NewAPIError(fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, schedule.ErrParticipantNotFound):
			return serverutils.NewAPIError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Slot candidates", res))
}

func (c *scheduleController) Confirm(ctx *fiber.Ctx) error {
	var req dto.ConfirmBookingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	if !req.End.After(req.Start) {
		return serverutils.NewAPIError(fiber.StatusBadRequest, "Booking end must be after start")
	}

	res, err := c.bookingService.Confirm(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, schedule.ErrParticipantNotFound) {
			return serverutils.NewAPIError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Booking confirmed", res))
}
