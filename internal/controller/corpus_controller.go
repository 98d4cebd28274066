package controller

import (
	"hr-assistant-be/internal/dto"
	"hr-assistant-be/internal/pkg/serverutils"
	"hr-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICorpusController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
}

type corpusController struct {
	corpusService service.ICorpusService
}

func NewCorpusController(corpusService service.ICorpusService) ICorpusController {
	return &corpusController{
		corpusService: corpusService,
	}
}

func (c *corpusController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/corpus/v1")
	h.Post("/ingest", c.Ingest)
}

func (c *corpusController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	if len(req.Documents) == 0 && req.Folder == "" {
		return serverutils.NewAPIError(fiber.StatusBadRequest, "Provide documents inline or a corpus folder")
	}

	res, err := c.corpusService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Corpus ingested", res))
}
