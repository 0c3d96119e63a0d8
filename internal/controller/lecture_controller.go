package controller

import (
	"strconv"

	"ai-lecture-be/internal/dto"
	"ai-lecture-be/internal/pkg/serverutils"
	"ai-lecture-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILectureController interface {
	RegisterRoutes(r fiber.Router)
	Initialize(ctx *fiber.Ctx) error
	GetNextContent(ctx *fiber.Ctx) error
	AnswerQuestion(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	GetArchive(ctx *fiber.Ctx) error
}

type lectureController struct {
	service        service.ILectureService
	archiveService service.IArchiveService
}

func NewLectureController(service service.ILectureService, archiveService service.IArchiveService) ILectureController {
	return &lectureController{service: service, archiveService: archiveService}
}

func (c *lectureController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/lecture/v1")
	h.Post("/initialize", c.Initialize)
	h.Get("/:lectureId/next", c.GetNextContent)
	h.Post("/:lectureId/answer", c.AnswerQuestion)
	h.Get("/:lectureId/session", c.GetSession)
	h.Post("/:lectureId/cancel", c.Cancel)
	h.Get("/:lectureId/archive", c.GetArchive)
}

func lectureIdParam(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("lectureId"), 10, 64)
	if err != nil {
		return 0, serverutils.BadRequest("lectureId must be an integer")
	}
	return id, nil
}

func (c *lectureController) Initialize(ctx *fiber.Ctx) error {
	var req dto.InitializeLectureRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Initialize(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success initialize lecture", res))
}

func (c *lectureController) GetNextContent(ctx *fiber.Ctx) error {
	lectureId, err := lectureIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetNextContent(ctx.Context(), lectureId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get next content", res))
}

func (c *lectureController) AnswerQuestion(ctx *fiber.Ctx) error {
	lectureId, err := lectureIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.AnswerQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AnswerQuestion(ctx.Context(), lectureId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *lectureController) GetSession(ctx *fiber.Ctx) error {
	lectureId, err := lectureIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetSession(ctx.Context(), lectureId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *lectureController) Cancel(ctx *fiber.Ctx) error {
	lectureId, err := lectureIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Cancel(ctx.Context(), lectureId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success cancel lecture", res))
}

func (c *lectureController) GetArchive(ctx *fiber.Ctx) error {
	lectureId, err := lectureIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.archiveService.GetArchive(ctx.Context(), lectureId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get lecture archive", res))
}
