package controller

import (
	"ai-lecture-be/internal/dto"
	"ai-lecture-be/internal/pkg/serverutils"
	"ai-lecture-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDispatchController interface {
	RegisterRoutes(r fiber.Router)
	Dispatch(ctx *fiber.Ctx) error
}

// dispatchController exposes the legacy stage-routed endpoint spoken by the
// upstream main-service: one POST carrying {stage, payload} instead of the
// per-operation REST routes. Both surfaces hit the same service.
type dispatchController struct {
	service service.ILectureService
}

func NewDispatchController(service service.ILectureService) IDispatchController {
	return &dispatchController{service: service}
}

func (c *dispatchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/delegator/v1")
	h.Post("/dispatch", c.Dispatch)
}

func (c *dispatchController) Dispatch(ctx *fiber.Ctx) error {
	var req dto.DispatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	lectureId, ok := req.Int64Field("lecture_id", "lectureId")
	if !ok {
		return serverutils.BadRequest("payload is missing lecture_id")
	}

	switch req.Stage {
	case dto.StageInitialize:
		pdfPath, ok := req.StringField("pdf_path", "pdfPath")
		if !ok {
			return serverutils.BadRequest("payload is missing pdf_path")
		}
		res, err := c.service.Initialize(ctx.Context(), &dto.InitializeLectureRequest{
			LectureId: lectureId,
			PdfPath:   pdfPath,
		})
		if err != nil {
			return err
		}
		return ctx.JSON(res)

	case dto.StageGetNextContent:
		res, err := c.service.GetNextContent(ctx.Context(), lectureId)
		if err != nil {
			return err
		}
		return ctx.JSON(res)

	case dto.StageAnswerQuestion:
		questionId, ok := req.StringField("question_id", "questionId")
		if !ok {
			return serverutils.BadRequest("payload is missing question_id")
		}
		answer, ok := req.StringField("answer")
		if !ok {
			return serverutils.BadRequest("payload is missing answer")
		}
		res, err := c.service.AnswerQuestion(ctx.Context(), lectureId, &dto.AnswerQuestionRequest{
			QuestionId: questionId,
			Answer:     answer,
		})
		if err != nil {
			return err
		}
		return ctx.JSON(res)

	case dto.StageGetSession:
		res, err := c.service.GetSession(ctx.Context(), lectureId)
		if err != nil {
			return err
		}
		return ctx.JSON(res)

	case dto.StageCancel:
		res, err := c.service.Cancel(ctx.Context(), lectureId)
		if err != nil {
			return err
		}
		return ctx.JSON(res)

	default:
		return serverutils.BadRequest("unknown stage %q", req.Stage)
	}
}
