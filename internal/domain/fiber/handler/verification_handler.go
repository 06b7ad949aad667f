package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/prakkhar03/skillbridge/internal/dto"
	"github.com/prakkhar03/skillbridge/internal/middleware"
	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/usecase"
	"github.com/prakkhar03/skillbridge/internal/util"
)

type VerificationHandler struct {
	uc *usecase.VerificationUsecase
}

func NewVerificationHandler(uc *usecase.VerificationUsecase) *VerificationHandler {
	return &VerificationHandler{uc: uc}
}

// RegisterRoutes mounts the pipeline under /api/verification. auth must
// resolve the caller for every route.
func (h *VerificationHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	// Backend-heavy routes get their own tight limit.
	heavy := middleware.RateLimiter(3, time.Minute)

	api := app.Group("/api/verification", auth)
	api.Post("/start", heavy, h.Start)
	api.Get("/status", h.Status)
	api.Get("/history", h.History)
	api.Get("/recommendation", h.Recommendation)
	api.Post("/test", heavy, h.GenerateTest)
	api.Post("/test/:id/submit", heavy, h.SubmitTest)
	api.Get("/admin/:user_id", h.Review)
	api.Post("/admin-verify/:user_id", h.Finalize)
	api.Post("/admin-reject/:user_id", h.Reject)
}

func (h *VerificationHandler) Start(c *fiber.Ctx) error {
	caller := middleware.Caller(c)
	v, err := h.uc.Start(c.UserContext(), caller.ID)
	if err != nil {
		return util.HandleError(c, "Failed to start verification", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Verification started",
		Data:    dto.NewVerificationDTO(v),
	})
}

func (h *VerificationHandler) Status(c *fiber.Ctx) error {
	caller := middleware.Caller(c)
	v, err := h.uc.Status(c.UserContext(), caller.ID)
	if err != nil {
		return util.HandleError(c, "Failed to get verification status", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get verification status",
		Data:    dto.NewVerificationDTO(v),
	})
}

func (h *VerificationHandler) History(c *fiber.Ctx) error {
	var q dto.HistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return util.HandleError(c, "Invalid query", util.NewFormError("Invalid query", map[string]string{"_": err.Error()}))
	}
	caller := middleware.Caller(c)
	items, pagination, err := h.uc.History(c.UserContext(), caller.ID, q)
	if err != nil {
		return util.HandleError(c, "Failed to get verification history", err)
	}
	data := make([]dto.VerificationDTO, len(items))
	for i := range items {
		data[i] = dto.NewVerificationDTO(&items[i])
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get verification history",
		Data:       data,
		Pagination: pagination,
	})
}

func (h *VerificationHandler) Recommendation(c *fiber.Ctx) error {
	caller := middleware.Caller(c)
	rec, err := h.uc.Recommendation(c.UserContext(), caller.ID)
	if err != nil {
		return util.HandleError(c, "Failed to get recommendation", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get recommendation",
		Data:    rec,
	})
}

func (h *VerificationHandler) GenerateTest(c *fiber.Ctx) error {
	var req dto.GenerateTestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return util.HandleError(c, "Invalid request body", util.NewFormError("Invalid request body", map[string]string{"_": err.Error()}))
		}
	}
	caller := middleware.Caller(c)
	out, err := h.uc.GenerateTest(c.UserContext(), caller.ID, req)
	if err != nil {
		return util.HandleError(c, "Failed to generate test", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Test generated",
		Data:    out,
	})
}

func (h *VerificationHandler) SubmitTest(c *fiber.Ctx) error {
	testID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.HandleError(c, "Test not found", model.ErrNotFound)
	}
	invalid := util.NewFormError("Answers must be a list", map[string]string{
		"answers": "must be a list of strings",
	})
	answers := gjson.GetBytes(c.Body(), "answers")
	if !answers.IsArray() {
		return util.HandleError(c, "Invalid submission", invalid)
	}
	submitted := make([]string, 0, len(answers.Array()))
	for _, a := range answers.Array() {
		if a.Type != gjson.String {
			return util.HandleError(c, "Invalid submission", invalid)
		}
		submitted = append(submitted, a.String())
	}

	caller := middleware.Caller(c)
	out, err := h.uc.SubmitTest(c.UserContext(), caller.ID, testID, submitted)
	if err != nil {
		return util.HandleError(c, "Failed to submit test", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Test submitted",
		Data:    out,
	})
}

func (h *VerificationHandler) Review(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return util.HandleError(c, "User not found", model.ErrNotFound)
	}
	out, err := h.uc.Review(c.UserContext(), middleware.Caller(c), targetID)
	if err != nil {
		return util.HandleError(c, "Failed to get verification review", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get verification review",
		Data:    out,
	})
}

func (h *VerificationHandler) Finalize(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return util.HandleError(c, "User not found", model.ErrNotFound)
	}
	var req dto.FinalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return util.HandleError(c, "Invalid request body", util.NewFormError("Invalid request body", map[string]string{"_": err.Error()}))
	}
	out, err := h.uc.Finalize(c.UserContext(), middleware.Caller(c), targetID, req)
	if err != nil {
		return util.HandleError(c, "Failed to verify user", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "User verified successfully",
		Data:    out,
	})
}

func (h *VerificationHandler) Reject(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return util.HandleError(c, "User not found", model.ErrNotFound)
	}
	out, err := h.uc.Reject(c.UserContext(), middleware.Caller(c), targetID)
	if err != nil {
		return util.HandleError(c, "Failed to reject user", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Verification rejected",
		Data:    out,
	})
}
