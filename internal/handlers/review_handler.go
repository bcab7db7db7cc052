package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/applicant-review/internal/models"
	"alfredoptarigan/applicant-review/internal/services"
)

type ReviewHandler struct {
	sessions services.SessionService
}

func NewReviewHandler(sessions services.SessionService) *ReviewHandler {
	return &ReviewHandler{
		sessions: sessions,
	}
}

// HandleChangeStatus handles PUT /sessions/:id/applications/:applicationId/status
func (h *ReviewHandler) HandleChangeStatus(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}
	applicationID, err := applicationIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID",
		})
	}

	var req models.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	override, err := h.sessions.ChangeStatus(c.UserContext(), id, applicationID, req.Status)
	return h.overrideResponse(c, applicationID, override, err)
}

// HandleSetMemo handles PUT /sessions/:id/applications/:applicationId/memo
func (h *ReviewHandler) HandleSetMemo(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}
	applicationID, err := applicationIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID",
		})
	}

	var req models.MemoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	override, err := h.sessions.SetMemo(c.UserContext(), id, applicationID, req.Memo)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(models.OverrideResponse{
		ApplicationID: applicationID,
		Status:        override.Status,
		Memo:          override.Memo,
	})
}

// HandleSaveEvaluation handles POST /sessions/:id/applications/:applicationId/evaluation
func (h *ReviewHandler) HandleSaveEvaluation(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}
	applicationID, err := applicationIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID",
		})
	}

	override, err := h.sessions.SaveEvaluation(c.UserContext(), id, applicationID)
	return h.overrideResponse(c, applicationID, override, err)
}

// HandleComplete handles POST /sessions/:id/complete
func (h *ReviewHandler) HandleComplete(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	if err := h.sessions.CompleteEvaluation(c.UserContext(), id); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"postingStatus": models.PostingStatusEvaluationComplete,
	})
}

// overrideResponse reports a failed upstream save as 502 while still
// returning the override that stays applied locally.
func (h *ReviewHandler) overrideResponse(c *fiber.Ctx, applicationID int64, override models.LocalOverride, err error) error {
	resp := models.OverrideResponse{
		ApplicationID: applicationID,
		Status:        override.Status,
		Memo:          override.Memo,
		Saved:         err == nil,
	}

	var saveErr *services.SaveError
	if errors.As(err, &saveErr) {
		resp.Error = saveErr.Error()
		return c.Status(fiber.StatusBadGateway).JSON(resp)
	}
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}

func applicationIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("applicationId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}
