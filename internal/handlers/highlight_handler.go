package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/applicant-review/internal/models"
	"alfredoptarigan/applicant-review/internal/services"
)

type HighlightHandler struct{}

func NewHighlightHandler() *HighlightHandler {
	return &HighlightHandler{}
}

// HandleHighlight handles POST /highlights. It is stateless: the caller
// sends the answer text with its criteria and gets the segments back.
func (h *HighlightHandler) HandleHighlight(c *fiber.Ctx) error {
	var req models.HighlightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	return c.JSON(fiber.Map{
		"segments": services.RenderHighlights(req.AnswerText, req.Evaluations),
	})
}
