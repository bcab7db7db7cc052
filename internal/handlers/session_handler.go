package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/applicant-review/internal/models"
	"alfredoptarigan/applicant-review/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
	scores   services.ScoreResolver
}

func NewSessionHandler(sessions services.SessionService, scores services.ScoreResolver) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		scores:   scores,
	}
}

type sessionResponse struct {
	*services.Snapshot
	JobTitle      string   `json:"jobTitle"`
	CompanyName   string   `json:"companyName,omitempty"`
	PostingStatus string   `json:"postingStatus,omitempty"`
	PassingScore  *float64 `json:"passingScore,omitempty"`
	Applications  int      `json:"applications"`
}

func newSessionResponse(snap *services.Snapshot) sessionResponse {
	return sessionResponse{
		Snapshot:      snap,
		JobTitle:      snap.Posting.Title,
		CompanyName:   snap.Posting.CompanyName,
		PostingStatus: snap.Posting.PostingStatus,
		PassingScore:  snap.Posting.PassingScore,
		Applications:  len(snap.Posting.Applications),
	}
}

// HandleCreate handles POST /sessions
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.JobPostingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "jobPostingId is required",
		})
	}

	snap, err := h.sessions.Create(c.UserContext(), req.JobPostingID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newSessionResponse(snap))
}

// HandleGet handles GET /sessions/:id
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	snap, err := h.sessions.Get(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(newSessionResponse(snap))
}

// HandleDelete handles DELETE /sessions/:id
func (h *SessionHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	if err := h.sessions.Reset(c.UserContext(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRefresh handles POST /sessions/:id/refresh
func (h *SessionHandler) HandleRefresh(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	snap, err := h.sessions.Refresh(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(newSessionResponse(snap))
}

// HandleApplicants handles GET /sessions/:id/applicants?screen=&q=
func (h *SessionHandler) HandleApplicants(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	screen, ok := services.ParseScreen(c.Query("screen"))
	if !ok || screen == services.ScreenStatistics {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "screen must be review or final",
		})
	}

	snap, err := h.sessions.Get(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(services.BuildApplicantList(snap, h.scores, screen, c.Query("q")))
}

// HandleSelect handles PUT /sessions/:id/selection
func (h *SessionHandler) HandleSelect(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	var req models.SelectionRequest
	if err := c.BodyParser(&req); err != nil || req.ApplicationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "applicationId is required",
		})
	}

	view, err := h.sessions.Select(c.UserContext(), id, req.ApplicationID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// HandleView handles GET /sessions/:id/view
func (h *SessionHandler) HandleView(c *fiber.Ctx) error {
	return h.viewAction(c, h.sessions.View)
}

// HandleNextQuestion handles POST /sessions/:id/questions/next
func (h *SessionHandler) HandleNextQuestion(c *fiber.Ctx) error {
	return h.viewAction(c, h.sessions.NextQuestion)
}

// HandlePrevQuestion handles POST /sessions/:id/questions/prev
func (h *SessionHandler) HandlePrevQuestion(c *fiber.Ctx) error {
	return h.viewAction(c, h.sessions.PrevQuestion)
}

// HandleToggleScoreDetails handles POST /sessions/:id/panel/score-details
func (h *SessionHandler) HandleToggleScoreDetails(c *fiber.Ctx) error {
	return h.viewAction(c, h.sessions.ToggleScoreDetails)
}

// HandleSetTab handles PUT /sessions/:id/panel
func (h *SessionHandler) HandleSetTab(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	var req models.TabRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	tab, err := services.ParseTab(req.Tab)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	view, err := h.sessions.SetTab(c.UserContext(), id, tab)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

func (h *SessionHandler) viewAction(c *fiber.Ctx, action func(ctx context.Context, id uuid.UUID) (*services.View, error)) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	view, err := action(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}
