package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/applicant-review/internal/services"
)

type ReportHandler struct {
	sessions services.SessionService
	exports  services.ExportService
	scores   services.ScoreResolver
}

func NewReportHandler(
	sessions services.SessionService,
	exports services.ExportService,
	scores services.ScoreResolver,
) *ReportHandler {
	return &ReportHandler{
		sessions: sessions,
		exports:  exports,
		scores:   scores,
	}
}

// HandleStatistics handles GET /sessions/:id/statistics
func (h *ReportHandler) HandleStatistics(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	snap, err := h.sessions.Get(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(services.ComputeStatistics(snap, h.scores))
}

// HandleExport handles POST /sessions/:id/exports
func (h *ReportHandler) HandleExport(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	report, err := h.exports.Export(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleListExports handles GET /sessions/:id/exports
func (h *ReportHandler) HandleListExports(c *fiber.Ctx) error {
	id, ok := sessionID(c)
	if !ok {
		return invalidSessionID(c)
	}

	reports, err := h.exports.ListReports(id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"reports": reports,
	})
}

// HandleDownload handles GET /exports/:id
func (h *ReportHandler) HandleDownload(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid report ID format",
		})
	}

	report, err := h.exports.FindReport(reportID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Download(report.FilePath, report.Filename)
}
