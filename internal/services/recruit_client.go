package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/applicant-review/internal/models"
)

// SaveEvaluationRequest is the body of PUT /applications/{id}/evaluation.
type SaveEvaluationRequest struct {
	Comment    string              `json:"comment"`
	Status     models.RemoteStatus `json:"status"`
	FinalScore float64             `json:"finalScore"`
}

// UpstreamError is a non-2xx answer from the recruitment API.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.StatusCode, body)
}

// RecruitClient talks to the recruitment API, which owns applications.
type RecruitClient interface {
	FetchJobPostingWithApplications(ctx context.Context, jobPostingID int64) (*models.JobPosting, error)
	FetchEvaluationResult(ctx context.Context, applicationID int64) (*models.EvaluationFetch, error)
	SaveEvaluation(ctx context.Context, applicationID int64, req SaveEvaluationRequest) error
	UpdateJobPostingStatus(ctx context.Context, jobPostingID int64, status string) error
}

type recruitClient struct {
	baseURL string
	timeout time.Duration
}

func NewRecruitClient(baseURL string, timeout time.Duration) RecruitClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &recruitClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (c *recruitClient) FetchJobPostingWithApplications(ctx context.Context, jobPostingID int64) (*models.JobPosting, error) {
	url := fmt.Sprintf("%s/job-postings/%d/with-applications", c.baseURL, jobPostingID)
	body, err := c.do(ctx, "fetch job posting", fiber.Get(url), nil)
	if err != nil {
		return nil, err
	}

	var posting models.JobPosting
	if err := json.Unmarshal(body, &posting); err != nil {
		return nil, fmt.Errorf("failed to decode job posting: %w", err)
	}
	return &posting, nil
}

func (c *recruitClient) FetchEvaluationResult(ctx context.Context, applicationID int64) (*models.EvaluationFetch, error) {
	url := fmt.Sprintf("%s/applications/%d/evaluation-result", c.baseURL, applicationID)
	body, err := c.do(ctx, "fetch evaluation result", fiber.Get(url), nil)
	if err != nil {
		return nil, err
	}

	var fetch models.EvaluationFetch
	if err := json.Unmarshal(body, &fetch); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation result: %w", err)
	}
	return &fetch, nil
}

func (c *recruitClient) SaveEvaluation(ctx context.Context, applicationID int64, req SaveEvaluationRequest) error {
	url := fmt.Sprintf("%s/applications/%d/evaluation", c.baseURL, applicationID)
	_, err := c.do(ctx, "save evaluation", fiber.Put(url), req)
	return err
}

func (c *recruitClient) UpdateJobPostingStatus(ctx context.Context, jobPostingID int64, status string) error {
	url := fmt.Sprintf("%s/job-postings/%d", c.baseURL, jobPostingID)
	_, err := c.do(ctx, "update job posting status", fiber.Put(url), fiber.Map{"postingStatus": status})
	return err
}

func (c *recruitClient) do(ctx context.Context, op string, agent *fiber.Agent, payload interface{}) (body []byte, err error) {
	defer func(start time.Time) {
		upstreamLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		upstreamRequests.WithLabelValues(op, outcome(err)).Inc()
	}(time.Now())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if payload != nil {
		agent.JSON(payload)
	}
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to %s: %w: %w", op, ErrUpstreamUnavailable, errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, &UpstreamError{Op: op, StatusCode: code, Body: string(body)}
	}
	return body, nil
}
