package services

import (
	"errors"
	"fmt"

	"alfredoptarigan/applicant-review/internal/models"
)

var (
	ErrSessionNotFound     = errors.New("review session not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid display status")
	ErrNoSelection         = errors.New("no applicant selected")
	ErrUpstreamUnavailable = errors.New("recruitment API unavailable")
)

// SaveError reports a failed upstream save. The local override it carries is
// kept as applied; callers surface the error and may retry.
type SaveError struct {
	ApplicationID int64
	Override      models.LocalOverride
	Err           error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save evaluation for application %d: %v", e.ApplicationID, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
