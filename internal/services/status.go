package services

import (
	"alfredoptarigan/applicant-review/internal/models"
)

// Screen selects the context-dependent parts of status resolution.
type Screen string

const (
	// ScreenReview is the per-applicant review screen; REJECTED shows as failed.
	ScreenReview Screen = "review"
	// ScreenFinal and ScreenStatistics are listing screens; REJECTED shows as unqualified.
	ScreenFinal      Screen = "final"
	ScreenStatistics Screen = "statistics"
)

func ParseScreen(s string) (Screen, bool) {
	switch Screen(s) {
	case ScreenReview, ScreenFinal, ScreenStatistics:
		return Screen(s), true
	case "":
		return ScreenReview, true
	}
	return "", false
}

type Resolution struct {
	Display    models.DisplayStatus `json:"displayStatus"`
	Remote     models.RemoteStatus  `json:"remoteStatus"`
	Overridden bool                 `json:"overridden"`
}

// ResolveStatus merges a remote status with the applicant's local override.
// An override with a status always wins.
func ResolveStatus(overrides models.OverrideMap, applicantID int64, remote models.RemoteStatus, screen Screen) Resolution {
	if o, ok := overrides[applicantID]; ok && o.Status != "" {
		return Resolution{Display: o.Status, Remote: remote, Overridden: true}
	}
	return Resolution{Display: RemoteToDisplay(remote, screen), Remote: remote}
}

func RemoteToDisplay(remote models.RemoteStatus, screen Screen) models.DisplayStatus {
	switch remote {
	case models.RemoteAccepted:
		return models.DisplayPassed
	case models.RemoteRejected:
		if screen == ScreenReview {
			return models.DisplayFailed
		}
		return models.DisplayUnqualified
	case models.RemoteOnHold, models.RemoteInProgress:
		return models.DisplayPending
	default:
		return models.DisplayNotEvaluated
	}
}

// DisplayToRemote is the status sent upstream when an evaluation is saved.
func DisplayToRemote(status models.DisplayStatus) models.RemoteStatus {
	switch status {
	case models.DisplayPassed:
		return models.RemoteAccepted
	case models.DisplayFailed, models.DisplayUnqualified:
		return models.RemoteRejected
	default:
		return models.RemoteOnHold
	}
}
