package services

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"alfredoptarigan/applicant-review/internal/models"
)

type Bucket string

const (
	BucketPassed  Bucket = "passed"
	BucketFailed  Bucket = "failed"
	BucketPending Bucket = "pending"

	BucketBeforeEvaluation Bucket = "before-evaluation"
	BucketInProgress       Bucket = "in-progress"
	BucketAccepted         Bucket = "accepted"
	BucketRejected         Bucket = "rejected"
	BucketOnHold           Bucket = "on-hold"
)

var (
	finalBuckets  = []Bucket{BucketPending, BucketPassed, BucketFailed}
	reviewBuckets = []Bucket{BucketBeforeEvaluation, BucketInProgress, BucketAccepted, BucketRejected, BucketOnHold}
)

// BucketsFor returns the closed bucket set of a screen in display order.
func BucketsFor(screen Screen) []Bucket {
	if screen == ScreenReview {
		return append([]Bucket(nil), reviewBuckets...)
	}
	return append([]Bucket(nil), finalBuckets...)
}

type BucketGroup struct {
	Bucket       Bucket               `json:"bucket"`
	Applications []models.Application `json:"applications"`
}

type Categories struct {
	Screen  Screen
	Order   []Bucket
	Buckets map[Bucket][]models.Application
}

func (c Categories) Groups() []BucketGroup {
	groups := make([]BucketGroup, 0, len(c.Order))
	for _, b := range c.Order {
		apps := c.Buckets[b]
		if apps == nil {
			apps = []models.Application{}
		}
		groups = append(groups, BucketGroup{Bucket: b, Applications: apps})
	}
	return groups
}

func (c Categories) Count(b Bucket) int {
	return len(c.Buckets[b])
}

// Categorize places every application in exactly one bucket of the screen's
// set and orders each bucket by applicant name under Korean collation.
func Categorize(apps []models.Application, overrides models.OverrideMap, screen Screen) Categories {
	order := BucketsFor(screen)
	buckets := make(map[Bucket][]models.Application, len(order))
	for _, b := range order {
		buckets[b] = []models.Application{}
	}

	for _, app := range apps {
		b := bucketOf(app, overrides, screen)
		buckets[b] = append(buckets[b], app)
	}

	col := collate.New(language.Korean)
	for _, b := range order {
		list := buckets[b]
		sort.SliceStable(list, func(i, j int) bool {
			if c := col.CompareString(list[i].Applicant.Name, list[j].Applicant.Name); c != 0 {
				return c < 0
			}
			return list[i].ID < list[j].ID
		})
	}

	return Categories{Screen: screen, Order: order, Buckets: buckets}
}

func bucketOf(app models.Application, overrides models.OverrideMap, screen Screen) Bucket {
	if screen != ScreenReview {
		switch ResolveStatus(overrides, app.Applicant.ID, app.Status, screen).Display {
		case models.DisplayPassed:
			return BucketPassed
		case models.DisplayFailed, models.DisplayUnqualified:
			return BucketFailed
		default:
			return BucketPending
		}
	}

	if o, ok := overrides[app.Applicant.ID]; ok && o.Status != "" {
		switch o.Status {
		case models.DisplayPassed:
			return BucketAccepted
		case models.DisplayFailed, models.DisplayUnqualified:
			return BucketRejected
		case models.DisplayPending:
			return BucketInProgress
		default:
			return BucketBeforeEvaluation
		}
	}

	switch app.Status {
	case models.RemoteInProgress:
		return BucketInProgress
	case models.RemoteAccepted:
		return BucketAccepted
	case models.RemoteRejected:
		return BucketRejected
	case models.RemoteOnHold:
		return BucketOnHold
	default:
		return BucketBeforeEvaluation
	}
}

// FilterByName keeps applications whose applicant name contains query, ignoring case.
func FilterByName(apps []models.Application, query string) []models.Application {
	query = strings.TrimSpace(query)
	if query == "" {
		return apps
	}
	q := strings.ToLower(query)
	out := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.Applicant.Name), q) {
			out = append(out, app)
		}
	}
	return out
}
