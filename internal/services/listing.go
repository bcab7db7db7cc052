package services

import (
	"alfredoptarigan/applicant-review/internal/models"
)

// ApplicantRow is one entry of a categorized applicant list.
type ApplicantRow struct {
	ApplicationID int64                `json:"applicationId"`
	Applicant     models.Applicant     `json:"applicant"`
	RemoteStatus  models.RemoteStatus  `json:"remoteStatus"`
	DisplayStatus models.DisplayStatus `json:"displayStatus"`
	Overridden    bool                 `json:"overridden"`
	Memo          string               `json:"memo,omitempty"`
	Score         float64              `json:"score"`
	Selected      bool                 `json:"selected"`
}

type RowGroup struct {
	Bucket Bucket         `json:"bucket"`
	Count  int            `json:"count"`
	Rows   []ApplicantRow `json:"rows"`
}

type ApplicantList struct {
	Screen Screen     `json:"screen"`
	Total  int        `json:"total"`
	Groups []RowGroup `json:"groups"`
}

// BuildApplicantList categorizes a session's applications for a screen,
// optionally narrowed by a name search.
func BuildApplicantList(snap *Snapshot, scores ScoreResolver, screen Screen, query string) ApplicantList {
	apps := FilterByName(snap.Posting.Applications, query)
	cats := Categorize(apps, snap.Overrides, screen)

	list := ApplicantList{Screen: screen, Total: len(apps)}
	for _, g := range cats.Groups() {
		group := RowGroup{Bucket: g.Bucket, Count: len(g.Applications), Rows: make([]ApplicantRow, 0, len(g.Applications))}
		for i := range g.Applications {
			app := &g.Applications[i]
			res := ResolveStatus(snap.Overrides, app.Applicant.ID, app.Status, screen)
			group.Rows = append(group.Rows, ApplicantRow{
				ApplicationID: app.ID,
				Applicant:     app.Applicant,
				RemoteStatus:  app.Status,
				DisplayStatus: res.Display,
				Overridden:    res.Overridden,
				Memo:          snap.Overrides[app.Applicant.ID].Memo,
				Score:         scores.ResolveTotalScore(app.Applicant.Name, snap.ResultFor(app)),
				Selected:      app.ID == snap.SelectedApplicationID,
			})
		}
		list.Groups = append(list.Groups, group)
	}
	return list
}
