package services

import (
	"math"
)

type ScoreBand struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Count int     `json:"count"`
}

type Statistics struct {
	JobPostingID   int64          `json:"jobPostingId"`
	Total          int            `json:"total"`
	Final          map[Bucket]int `json:"final"`
	Review         map[Bucket]int `json:"review"`
	Evaluated      int            `json:"evaluated"`
	PassRate       float64        `json:"passRate"`
	CompletionRate float64        `json:"completionRate"`
	AverageScore   float64        `json:"averageScore"`
	MinScore       float64        `json:"minScore"`
	MaxScore       float64        `json:"maxScore"`
	Distribution   []ScoreBand    `json:"distribution"`
}

// scoreBands are checked top-down; the first band whose minimum is reached wins.
var scoreBands = []ScoreBand{
	{Label: "70+", Min: 70},
	{Label: "60-69", Min: 60},
	{Label: "50-59", Min: 50},
	{Label: "40-49", Min: 40},
	{Label: "0-39", Min: math.Inf(-1)},
}

// ComputeStatistics summarizes a session. Rates are percentages rounded to
// one decimal place.
func ComputeStatistics(snap *Snapshot, scores ScoreResolver) Statistics {
	apps := snap.Posting.Applications
	final := Categorize(apps, snap.Overrides, ScreenStatistics)
	review := Categorize(apps, snap.Overrides, ScreenReview)

	stats := Statistics{
		JobPostingID: snap.JobPostingID,
		Total:        len(apps),
		Final:        make(map[Bucket]int, len(final.Order)),
		Review:       make(map[Bucket]int, len(review.Order)),
		Distribution: make([]ScoreBand, len(scoreBands)),
	}
	copy(stats.Distribution, scoreBands)
	stats.Distribution[len(scoreBands)-1].Min = 0

	for _, b := range final.Order {
		stats.Final[b] = final.Count(b)
	}
	for _, b := range review.Order {
		stats.Review[b] = review.Count(b)
	}
	stats.Evaluated = final.Count(BucketPassed) + final.Count(BucketFailed)

	if len(apps) == 0 {
		return stats
	}

	stats.PassRate = percent(final.Count(BucketPassed), len(apps))
	stats.CompletionRate = percent(stats.Evaluated, len(apps))

	var sum float64
	stats.MinScore = math.Inf(1)
	stats.MaxScore = math.Inf(-1)
	for i := range apps {
		score := scores.ResolveTotalScore(apps[i].Applicant.Name, snap.ResultFor(&apps[i]))
		sum += score
		stats.MinScore = math.Min(stats.MinScore, score)
		stats.MaxScore = math.Max(stats.MaxScore, score)
		for j, band := range scoreBands {
			if score >= band.Min {
				stats.Distribution[j].Count++
				break
			}
		}
	}
	stats.AverageScore = math.Round(sum/float64(len(apps))*10) / 10

	return stats
}

func percent(n, total int) float64 {
	return math.Round(float64(n)/float64(total)*1000) / 10
}
