package domain

import (
	"sort"
	"strings"
	"time"
)

// Score bounds for a staff rating
const (
	MinScore = -5
	MaxScore = 5
)

// Rating represents one user's score for a staff member
type Rating struct {
	StaffID   string    `json:"staff_id"`
	RaterID   string    `json:"rater_id"`
	Score     int       `json:"score"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRating validates and creates a rating
func NewRating(staffID, raterID string, score int, reason string, now time.Time) (*Rating, error) {
	if strings.TrimSpace(staffID) == "" {
		return nil, EmptyField("staff_id")
	}
	if score < MinScore || score > MaxScore {
		return nil, InvalidScore(score, MinScore, MaxScore)
	}
	if staffID == raterID {
		return nil, SelfRating(raterID)
	}
	return &Rating{
		StaffID:   staffID,
		RaterID:   raterID,
		Score:     score,
		Reason:    strings.TrimSpace(reason),
		Timestamp: now,
	}, nil
}

// StaffAverage is the aggregate of every rating a staff member received
type StaffAverage struct {
	StaffID string  `json:"staff_id"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AverageFor returns the mean score of staffID. ok is false when the staff
// member has no ratings.
func AverageFor(ratings []Rating, staffID string) (avg StaffAverage, ok bool) {
	sum := 0
	avg.StaffID = staffID
	for _, r := range ratings {
		if r.StaffID == staffID {
			sum += r.Score
			avg.Count++
		}
	}
	if avg.Count == 0 {
		return avg, false
	}
	avg.Average = float64(sum) / float64(avg.Count)
	return avg, true
}

// Rank orders staff by average desc, then rating count desc, then staff id
// asc. topN <= 0 returns everyone.
func Rank(ratings []Rating, topN int) []StaffAverage {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range ratings {
		sums[r.StaffID] += r.Score
		counts[r.StaffID]++
	}

	ranking := make([]StaffAverage, 0, len(counts))
	for staffID, count := range counts {
		ranking = append(ranking, StaffAverage{
			StaffID: staffID,
			Average: float64(sums[staffID]) / float64(count),
			Count:   count,
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		a, b := ranking[i], ranking[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.StaffID < b.StaffID
	})

	if topN > 0 && len(ranking) > topN {
		ranking = ranking[:topN]
	}
	return ranking
}

// LastRatingBy returns the most recent rating raterID gave staffID
func LastRatingBy(ratings []Rating, staffID, raterID string) (Rating, bool) {
	var last Rating
	found := false
	for _, r := range ratings {
		if r.StaffID != staffID || r.RaterID != raterID {
			continue
		}
		if !found || r.Timestamp.After(last.Timestamp) {
			last = r
			found = true
		}
	}
	return last, found
}
