package services

import (
	"sort"
	"strings"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

// Priority formula weights. Impact dominates, then urgency, then
// confidence; near horizons get a small boost so today's work surfaces
// above equally-important long-range work.
const (
	priorityImpactFactor     = 0.45
	priorityUrgencyFactor    = 0.35
	priorityConfidenceFactor = 0.20

	boostDaily    = 0.12
	boostMidTerm  = 0.08
	boostLongTerm = 0.05
	boostOther    = 0.03

	maxPriorityScore = 1.25
)

// RankedCandidate pairs a candidate with its computed priority score.
type RankedCandidate struct {
	models.TaskCandidate
	Score float64
}

// PriorityScore computes the composite priority for one candidate.
func PriorityScore(candidate models.TaskCandidate) float64 {
	score := candidate.Impact*priorityImpactFactor +
		candidate.Urgency*priorityUrgencyFactor +
		candidate.Confidence*priorityConfidenceFactor +
		horizonBoost(candidate.Horizon)
	return clamp(score, 0, maxPriorityScore)
}

// Prioritize deduplicates candidates by normalized title, keeping the
// higher-scoring duplicate, and returns them sorted by score descending.
// Ties keep insertion order.
func Prioritize(candidates []models.TaskCandidate) []RankedCandidate {
	type slot struct {
		ranked RankedCandidate
		order  int
	}

	bestByTitle := make(map[string]*slot, len(candidates))
	order := make([]string, 0, len(candidates))

	for i, candidate := range candidates {
		key := strings.ToLower(strings.TrimSpace(candidate.Title))
		if key == "" {
			continue
		}

		score := PriorityScore(candidate)
		existing, ok := bestByTitle[key]
		if !ok {
			bestByTitle[key] = &slot{ranked: RankedCandidate{candidate, score}, order: i}
			order = append(order, key)
			continue
		}
		if score > existing.ranked.Score {
			existing.ranked = RankedCandidate{candidate, score}
		}
	}

	ranked := make([]RankedCandidate, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, bestByTitle[key].ranked)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func horizonBoost(horizon models.Horizon) float64 {
	switch horizon {
	case models.HorizonDaily:
		return boostDaily
	case models.HorizonMidTerm:
		return boostMidTerm
	case models.HorizonLongTerm:
		return boostLongTerm
	default:
		return boostOther
	}
}
