package services

import (
	"time"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

// Scheduler offsets in minutes. Aggressive cadence front-loads due times;
// farther horizons push later; each subsequent item in the feed slides by
// a fixed step so reminders don't stack.
const (
	baseOffsetAggressive = 8
	baseOffsetSteady     = 18

	horizonOffsetDaily    = 0
	horizonOffsetMidTerm  = 50
	horizonOffsetLongTerm = 180
	horizonOffsetOther    = 25

	perItemOffsetStep = 12
)

// OffsetMinutes returns the due-time offset for the index-th feed item.
// Deterministic: the same inputs always produce the same offset.
func OffsetMinutes(cadence models.Cadence, horizon models.Horizon, index int) int {
	base := baseOffsetSteady
	if cadence == models.CadenceAggressive {
		base = baseOffsetAggressive
	}

	bonus := horizonOffsetOther
	switch horizon {
	case models.HorizonDaily:
		bonus = horizonOffsetDaily
	case models.HorizonMidTerm:
		bonus = horizonOffsetMidTerm
	case models.HorizonLongTerm:
		bonus = horizonOffsetLongTerm
	}

	if index < 0 {
		index = 0
	}
	return base + bonus + index*perItemOffsetStep
}

// DueAt returns the absolute due time for the index-th feed item.
func DueAt(now time.Time, cadence models.Cadence, horizon models.Horizon, index int) time.Time {
	return now.Add(time.Duration(OffsetMinutes(cadence, horizon, index)) * time.Minute)
}
