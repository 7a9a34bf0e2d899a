package models

import (
	"strings"
	"time"
)

// Cadence controls how aggressively the scheduler front-loads due times.
type Cadence string

const (
	CadenceSteady     Cadence = "steady"
	CadenceAggressive Cadence = "aggressive"
)

// DetailLevel selects the presentation transform applied to feed items.
type DetailLevel string

const (
	DetailConcise  DetailLevel = "concise"
	DetailStandard DetailLevel = "standard"
	DetailExpanded DetailLevel = "expanded"
)

// NormalizeCadence defaults unknown values to steady.
func NormalizeCadence(value string) Cadence {
	if Cadence(strings.ToLower(strings.TrimSpace(value))) == CadenceAggressive {
		return CadenceAggressive
	}
	return CadenceSteady
}

// NormalizeDetailLevel defaults unknown values to standard.
func NormalizeDetailLevel(value string) DetailLevel {
	switch DetailLevel(strings.ToLower(strings.TrimSpace(value))) {
	case DetailConcise:
		return DetailConcise
	case DetailExpanded:
		return DetailExpanded
	default:
		return DetailStandard
	}
}

// ExecutionControls are the owner's feed preferences. Reminder and alarm
// app choices tell clients where suggested actions should land.
type ExecutionControls struct {
	OwnerID                    string      `json:"owner_id" bson:"ownerId"`
	Cadence                    Cadence     `json:"cadence" bson:"cadence"`
	DetailLevel                DetailLevel `json:"detail_level" bson:"detailLevel"`
	IncludeCompanyAwareness    bool        `json:"include_company_awareness" bson:"includeCompanyAwareness"`
	IncludeReminderSuggestions bool        `json:"include_reminder_suggestions" bson:"includeReminderSuggestions"`
	RemindersApp               string      `json:"reminders_app" bson:"remindersApp"`
	AlarmsApp                  string      `json:"alarms_app" bson:"alarmsApp"`
	UpdatedAt                  time.Time   `json:"updated_at" bson:"updatedAt"`
}

// DefaultExecutionControls returns the controls applied when an owner has
// never saved any.
func DefaultExecutionControls(ownerID string) ExecutionControls {
	return ExecutionControls{
		OwnerID:                    ownerID,
		Cadence:                    CadenceSteady,
		DetailLevel:                DetailStandard,
		IncludeCompanyAwareness:    true,
		IncludeReminderSuggestions: true,
		RemindersApp:               "google_calendar",
		AlarmsApp:                  "apple_clock",
	}
}
