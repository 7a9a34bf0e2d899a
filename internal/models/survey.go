package models

import "time"

// Survey answer keys the engine reacts to. Other answers are stored but
// only read by the survey flow itself.
const (
	SurveyKeyPrimaryGoal       = "primary_goal"
	SurveyKeyDailyPressure     = "daily_pressure"
	SurveyKeyCharityCommitment = "charity_commitment"
)

// SurveyState tracks one owner's progress through the adaptive deep
// survey. The execution feed stays gated until the survey is complete and
// enough process time has elapsed.
type SurveyState struct {
	OwnerID     string            `json:"owner_id" bson:"ownerId"`
	Answers     map[string]string `json:"answers" bson:"answers"`
	StartedAt   time.Time         `json:"started_at" bson:"startedAt"`
	CompletedAt *time.Time        `json:"completed_at,omitempty" bson:"completedAt,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updatedAt"`
}

// Completed reports whether the owner finished the survey.
func (s *SurveyState) Completed() bool {
	return s != nil && s.CompletedAt != nil
}

// ElapsedMinutes returns whole minutes of survey process time at now.
func (s *SurveyState) ElapsedMinutes(now time.Time) int {
	if s == nil || s.StartedAt.IsZero() {
		return 0
	}
	minutes := int(now.Sub(s.StartedAt).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}
