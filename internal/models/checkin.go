package models

import "time"

// MaxCheckinHistory bounds the per-owner check-in history to the most
// recent entries; older ones fall off the end.
const MaxCheckinHistory = 180

// CheckinRecord is one daily execution check-in. Records are append-only
// and immutable once created.
type CheckinRecord struct {
	ID            string    `json:"id" bson:"checkinId"`
	OwnerID       string    `json:"owner_id" bson:"ownerId"`
	DailyFocus    string    `json:"daily_focus" bson:"dailyFocus"`
	MidTermFocus  string    `json:"mid_term_focus,omitempty" bson:"midTermFocus,omitempty"`
	LongTermFocus string    `json:"long_term_focus,omitempty" bson:"longTermFocus,omitempty"`
	Blocker       string    `json:"blocker,omitempty" bson:"blocker,omitempty"`
	NextAction    string    `json:"next_action,omitempty" bson:"nextAction,omitempty"`
	EnergyLevel   int       `json:"energy_level" bson:"energyLevel"` // 1-5
	Mood          string    `json:"mood,omitempty" bson:"mood,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"createdAt"`
}
