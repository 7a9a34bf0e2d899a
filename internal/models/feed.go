package models

import "time"

// SuggestedAction is a client-executable action attached to a feed item,
// e.g. creating a reminder or opening the company status screen.
type SuggestedAction struct {
	ActionType string         `json:"action_type"`
	Label      string         `json:"label"`
	Payload    map[string]any `json:"payload"`
}

// ProactiveFeedItem is one rendered entry of the execution feed.
type ProactiveFeedItem struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Summary  string            `json:"summary"`
	WhyNow   string            `json:"why_now"`
	Priority string            `json:"priority"`
	Horizon  Horizon           `json:"horizon"`
	Source   CandidateSource   `json:"source"`
	Score    float64           `json:"score"`
	DueAt    time.Time         `json:"due_at"`
	Actions  []SuggestedAction `json:"actions"`
}

// ProactiveFeedResponse is the full feed payload, including the survey
// gate verdict and the current company status.
type ProactiveFeedResponse struct {
	GeneratedAt     time.Time           `json:"generated_at"`
	Items           []ProactiveFeedItem `json:"items"`
	FeedReady       bool                `json:"feed_ready"`
	GateReason      string              `json:"gate_reason,omitempty"`
	RequiredMinutes int                 `json:"required_minutes"`
	CompanyStatus   CompanyStatus       `json:"company_status"`
}

// ExecutionFeedContext bundles everything the feed composer reads. It is
// assembled per request from the owner's collections; the composer itself
// stays a pure function of this snapshot.
type ExecutionFeedContext struct {
	OwnerID       string
	Locale        Locale
	OptIn         bool
	Controls      ExecutionControls
	LatestCheckin *CheckinRecord
	Notes         []NoteRecord
	Survey        *SurveyState
	Memories      []MemoryRetrievedItem
	CompanyStatus CompanyStatus
	Now           time.Time
}
