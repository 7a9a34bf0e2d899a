package models

import "strings"

// Horizon is the time-scale a task candidate addresses.
type Horizon string

const (
	HorizonDaily    Horizon = "daily"
	HorizonMidTerm  Horizon = "mid_term"
	HorizonLongTerm Horizon = "long_term"
	HorizonOther    Horizon = "other"
)

// NormalizeHorizon defaults unknown values to other.
func NormalizeHorizon(value string) Horizon {
	switch Horizon(strings.ToLower(strings.TrimSpace(value))) {
	case HorizonDaily:
		return HorizonDaily
	case HorizonMidTerm:
		return HorizonMidTerm
	case HorizonLongTerm:
		return HorizonLongTerm
	default:
		return HorizonOther
	}
}

// CandidateSource names which extractor produced a candidate.
type CandidateSource string

const (
	CandidateFromCheckin CandidateSource = "checkin"
	CandidateFromNote    CandidateSource = "note"
	CandidateFromSurvey  CandidateSource = "survey"
	CandidateFromMemory  CandidateSource = "memory"
	CandidateFromCompany CandidateSource = "company_status"
)

// TaskCandidate is an ephemeral, request-scoped suggestion for the
// execution feed. Candidates are never persisted; they are recomputed on
// every feed request.
type TaskCandidate struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Detail     string          `json:"detail"`
	Source     CandidateSource `json:"source"`
	Horizon    Horizon         `json:"horizon"`
	Urgency    float64         `json:"urgency"`
	Impact     float64         `json:"impact"`
	Confidence float64         `json:"confidence"`
}
