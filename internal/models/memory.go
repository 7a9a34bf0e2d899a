package models

import (
	"strings"
	"time"
)

// MemoryType classifies what kind of signal a memory captures.
type MemoryType string

const (
	MemoryTypePreference MemoryType = "preference"
	MemoryTypeMood       MemoryType = "mood"
	MemoryTypeGoal       MemoryType = "goal"
	MemoryTypeConstraint MemoryType = "constraint"
	MemoryTypeInsight    MemoryType = "insight"
	MemoryTypeFriction   MemoryType = "friction"
	MemoryTypeIdentity   MemoryType = "identity"
	MemoryTypeTask       MemoryType = "task"
)

// MemoryStability controls whether a memory persists indefinitely or
// expires after a bounded window.
type MemoryStability string

const (
	StabilityPermanent MemoryStability = "permanent"
	StabilityTransient MemoryStability = "transient"
)

// MemorySource names the origin channel of an ingested memory.
type MemorySource string

const (
	SourceChat        MemorySource = "chat"
	SourceSurvey      MemorySource = "survey"
	SourceFeedback    MemorySource = "feedback"
	SourceNote        MemorySource = "note"
	SourceNoteRewrite MemorySource = "note_rewrite"
	SourceManual      MemorySource = "manual"
	SourceCheckin     MemorySource = "checkin"
	SourceSystem      MemorySource = "system"
)

// NormalizeMemoryType maps free-form input onto the closed enumeration.
// Unknown values default to insight rather than being rejected.
func NormalizeMemoryType(value string) MemoryType {
	switch normalized := MemoryType(strings.ToLower(strings.TrimSpace(value))); normalized {
	case MemoryTypePreference, MemoryTypeMood, MemoryTypeGoal, MemoryTypeConstraint,
		MemoryTypeInsight, MemoryTypeFriction, MemoryTypeIdentity, MemoryTypeTask:
		return normalized
	default:
		return MemoryTypeInsight
	}
}

// NormalizeStability defaults unknown values to transient so that malformed
// input can never create an immortal record by accident.
func NormalizeStability(value string) MemoryStability {
	if MemoryStability(strings.ToLower(strings.TrimSpace(value))) == StabilityPermanent {
		return StabilityPermanent
	}
	return StabilityTransient
}

// NormalizeMemorySource defaults unknown values to system.
func NormalizeMemorySource(value string) MemorySource {
	switch normalized := MemorySource(strings.ToLower(strings.TrimSpace(value))); normalized {
	case SourceChat, SourceSurvey, SourceFeedback, SourceNote,
		SourceNoteRewrite, SourceManual, SourceCheckin, SourceSystem:
		return normalized
	default:
		return SourceSystem
	}
}

// MemoryRecord is a single long-term memory owned by one user.
// There is no stored recency score: recency is always derived from
// UpdatedAt at read time.
type MemoryRecord struct {
	ID          string          `json:"id" bson:"recordId"`
	OwnerID     string          `json:"owner_id" bson:"ownerId"`
	Type        MemoryType      `json:"memory_type" bson:"memoryType"`
	Stability   MemoryStability `json:"stability" bson:"stability"`
	Source      MemorySource    `json:"source" bson:"source"`
	Text        string          `json:"text" bson:"text"`
	Weight      float64         `json:"weight" bson:"weight"`
	Tags        []string        `json:"tags,omitempty" bson:"tags,omitempty"`
	Fingerprint string          `json:"fingerprint" bson:"fingerprint"`
	CreatedAt   time.Time       `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updatedAt"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty" bson:"expiresAt,omitempty"`
}

// Expired reports whether the record's expiry has passed at the given instant.
// Permanent records never carry an expiry and therefore never expire.
func (r *MemoryRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// MemoryIngestEvent carries one raw behavioral signal into the memory engine.
// All enum-like fields are free-form strings; the engine normalizes them
// permissively instead of rejecting unknown values.
type MemoryIngestEvent struct {
	Type       string     `json:"memory_type"`
	Stability  string     `json:"stability"`
	Source     string     `json:"source"`
	Text       string     `json:"text"`
	Weight     float64    `json:"weight"`
	Tags       []string   `json:"tags,omitempty"`
	HappenedAt *time.Time `json:"happened_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// MemoryRetrievedItem is a memory plus its read-time scores for one query.
type MemoryRetrievedItem struct {
	Record         MemoryRecord `json:"record"`
	RecencyScore   float64      `json:"recency_score"`
	RelevanceScore float64      `json:"relevance_score"`
	FinalScore     float64      `json:"final_score"`
}

// MemoryClearScope selects which records a clear operation removes.
type MemoryClearScope string

const (
	ClearScopeAll       MemoryClearScope = "all"
	ClearScopePermanent MemoryClearScope = "permanent"
	ClearScopeTransient MemoryClearScope = "transient"
)

// NormalizeClearScope defaults unknown scopes to all.
func NormalizeClearScope(value string) MemoryClearScope {
	switch MemoryClearScope(strings.ToLower(strings.TrimSpace(value))) {
	case ClearScopePermanent:
		return ClearScopePermanent
	case ClearScopeTransient:
		return ClearScopeTransient
	default:
		return ClearScopeAll
	}
}

// MemoryImportItem is one entry of a bulk memory import request.
type MemoryImportItem struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
	Source     string   `json:"source,omitempty"`
	HappenedAt string   `json:"happened_at,omitempty"`
}
