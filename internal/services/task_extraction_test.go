package services

import (
	"strings"
	"testing"
	"time"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

func TestCheckinExtractor(t *testing.T) {
	checkin := &models.CheckinRecord{
		DailyFocus:    "Ship the landing page",
		MidTermFocus:  "Close the Q3 partnership",
		LongTermFocus: "Grow the advisory board",
	}

	candidates := extractFromCheckin(checkin, models.LocaleEnglish)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}

	daily := candidates[0]
	if daily.Horizon != models.HorizonDaily {
		t.Errorf("first candidate horizon = %s, want daily", daily.Horizon)
	}
	if daily.Urgency != 0.96 || daily.Impact != 0.82 || daily.Confidence != 0.95 {
		t.Errorf("daily scores = %v/%v/%v", daily.Urgency, daily.Impact, daily.Confidence)
	}
	if candidates[1].Horizon != models.HorizonMidTerm || candidates[2].Horizon != models.HorizonLongTerm {
		t.Errorf("optional horizons wrong: %s, %s", candidates[1].Horizon, candidates[2].Horizon)
	}
}

func TestCheckinExtractorOmitsEmptyOptionalFields(t *testing.T) {
	checkin := &models.CheckinRecord{DailyFocus: "Only today's work"}

	candidates := extractFromCheckin(checkin, models.LocaleEnglish)
	if len(candidates) != 1 {
		t.Fatalf("expected only the daily candidate, got %d", len(candidates))
	}

	if got := extractFromCheckin(nil, models.LocaleEnglish); got != nil {
		t.Errorf("nil check-in should produce no candidates, got %d", len(got))
	}
}

func TestNotesExtractorHorizonClassification(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		horizon models.Horizon
	}{
		{"temporal word", "Call the venue today", models.HorizonDaily},
		{"medium-term word", "Plan this month's milestone review", models.HorizonMidTerm},
		{"legacy word", "Draft the family legacy letter", models.HorizonLongTerm},
		{"no keywords defaults daily", "Random musing about nothing", models.HorizonDaily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := []models.NoteRecord{{Title: tt.title, Content: "details"}}
			candidates := extractFromNotes(notes, models.LocaleEnglish)
			if len(candidates) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(candidates))
			}
			if candidates[0].Horizon != tt.horizon {
				t.Errorf("horizon = %s, want %s", candidates[0].Horizon, tt.horizon)
			}
		})
	}
}

func TestNotesExtractorBoundsToEight(t *testing.T) {
	notes := make([]models.NoteRecord, 12)
	for i := range notes {
		notes[i] = models.NoteRecord{Title: "note " + string(rune('a'+i)), Content: "body"}
	}

	candidates := extractFromNotes(notes, models.LocaleEnglish)
	if len(candidates) != 8 {
		t.Errorf("expected 8 candidates, got %d", len(candidates))
	}
}

func TestSurveyExtractorPressureUrgency(t *testing.T) {
	tests := []struct {
		pressure string
		urgency  float64
	}{
		{"high", 0.95},
		{"medium", 0.72},
		{"low", 0.72},
	}

	for _, tt := range tests {
		t.Run(tt.pressure, func(t *testing.T) {
			survey := &models.SurveyState{Answers: map[string]string{
				models.SurveyKeyDailyPressure: tt.pressure,
			}}
			candidates := extractFromSurvey(survey, models.LocaleEnglish)
			if len(candidates) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(candidates))
			}
			if candidates[0].Urgency != tt.urgency {
				t.Errorf("urgency = %v, want %v", candidates[0].Urgency, tt.urgency)
			}
			if candidates[0].Horizon != models.HorizonDaily {
				t.Errorf("horizon = %s, want daily", candidates[0].Horizon)
			}
		})
	}
}

func TestSurveyExtractorAllAnswers(t *testing.T) {
	survey := &models.SurveyState{Answers: map[string]string{
		models.SurveyKeyPrimaryGoal:       "scale the business",
		models.SurveyKeyDailyPressure:     "high",
		models.SurveyKeyCharityCommitment: "monthly donations",
	}}

	candidates := extractFromSurvey(survey, models.LocaleEnglish)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}

	byHorizon := map[models.Horizon]int{}
	for _, c := range candidates {
		byHorizon[c.Horizon]++
	}
	if byHorizon[models.HorizonLongTerm] != 2 || byHorizon[models.HorizonDaily] != 1 {
		t.Errorf("horizon spread = %v", byHorizon)
	}
}

func TestMemoryExtractorSourceAllowList(t *testing.T) {
	now := time.Now().UTC()
	memories := []models.MemoryRetrievedItem{
		{
			Record: models.MemoryRecord{
				Text: "allowed chat memory", Source: models.SourceChat,
				Type: models.MemoryTypeGoal, Weight: 0.8, UpdatedAt: now,
			},
			FinalScore: 0.9, RelevanceScore: 0.5,
		},
		{
			Record: models.MemoryRecord{
				Text: "internal system memory", Source: models.SourceSystem,
				Type: models.MemoryTypeGoal, Weight: 0.8, UpdatedAt: now,
			},
			FinalScore: 0.9, RelevanceScore: 0.5,
		},
	}

	candidates := extractFromMemories(memories, models.LocaleEnglish)
	if len(candidates) != 1 {
		t.Fatalf("expected only the allow-listed memory, got %d candidates", len(candidates))
	}
	if candidates[0].Title != "allowed chat memory" {
		t.Errorf("unexpected candidate: %q", candidates[0].Title)
	}
}

func TestMemoryExtractorScoreDerivation(t *testing.T) {
	item := models.MemoryRetrievedItem{
		Record: models.MemoryRecord{
			Text: "pursue the flagship goal", Source: models.SourceManual,
			Type: models.MemoryTypeGoal, Weight: 0.9,
		},
		FinalScore:     0.8,
		RelevanceScore: 0.5,
	}

	candidates := extractFromMemories([]models.MemoryRetrievedItem{item}, models.LocaleEnglish)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if want := 0.8 * 0.9; !near(c.Urgency, want) {
		t.Errorf("urgency = %v, want %v", c.Urgency, want)
	}
	if want := 0.9 * 0.9; !near(c.Impact, want) {
		t.Errorf("impact = %v, want %v", c.Impact, want)
	}
	if want := 0.5*0.6 + 0.35; !near(c.Confidence, want) {
		t.Errorf("confidence = %v, want %v", c.Confidence, want)
	}
	if c.Horizon != models.HorizonLongTerm {
		t.Errorf("goal memory horizon = %s, want long_term", c.Horizon)
	}
}

func TestCompanyCandidate(t *testing.T) {
	status := models.CompanyStatus{
		Phase:        "scaling",
		CurrentFocus: []string{"Fleet ops"},
		Upcoming:     []string{"Winter routes"},
	}

	candidate := companyCandidate(status, models.LocaleEnglish)
	if candidate.Horizon != models.HorizonMidTerm {
		t.Errorf("horizon = %s, want mid_term", candidate.Horizon)
	}
	if candidate.Urgency != 0.62 || candidate.Impact != 0.84 || candidate.Confidence != 0.93 {
		t.Errorf("scores = %v/%v/%v", candidate.Urgency, candidate.Impact, candidate.Confidence)
	}
	if !strings.Contains(candidate.Detail, "scaling") || !strings.Contains(candidate.Detail, "Fleet ops") {
		t.Errorf("detail missing status content: %q", candidate.Detail)
	}
}

func TestHebrewLocaleSelectsHebrewText(t *testing.T) {
	checkin := &models.CheckinRecord{DailyFocus: "לסגור את המצגת"}

	english := extractFromCheckin(checkin, models.LocaleEnglish)
	hebrew := extractFromCheckin(checkin, models.LocaleHebrew)
	if len(english) != 1 || len(hebrew) != 1 {
		t.Fatal("expected one candidate per locale")
	}
	if english[0].Detail == hebrew[0].Detail {
		t.Errorf("locale did not change detail text: %q", hebrew[0].Detail)
	}
}

func near(got, want float64) bool {
	diff := got - want
	return diff < 1e-9 && diff > -1e-9
}
