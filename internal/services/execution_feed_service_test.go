package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

func readySurvey(now time.Time) *models.SurveyState {
	completed := now.Add(-25 * time.Minute)
	return &models.SurveyState{
		Answers:     map[string]string{},
		StartedAt:   now.Add(-30 * time.Minute),
		CompletedAt: &completed,
	}
}

func baseFeedContext(now time.Time) models.ExecutionFeedContext {
	return models.ExecutionFeedContext{
		OwnerID:       "user-1",
		Locale:        models.LocaleEnglish,
		OptIn:         true,
		Controls:      models.DefaultExecutionControls("user-1"),
		Survey:        readySurvey(now),
		CompanyStatus: models.DefaultCompanyStatus(),
		Now:           now,
	}
}

func TestFeedGateBlocksIncompleteSurvey(t *testing.T) {
	now := time.Now().UTC()

	feedCtx := baseFeedContext(now)
	feedCtx.Survey = &models.SurveyState{StartedAt: now.Add(-5 * time.Minute)}

	response := ComposeFeed(feedCtx, 20)
	if response.FeedReady {
		t.Error("feed must stay gated until the survey completes")
	}
	if response.GateReason == "" {
		t.Error("gated response must carry a reason")
	}
	if len(response.Items) != 0 {
		t.Errorf("gated feed must be empty, got %d items", len(response.Items))
	}
	if response.RequiredMinutes != 20 {
		t.Errorf("required minutes = %d, want 20", response.RequiredMinutes)
	}
}

func TestFeedGateBlocksUntilProcessTimeElapsed(t *testing.T) {
	now := time.Now().UTC()

	feedCtx := baseFeedContext(now)
	completed := now.Add(-2 * time.Minute)
	feedCtx.Survey = &models.SurveyState{
		StartedAt:   now.Add(-5 * time.Minute),
		CompletedAt: &completed,
	}

	response := ComposeFeed(feedCtx, 20)
	if response.FeedReady {
		t.Error("feed must stay gated until the process time elapses")
	}
}

func TestFeedHeadlineAndTrailingCompanyItem(t *testing.T) {
	now := time.Now().UTC()

	feedCtx := baseFeedContext(now)
	feedCtx.LatestCheckin = &models.CheckinRecord{DailyFocus: "Ship today's deliverable"}

	response := ComposeFeed(feedCtx, 20)
	if !response.FeedReady {
		t.Fatal("feed should be ready")
	}
	if len(response.Items) < 2 {
		t.Fatalf("expected headline plus company item, got %d items", len(response.Items))
	}

	headline := response.Items[0]
	if headline.Title != "Ship today's deliverable" {
		t.Errorf("headline = %q, want the check-in daily focus", headline.Title)
	}
	if want := now.Add(18 * time.Minute); !headline.DueAt.Equal(want) {
		t.Errorf("headline due = %v, want %v", headline.DueAt, want)
	}

	trailing := response.Items[len(response.Items)-1]
	if trailing.Source != models.CandidateFromCompany {
		t.Errorf("trailing item source = %s, want company_status", trailing.Source)
	}
	var hasOpenStatus bool
	for _, action := range trailing.Actions {
		if action.ActionType == "open_company_status" {
			hasOpenStatus = true
		}
	}
	if !hasOpenStatus {
		t.Error("trailing company item missing the open_company_status action")
	}
}

func TestFeedHeadlineCarriesReminderAndAlarm(t *testing.T) {
	now := time.Now().UTC()

	feedCtx := baseFeedContext(now)
	feedCtx.LatestCheckin = &models.CheckinRecord{DailyFocus: "Prep the investor call"}

	response := ComposeFeed(feedCtx, 20)
	headline := response.Items[0]

	var reminder, alarm bool
	for _, action := range headline.Actions {
		switch action.ActionType {
		case "create_reminder":
			reminder = true
			if action.Payload["app"] != "google_calendar" {
				t.Errorf("reminder app = %v", action.Payload["app"])
			}
			if _, err := time.Parse(time.RFC3339, action.Payload["due_at_utc"].(string)); err != nil {
				t.Errorf("due_at_utc not RFC3339: %v", err)
			}
		case "create_alarm":
			alarm = true
		}
	}
	if !reminder || !alarm {
		t.Errorf("headline actions incomplete: reminder=%t alarm=%t", reminder, alarm)
	}

	feedCtx.Controls.IncludeReminderSuggestions = false
	response = ComposeFeed(feedCtx, 20)
	for _, action := range response.Items[0].Actions {
		if action.ActionType == "create_reminder" || action.ActionType == "create_alarm" {
			t.Error("reminder suggestions disabled but actions still attached")
		}
	}
}

func TestFeedHorizonDiversity(t *testing.T) {
	now := time.Now().UTC()

	feedCtx := baseFeedContext(now)
	feedCtx.Controls.IncludeCompanyAwareness = false
	feedCtx.LatestCheckin = &models.CheckinRecord{
		DailyFocus:    "Finish the proposal",
		MidTermFocus:  "Line up the next retreat",
		LongTermFocus: "Map the five year arc",
	}

	response := ComposeFeed(feedCtx, 20)
	if len(response.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(response.Items))
	}

	// Headline takes the daily candidate; the body should then cover the
	// remaining horizons in bucket order.
	if response.Items[1].Horizon != models.HorizonMidTerm {
		t.Errorf("second item horizon = %s, want mid_term", response.Items[1].Horizon)
	}
	if response.Items[2].Horizon != models.HorizonLongTerm {
		t.Errorf("third item horizon = %s, want long_term", response.Items[2].Horizon)
	}
}

func TestFeedDetailLevels(t *testing.T) {
	now := time.Now().UTC()

	long := strings.Repeat("every word counts here ", 20)
	build := func(level models.DetailLevel) models.ProactiveFeedResponse {
		feedCtx := baseFeedContext(now)
		feedCtx.Controls.DetailLevel = level
		feedCtx.Notes = []models.NoteRecord{{Title: "Long note", Content: long}}
		return ComposeFeed(feedCtx, 20)
	}

	concise := build(models.DetailConcise)
	for _, item := range concise.Items {
		if n := len([]rune(item.Summary)); n > conciseSummaryLen {
			t.Errorf("concise summary length %d exceeds %d", n, conciseSummaryLen)
		}
		if n := len([]rune(item.WhyNow)); n > conciseWhyNowLen {
			t.Errorf("concise why_now length %d exceeds %d", n, conciseWhyNowLen)
		}
	}

	standard := build(models.DetailStandard)
	expanded := build(models.DetailExpanded)
	if len(standard.Items) == 0 || len(expanded.Items) == 0 {
		t.Fatal("expected items at every detail level")
	}
	if !strings.Contains(expanded.Items[0].WhyNow, "Prioritized from") {
		t.Errorf("expanded why_now missing suffix: %q", expanded.Items[0].WhyNow)
	}
	if strings.Contains(standard.Items[0].WhyNow, "Prioritized from") {
		t.Error("standard why_now should be unmodified")
	}
}

// End-to-end over the real services: ingest a goal memory, submit a
// check-in, build the feed.
func TestFeedEndToEnd(t *testing.T) {
	persist := NewPersistenceService(nil, nil)
	engine := NewMemoryEngine(persist, nil)
	checkins := NewCheckinService(persist)
	notes := NewNoteService(engine, persist)
	controls := NewControlsService(persist)
	survey := NewSurveyService(engine, persist)
	company := NewCompanyStatusService("")
	feed := NewExecutionFeedService(engine, checkins, notes, controls, survey, company, nil, nil, 0)

	ownerID := "user-e2e"

	if record := engine.Ingest(ownerID, true, models.MemoryIngestEvent{
		Type: "goal", Stability: "permanent", Source: "chat",
		Text: "Build a strong weekly execution cadence", Weight: 0.88,
	}); record == nil {
		t.Fatal("memory ingest failed")
	}

	if _, err := checkins.Record(ownerID, CheckinInput{DailyFocus: "Ship today's deliverable", EnergyLevel: 4}); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	if _, err := survey.Complete(ownerID, true); err != nil {
		t.Fatalf("survey completion failed: %v", err)
	}

	response := feed.BuildFeed(context.Background(), ownerID, true, models.LocaleEnglish)
	if !response.FeedReady {
		t.Fatalf("feed gated: %s", response.GateReason)
	}
	if len(response.Items) < 2 {
		t.Fatalf("expected at least 2 items, got %d", len(response.Items))
	}

	if response.Items[0].Title != "Ship today's deliverable" {
		t.Errorf("headline = %q, want the check-in next action", response.Items[0].Title)
	}

	var fromMemory bool
	for _, item := range response.Items[1:] {
		if item.Source == models.CandidateFromMemory &&
			strings.Contains(item.Title, "weekly execution cadence") {
			fromMemory = true
		}
	}
	if !fromMemory {
		t.Error("expected an item sourced from the ingested memory")
	}

	persist.Flush()
}
