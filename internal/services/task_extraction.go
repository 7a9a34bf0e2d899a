package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

// Extractor tuning. Every extractor emits candidates with fixed or
// formula-derived urgency/impact/confidence; candidates with an empty
// title or detail after sanitization are dropped.
const (
	maxNoteCandidates   = 8
	maxMemoryCandidates = 12
)

// memoryCandidateSources is the allow-list of memory sources that may
// become feed candidates. System-generated memories stay internal.
var memoryCandidateSources = map[models.MemorySource]bool{
	models.SourceChat:        true,
	models.SourceSurvey:      true,
	models.SourceFeedback:    true,
	models.SourceNote:        true,
	models.SourceNoteRewrite: true,
	models.SourceManual:      true,
}

// ExtractCandidates runs every extractor over the feed context and
// returns the combined, unranked candidate list.
func ExtractCandidates(feedCtx models.ExecutionFeedContext) []models.TaskCandidate {
	var candidates []models.TaskCandidate
	candidates = append(candidates, extractFromCheckin(feedCtx.LatestCheckin, feedCtx.Locale)...)
	candidates = append(candidates, extractFromNotes(feedCtx.Notes, feedCtx.Locale)...)
	candidates = append(candidates, extractFromSurvey(feedCtx.Survey, feedCtx.Locale)...)
	candidates = append(candidates, extractFromMemories(feedCtx.Memories, feedCtx.Locale)...)
	if feedCtx.Controls.IncludeCompanyAwareness {
		candidates = append(candidates, companyCandidate(feedCtx.CompanyStatus, feedCtx.Locale))
	}
	return candidates
}

// extractFromCheckin always emits a daily candidate from the daily focus,
// plus mid and long term candidates when those fields were filled in.
func extractFromCheckin(checkin *models.CheckinRecord, locale models.Locale) []models.TaskCandidate {
	if checkin == nil {
		return nil
	}

	var candidates []models.TaskCandidate
	appendCandidate(&candidates, models.TaskCandidate{
		Title:      checkin.DailyFocus,
		Detail:     localized(locale, "הפעולה הבאה מהצ'ק-אין היומי שלך", "Your next action from today's check-in"),
		Source:     models.CandidateFromCheckin,
		Horizon:    models.HorizonDaily,
		Urgency:    0.96,
		Impact:     0.82,
		Confidence: 0.95,
	})

	if checkin.MidTermFocus != "" {
		appendCandidate(&candidates, models.TaskCandidate{
			Title:      checkin.MidTermFocus,
			Detail:     localized(locale, "המיקוד לטווח הבינוני מהצ'ק-אין", "Mid-term focus from your check-in"),
			Source:     models.CandidateFromCheckin,
			Horizon:    models.HorizonMidTerm,
			Urgency:    0.68,
			Impact:     0.86,
			Confidence: 0.90,
		})
	}
	if checkin.LongTermFocus != "" {
		appendCandidate(&candidates, models.TaskCandidate{
			Title:      checkin.LongTermFocus,
			Detail:     localized(locale, "הכיוון ארוך הטווח מהצ'ק-אין", "Long-term direction from your check-in"),
			Source:     models.CandidateFromCheckin,
			Horizon:    models.HorizonLongTerm,
			Urgency:    0.55,
			Impact:     0.92,
			Confidence: 0.88,
		})
	}
	return candidates
}

// extractFromNotes turns the most recent notes into candidates, inferring
// the horizon from keyword matching over the title and body.
func extractFromNotes(notes []models.NoteRecord, locale models.Locale) []models.TaskCandidate {
	var candidates []models.TaskCandidate
	for i, note := range notes {
		if i >= maxNoteCandidates {
			break
		}

		title := note.Title
		if title == "" {
			title = note.Content
		}
		appendCandidate(&candidates, models.TaskCandidate{
			Title:      title,
			Detail:     localized(locale, "מהפתקים שלך: "+note.Content, "From your notes: "+note.Content),
			Source:     models.CandidateFromNote,
			Horizon:    classifyHorizon(note.Title + " " + note.Content),
			Urgency:    0.72,
			Impact:     0.82,
			Confidence: 0.78,
		})
	}
	return candidates
}

// extractFromSurvey maps the high-value survey answers to fixed candidates.
func extractFromSurvey(survey *models.SurveyState, locale models.Locale) []models.TaskCandidate {
	if survey == nil {
		return nil
	}

	var candidates []models.TaskCandidate

	if goal := survey.Answers[models.SurveyKeyPrimaryGoal]; goal != "" {
		appendCandidate(&candidates, models.TaskCandidate{
			Title:      localized(locale, "התקדמות ליעד המרכזי: "+goal, "Advance your primary goal: "+goal),
			Detail:     localized(locale, "היעד המרכזי שהגדרת בסקר העומק", "The primary goal you set in the deep survey"),
			Source:     models.CandidateFromSurvey,
			Horizon:    models.HorizonLongTerm,
			Urgency:    0.60,
			Impact:     0.95,
			Confidence: 0.90,
		})
	}

	if pressure := survey.Answers[models.SurveyKeyDailyPressure]; pressure != "" {
		urgency := 0.72
		if strings.EqualFold(strings.TrimSpace(pressure), "high") {
			urgency = 0.95
		}
		appendCandidate(&candidates, models.TaskCandidate{
			Title:      localized(locale, "שגרת איזון ללחץ היומי", "A pressure-relief routine for your day"),
			Detail:     localized(locale, "דיווחת על רמת לחץ יומית: "+pressure, "You reported daily pressure: "+pressure),
			Source:     models.CandidateFromSurvey,
			Horizon:    models.HorizonDaily,
			Urgency:    urgency,
			Impact:     0.80,
			Confidence: 0.85,
		})
	}

	if charity := survey.Answers[models.SurveyKeyCharityCommitment]; charity != "" {
		appendCandidate(&candidates, models.TaskCandidate{
			Title:      localized(locale, "לקדם את מחויבות הנתינה שלך", "Move your charity commitment forward"),
			Detail:     localized(locale, "המחויבות שציינת: "+charity, "The commitment you named: "+charity),
			Source:     models.CandidateFromSurvey,
			Horizon:    models.HorizonLongTerm,
			Urgency:    0.48,
			Impact:     0.70,
			Confidence: 0.80,
		})
	}
	return candidates
}

// extractFromMemories converts the highest-ranked retrieved memories into
// candidates. Scores are derived from the retrieval scores so a strong
// memory stays strong in the feed.
func extractFromMemories(memories []models.MemoryRetrievedItem, locale models.Locale) []models.TaskCandidate {
	var candidates []models.TaskCandidate
	for _, item := range memories {
		if len(candidates) >= maxMemoryCandidates {
			break
		}
		if !memoryCandidateSources[item.Record.Source] {
			continue
		}

		appendCandidate(&candidates, models.TaskCandidate{
			Title:      item.Record.Text,
			Detail:     localized(locale, "מבוסס על מה שלמדנו עליך", "Based on what we've learned about you"),
			Source:     models.CandidateFromMemory,
			Horizon:    memoryHorizon(item.Record),
			Urgency:    clamp(item.FinalScore*0.9, 0.4, 0.98),
			Impact:     clamp(item.Record.Weight*0.9, 0.35, 0.95),
			Confidence: clamp(item.RelevanceScore*0.6+0.35, 0.35, 0.95),
		})
	}
	return candidates
}

// companyCandidate is the single organizational-awareness candidate.
func companyCandidate(status models.CompanyStatus, locale models.Locale) models.TaskCandidate {
	focus := strings.Join(status.CurrentFocus, ", ")
	upcoming := strings.Join(status.Upcoming, ", ")

	detailEn := "Phase: " + status.Phase
	detailHe := "שלב: " + status.Phase
	if focus != "" {
		detailEn += ". Focus: " + focus
		detailHe += ". מיקוד: " + focus
	}
	if upcoming != "" {
		detailEn += ". Upcoming: " + upcoming
		detailHe += ". בקרוב: " + upcoming
	}

	return models.TaskCandidate{
		ID:         uuid.New().String(),
		Title:      localized(locale, "מה קורה אצלנו ב-JourneyAtlas", "What's happening at JourneyAtlas"),
		Detail:     sanitizeLimitedText(localized(locale, detailHe, detailEn), maxMemoryTextLen),
		Source:     models.CandidateFromCompany,
		Horizon:    models.HorizonMidTerm,
		Urgency:    0.62,
		Impact:     0.84,
		Confidence: 0.93,
	}
}

// appendCandidate sanitizes and appends; empty title or detail drops the
// candidate.
func appendCandidate(candidates *[]models.TaskCandidate, candidate models.TaskCandidate) {
	candidate.Title = sanitizeLimitedText(candidate.Title, maxTitleLen)
	candidate.Detail = sanitizeLimitedText(candidate.Detail, maxMemoryTextLen)
	if candidate.Title == "" || candidate.Detail == "" {
		return
	}
	if candidate.ID == "" {
		candidate.ID = uuid.New().String()
	}
	*candidates = append(*candidates, candidate)
}

// memoryHorizon infers a horizon from the memory's type, falling back to
// keyword classification of the text.
func memoryHorizon(record models.MemoryRecord) models.Horizon {
	switch record.Type {
	case models.MemoryTypeGoal:
		return models.HorizonLongTerm
	case models.MemoryTypeFriction, models.MemoryTypeMood:
		return models.HorizonDaily
	default:
		return classifyHorizon(record.Text)
	}
}

var (
	dailyWords = []string{
		"today", "tonight", "tomorrow", "now", "urgent", "asap", "this morning",
		"היום", "הערב", "מחר", "עכשיו", "דחוף",
	}
	midTermWords = []string{
		"this week", "next week", "this month", "quarter", "milestone", "sprint",
		"השבוע", "החודש", "רבעון",
	}
	longTermWords = []string{
		"legacy", "mission", "vision", "year", "lifetime", "long term", "long-term",
		"מורשת", "חזון", "שנה", "טווח ארוך",
	}
)

// classifyHorizon picks a horizon by keyword matching. Temporal words win
// over medium-term words, which win over legacy/mission words; the
// default is daily so unclassified text surfaces sooner rather than
// later.
func classifyHorizon(text string) models.Horizon {
	lowered := strings.ToLower(text)
	for _, word := range dailyWords {
		if strings.Contains(lowered, word) {
			return models.HorizonDaily
		}
	}
	for _, word := range midTermWords {
		if strings.Contains(lowered, word) {
			return models.HorizonMidTerm
		}
	}
	for _, word := range longTermWords {
		if strings.Contains(lowered, word) {
			return models.HorizonLongTerm
		}
	}
	return models.HorizonDaily
}

// localized picks the Hebrew string for Hebrew locales and the English
// fallback for everything else.
func localized(locale models.Locale, hebrew, english string) string {
	if locale.IsHebrew() {
		return hebrew
	}
	return english
}
