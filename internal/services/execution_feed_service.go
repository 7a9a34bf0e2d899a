package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

// Feed composition bounds and the detail-level transform limits.
const (
	feedHeadlineCount   = 1
	feedBodyCount       = 4
	feedMemoryQueryTopK = maxMemoryCandidates

	conciseSummaryLen = 120
	conciseWhyNowLen  = 90

	feedCacheTTL     = 30 * time.Second
	feedCacheCleanup = 2 * time.Minute
)

// ExecutionFeedService assembles the proactive execution feed: it gathers
// the owner's state into a context snapshot, runs the extractors and the
// prioritizer, schedules due times and renders the final items. Responses
// are briefly cached per owner and locale.
type ExecutionFeedService struct {
	engine   *MemoryEngine
	checkins *CheckinService
	notes    *NoteService
	controls *ControlsService
	survey   *SurveyService
	company  *CompanyStatusService

	localCache  *cache.Cache
	remoteCache *FeedCacheService

	metrics     *Metrics
	gateMinutes int
}

// NewExecutionFeedService wires the feed service. remoteCache may be nil
// when Redis is not configured; metrics may be nil in tests.
func NewExecutionFeedService(
	engine *MemoryEngine,
	checkins *CheckinService,
	notes *NoteService,
	controls *ControlsService,
	survey *SurveyService,
	company *CompanyStatusService,
	remoteCache *FeedCacheService,
	metrics *Metrics,
	gateMinutes int,
) *ExecutionFeedService {
	return &ExecutionFeedService{
		engine:      engine,
		checkins:    checkins,
		notes:       notes,
		controls:    controls,
		survey:      survey,
		company:     company,
		localCache:  cache.New(feedCacheTTL, feedCacheCleanup),
		remoteCache: remoteCache,
		metrics:     metrics,
		gateMinutes: gateMinutes,
	}
}

// BuildFeed assembles the owner's feed. Gated owners get an empty item
// list with the gate verdict; everything else is a best-effort compose
// over the current in-memory state.
func (s *ExecutionFeedService) BuildFeed(ctx context.Context, ownerID string, optIn bool, locale models.Locale) models.ProactiveFeedResponse {
	cacheKey := fmt.Sprintf("feed:%s:%s:%t", ownerID, locale, optIn)
	if cached, found := s.localCache.Get(cacheKey); found {
		return cached.(models.ProactiveFeedResponse)
	}
	if s.remoteCache != nil {
		if response, found := s.remoteCache.Get(ctx, cacheKey); found {
			s.localCache.Set(cacheKey, response, cache.DefaultExpiration)
			return response
		}
	}

	started := time.Now()
	feedCtx := s.assembleContext(ownerID, optIn, locale)
	response := ComposeFeed(feedCtx, s.gateMinutes)

	if !response.FeedReady {
		s.metrics.RecordFeedGateBlocked()
	}
	s.metrics.RecordFeedBuild(time.Since(started).Seconds())

	s.localCache.Set(cacheKey, response, cache.DefaultExpiration)
	if s.remoteCache != nil {
		s.remoteCache.Set(ctx, cacheKey, response, feedCacheTTL)
	}
	return response
}

// Invalidate drops the owner's cached feeds after a mutation.
func (s *ExecutionFeedService) Invalidate(ctx context.Context, ownerID string) {
	for _, locale := range []models.Locale{models.LocaleHebrew, models.LocaleEnglish, models.LocaleUnknown,
		models.LocaleArabic, models.LocaleRussian, models.LocaleFrench} {
		for _, optIn := range []bool{true, false} {
			key := fmt.Sprintf("feed:%s:%s:%t", ownerID, locale, optIn)
			s.localCache.Delete(key)
			if s.remoteCache != nil {
				s.remoteCache.Delete(ctx, key)
			}
		}
	}
}

// assembleContext snapshots everything the composer reads. The memory
// query is seeded from the latest check-in so retrieval favors memories
// related to what the owner is working on right now.
func (s *ExecutionFeedService) assembleContext(ownerID string, optIn bool, locale models.Locale) models.ExecutionFeedContext {
	controls := s.controls.Get(ownerID)
	latestCheckin := s.checkins.Latest(ownerID)

	query := ""
	if latestCheckin != nil {
		query = latestCheckin.DailyFocus + " " + latestCheckin.MidTermFocus + " " + latestCheckin.LongTermFocus
	}

	return models.ExecutionFeedContext{
		OwnerID:       ownerID,
		Locale:        locale,
		OptIn:         optIn,
		Controls:      controls,
		LatestCheckin: latestCheckin,
		Notes:         s.notes.Recent(ownerID, maxNoteCandidates),
		Survey:        s.survey.Get(ownerID),
		Memories:      s.engine.Retrieve(ownerID, optIn, query, feedMemoryQueryTopK),
		CompanyStatus: s.company.Current(),
		Now:           time.Now().UTC(),
	}
}

// ComposeFeed is the pure composition step: feed context in, rendered
// response out. Kept free of service state so tests can drive it with
// hand-built contexts.
func ComposeFeed(feedCtx models.ExecutionFeedContext, gateMinutes int) models.ProactiveFeedResponse {
	response := models.ProactiveFeedResponse{
		GeneratedAt:     feedCtx.Now,
		RequiredMinutes: gateMinutes,
		CompanyStatus:   feedCtx.CompanyStatus,
	}

	if reason, ready := feedGate(feedCtx.Survey, feedCtx.Now, gateMinutes, feedCtx.Locale); !ready {
		response.GateReason = reason
		return response
	}
	response.FeedReady = true

	ranked := Prioritize(ExtractCandidates(feedCtx))
	if len(ranked) == 0 {
		return response
	}

	cadence := feedCtx.Controls.Cadence
	used := make(map[string]bool, feedHeadlineCount+feedBodyCount)

	// Headline: the single top-ranked candidate, due on the daily offset.
	headline := ranked[0]
	used[headline.ID] = true
	response.Items = append(response.Items, renderItem(
		headline,
		localized(feedCtx.Locale, "הפעולה הבאה שלך עכשיו", "Your next action now"),
		DueAt(feedCtx.Now, cadence, models.HorizonDaily, 0),
		feedCtx,
		true,
	))

	// Body: one candidate per horizon bucket first, then backfill from
	// the overall ranking.
	var body []RankedCandidate
	for _, horizon := range []models.Horizon{models.HorizonDaily, models.HorizonMidTerm, models.HorizonLongTerm} {
		if len(body) >= feedBodyCount {
			break
		}
		for _, candidate := range ranked {
			if used[candidate.ID] || candidate.Horizon != horizon {
				continue
			}
			used[candidate.ID] = true
			body = append(body, candidate)
			break
		}
	}
	for _, candidate := range ranked {
		if len(body) >= feedBodyCount {
			break
		}
		if used[candidate.ID] {
			continue
		}
		used[candidate.ID] = true
		body = append(body, candidate)
	}

	for i, candidate := range body {
		response.Items = append(response.Items, renderItem(
			candidate,
			whyNowFor(candidate, feedCtx.Locale),
			DueAt(feedCtx.Now, cadence, candidate.Horizon, i+1),
			feedCtx,
			false,
		))
	}

	// Organizational awareness always trails the feed when enabled, even
	// if a company candidate already made the cut above.
	if feedCtx.Controls.IncludeCompanyAwareness {
		company := RankedCandidate{TaskCandidate: companyCandidate(feedCtx.CompanyStatus, feedCtx.Locale)}
		company.Score = PriorityScore(company.TaskCandidate)
		item := renderItem(
			company,
			localized(feedCtx.Locale, "שקיפות מלאה על מה שאנחנו בונים", "Full transparency on what we're building"),
			DueAt(feedCtx.Now, cadence, models.HorizonMidTerm, len(body)+1),
			feedCtx,
			false,
		)
		response.Items = append(response.Items, item)
	}

	applyDetailLevel(response.Items, feedCtx.Controls.DetailLevel, feedCtx.Locale)
	return response
}

// feedGate decides whether the feed is unlocked: the deep survey must be
// complete and enough process time must have elapsed since it started.
func feedGate(survey *models.SurveyState, now time.Time, gateMinutes int, locale models.Locale) (string, bool) {
	if !survey.Completed() {
		return localized(locale,
			"הפיד ייפתח אחרי השלמת סקר העומק",
			"Your feed unlocks after you complete the deep survey"), false
	}
	if survey.ElapsedMinutes(now) < gateMinutes {
		return localized(locale,
			"אנחנו עדיין מעבדים את התשובות שלך",
			"We're still processing your answers"), false
	}
	return "", true
}

// renderItem converts a ranked candidate into a feed item with its
// suggested actions.
func renderItem(candidate RankedCandidate, whyNow string, dueAt time.Time, feedCtx models.ExecutionFeedContext, headline bool) models.ProactiveFeedItem {
	item := models.ProactiveFeedItem{
		ID:       uuid.New().String(),
		Title:    candidate.Title,
		Summary:  candidate.Detail,
		WhyNow:   whyNow,
		Priority: priorityLabel(candidate.Score),
		Horizon:  candidate.Horizon,
		Source:   candidate.Source,
		Score:    candidate.Score,
		DueAt:    dueAt,
	}

	if feedCtx.Controls.IncludeReminderSuggestions {
		item.Actions = append(item.Actions, reminderAction(feedCtx.Controls, candidate.Title, dueAt, feedCtx.Locale))
		if headline {
			item.Actions = append(item.Actions, alarmAction(feedCtx.Controls, candidate.Title, dueAt, feedCtx.Locale))
		}
	}
	if candidate.Source == models.CandidateFromCompany {
		item.Actions = append(item.Actions, models.SuggestedAction{
			ActionType: "open_company_status",
			Label:      localized(feedCtx.Locale, "לסטטוס החברה", "Open company status"),
			Payload:    map[string]any{"screen": "company_status"},
		})
	}
	return item
}

func reminderAction(controls models.ExecutionControls, title string, dueAt time.Time, locale models.Locale) models.SuggestedAction {
	return models.SuggestedAction{
		ActionType: "create_reminder",
		Label:      localized(locale, "קבע תזכורת", "Set a reminder"),
		Payload: map[string]any{
			"app":        controls.RemindersApp,
			"title":      title,
			"due_at_utc": dueAt.UTC().Format(time.RFC3339),
		},
	}
}

func alarmAction(controls models.ExecutionControls, title string, dueAt time.Time, locale models.Locale) models.SuggestedAction {
	return models.SuggestedAction{
		ActionType: "create_alarm",
		Label:      localized(locale, "כוון שעון מעורר", "Set an alarm"),
		Payload: map[string]any{
			"app":        controls.AlarmsApp,
			"title":      title,
			"due_at_utc": dueAt.UTC().Format(time.RFC3339),
		},
	}
}

// whyNowFor explains the item's presence in the owner's language.
func whyNowFor(candidate RankedCandidate, locale models.Locale) string {
	switch candidate.Source {
	case models.CandidateFromCheckin:
		return localized(locale, "מגיע ישירות מהצ'ק-אין האחרון שלך", "Comes straight from your latest check-in")
	case models.CandidateFromNote:
		return localized(locale, "פתק שכתבת ועדיין רלוונטי", "A note you wrote that's still relevant")
	case models.CandidateFromSurvey:
		return localized(locale, "מבוסס על סקר העומק שלך", "Based on your deep survey")
	case models.CandidateFromMemory:
		return localized(locale, "מבוסס על מה שלמדנו עליך לאורך זמן", "Based on what we've learned about you over time")
	default:
		return localized(locale, "עדכון מהחברה", "An update from the company")
	}
}

// priorityLabel buckets the composite score for presentation.
func priorityLabel(score float64) string {
	switch {
	case score >= 0.9:
		return "high"
	case score >= 0.7:
		return "medium"
	default:
		return "low"
	}
}

// applyDetailLevel mutates items in place per the owner's preference:
// concise truncates, expanded appends a rationale suffix, standard leaves
// items as rendered.
func applyDetailLevel(items []models.ProactiveFeedItem, level models.DetailLevel, locale models.Locale) {
	switch level {
	case models.DetailConcise:
		for i := range items {
			items[i].Summary = truncateRunes(items[i].Summary, conciseSummaryLen)
			items[i].WhyNow = truncateRunes(items[i].WhyNow, conciseWhyNowLen)
		}
	case models.DetailExpanded:
		suffix := localized(locale,
			" · סדר העדיפויות נקבע לפי הצ'ק-אינים, הפתקים והסקר שלך.",
			" · Prioritized from your check-ins, notes and survey signals.")
		for i := range items {
			items[i].WhyNow += suffix
		}
	}
}
