package transform

import (
	"log/slog"
	"sort"
	"time"

	"eventbrite-extractor/models"
	"eventbrite-extractor/monitoring"
)

// sortKeyUndated sorts after every real date.
const sortKeyUndated = "9999-99-99"

// Pipeline turns raw events into render-ready ones. Stages run in a
// fixed order: drop cancelled, drop already-started, dedupe, enrich,
// sort. Given the same input and cutoff it always produces the same
// output.
type Pipeline struct {
	rules  []Rule
	cutoff time.Time
	logger *slog.Logger
	stats  *monitoring.Stats
}

type Option func(*Pipeline)

// WithRules replaces the built-in classification table.
func WithRules(rules []Rule) Option {
	return func(p *Pipeline) {
		if len(rules) > 0 {
			p.rules = rules
		}
	}
}

// WithCutoff fixes the "now" used by the past filter. Zero means
// midnight UTC of the day Run executes.
func WithCutoff(cutoff time.Time) Option {
	return func(p *Pipeline) { p.cutoff = cutoff }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithStats(stats *monitoring.Stats) Option {
	return func(p *Pipeline) { p.stats = stats }
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		rules:  DefaultRules,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every stage over events and returns the enriched,
// sorted result. The input slice is never modified.
func (p *Pipeline) Run(events []models.Event) []models.EnrichedEvent {
	p.logger.Info("transforming events", "count", len(events))

	kept := FilterCancelled(events)
	p.logRemoved("cancelled", monitoring.CounterCancelledRemoved, len(events)-len(kept))

	cutoff := p.cutoff
	if cutoff.IsZero() {
		// Midnight today, so events later today are still upcoming.
		cutoff = time.Now().UTC().Truncate(24 * time.Hour)
	}
	upcoming := FilterPast(kept, cutoff)
	p.logRemoved("already started", monitoring.CounterPastRemoved, len(kept)-len(upcoming))

	unique := Deduplicate(upcoming)
	p.logRemoved("duplicate", monitoring.CounterDuplicatesSkipped, len(upcoming)-len(unique))

	enriched := make([]models.EnrichedEvent, 0, len(unique))
	for _, ev := range unique {
		ev = NormalizePricing(ev)
		ev.Tags = CleanTags(ev.Tags)

		display, ok := FormatDisplayDate(ev)
		if !ok {
			p.logger.Warn("unparseable start date, keeping raw value",
				"event_id", ev.ID,
				"start_date", ev.StartDate,
			)
		}

		enriched = append(enriched, models.EnrichedEvent{
			Event:        ev,
			EventType:    Classify(p.rules, ev),
			DisplayDate:  display,
			DisplayPrice: DisplayPrice(ev),
			Location:     Location(ev),
		})
	}

	SortByStart(enriched)

	p.logger.Info("transform complete", "count", len(enriched))
	return enriched
}

func (p *Pipeline) logRemoved(reason, counter string, n int) {
	if n == 0 {
		return
	}
	p.stats.Add(counter, n)
	p.logger.Info("removed events", "reason", reason, "count", n)
}

// FilterCancelled drops events marked cancelled at the source.
func FilterCancelled(events []models.Event) []models.Event {
	kept := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if ev.IsCancelled {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

// FilterPast drops events whose start day is strictly before cutoff.
// Only the date is compared; times never move a listing across the
// boundary. Events with no date, or a date we cannot read, stay in:
// better to show a listing twice than silently hide it.
func FilterPast(events []models.Event, cutoff time.Time) []models.Event {
	kept := make([]models.Event, 0, len(events))
	for _, ev := range events {
		day, ok := parseStartDay(ev)
		if ok && day.Before(cutoff) {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

// Deduplicate keeps the first occurrence of each event id.
func Deduplicate(events []models.Event) []models.Event {
	seen := make(map[string]struct{}, len(events))
	kept := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if _, dup := seen[ev.ID]; dup {
			continue
		}
		seen[ev.ID] = struct{}{}
		kept = append(kept, ev)
	}
	return kept
}

// SortByStart orders events by start date then time. The sort is
// stable, so records sharing a start keep their relative order, and
// undated or unreadable starts land at the end.
func SortByStart(events []models.EnrichedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return sortKey(events[i].Event) < sortKey(events[j].Event)
	})
}

func sortKey(ev models.Event) string {
	if ev.StartDate == "" {
		return sortKeyUndated
	}
	if _, err := time.Parse("2006-01-02", ev.StartDate); err != nil {
		return sortKeyUndated + " " + ev.StartDate
	}
	return ev.StartDate + " " + ev.StartTime
}

func parseStartDay(ev models.Event) (time.Time, bool) {
	if ev.StartDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", ev.StartDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
