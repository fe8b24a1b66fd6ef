package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"eventbrite-extractor/internal/status"
	"eventbrite-extractor/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(
	template.New("render").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templatesFS, "templates/*.html"),
)

// DefaultTemplate is the full newsletter layout. "digest" is the
// compact alternative.
const DefaultTemplate = "newsletter"

// typeOrder is the display order for event groups. Types not listed
// here render after Event, alphabetically.
var typeOrder = []string{
	"Conference", "Workshop", "Hackathon", "Course",
	"Talk", "Webinar", "Meetup", "Event",
}

// headlineTypes get first crack at the featured slot.
var headlineTypes = map[string]struct{}{
	"Conference": {},
	"Workshop":   {},
	"Hackathon":  {},
}

type Options struct {
	Title    string
	Subtitle string

	// Intro overrides the synthesized opening line.
	Intro string

	// Template picks the layout by name. Empty means DefaultTemplate.
	Template string

	// Now is the timestamp shown on the "generated" line. Zero means
	// wall clock.
	Now time.Time
}

// Group is one rendered section of events sharing a type.
type Group struct {
	Type    string
	Heading string
	Events  []models.EnrichedEvent
}

type newsletterData struct {
	Title     string
	Subtitle  string
	Intro     string
	Generated string
	Total     int
	Featured  *models.EnrichedEvent
	Groups    []Group
}

// Render writes the chosen layout for events to w. Events are expected
// to arrive already sorted; grouping preserves their relative order.
func Render(w io.Writer, events []models.EnrichedEvent, opts Options) error {
	name := opts.Template
	if name == "" {
		name = DefaultTemplate
	}
	tmpl := templates.Lookup(name + ".html")
	if tmpl == nil {
		return fmt.Errorf("render: %w: %q", status.ErrUnknownTemplate, name)
	}

	title := opts.Title
	if title == "" {
		title = "AI in NYC Weekly"
	}
	subtitle := opts.Subtitle
	if subtitle == "" {
		subtitle = "Your curated guide to AI events across New York City"
	}
	intro := opts.Intro
	if intro == "" {
		intro = synthesizeIntro(events)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	data := newsletterData{
		Title:     title,
		Subtitle:  subtitle,
		Intro:     intro,
		Generated: now.Format("January 2, 2006"),
		Total:     len(events),
		Featured:  PickFeatured(events),
		Groups:    GroupByType(events),
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render: template.Execute: %w", err)
	}
	return nil
}

// ToFile renders to path, creating parent directories as needed.
func ToFile(path string, events []models.EnrichedEvent, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render: os.MkdirAll: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: os.Create: %w", err)
	}
	defer f.Close()

	return Render(f, events, opts)
}

// GroupByType buckets events by type in display order. Unknown types
// come after the known ones, alphabetically, so a custom rules file
// still renders somewhere sensible.
func GroupByType(events []models.EnrichedEvent) []Group {
	buckets := make(map[string][]models.EnrichedEvent)
	for _, ev := range events {
		buckets[ev.EventType] = append(buckets[ev.EventType], ev)
	}

	known := make(map[string]struct{}, len(typeOrder))
	groups := make([]Group, 0, len(buckets))
	for _, typ := range typeOrder {
		known[typ] = struct{}{}
		if evs, ok := buckets[typ]; ok {
			groups = append(groups, newGroup(typ, evs))
		}
	}

	var leftover []string
	for typ := range buckets {
		if _, ok := known[typ]; !ok {
			leftover = append(leftover, typ)
		}
	}
	sort.Strings(leftover)
	for _, typ := range leftover {
		groups = append(groups, newGroup(typ, buckets[typ]))
	}

	return groups
}

func newGroup(typ string, events []models.EnrichedEvent) Group {
	return Group{
		Type:    typ,
		Heading: typ + "s",
		Events:  events,
	}
}

// PickFeatured chooses the event spotlighted at the top: headline
// types beat the rest, free beats paid, having a summary beats not,
// and the earliest start breaks remaining ties.
func PickFeatured(events []models.EnrichedEvent) *models.EnrichedEvent {
	if len(events) == 0 {
		return nil
	}

	best := 0
	for i := 1; i < len(events); i++ {
		if featuredLess(events[i], events[best]) {
			best = i
		}
	}

	featured := events[best]
	return &featured
}

func featuredLess(a, b models.EnrichedEvent) bool {
	ar, br := featuredRank(a), featuredRank(b)
	if ar != br {
		return ar < br
	}
	return startKey(a) < startKey(b)
}

func featuredRank(ev models.EnrichedEvent) int {
	rank := 0
	if _, ok := headlineTypes[ev.EventType]; !ok {
		rank += 4
	}
	if !ev.IsFree {
		rank += 2
	}
	if ev.Summary == "" {
		rank++
	}
	return rank
}

func startKey(ev models.EnrichedEvent) string {
	if ev.StartDate == "" {
		return "9999-99-99"
	}
	return ev.StartDate + " " + ev.StartTime
}

// synthesizeIntro writes the opening line from what made the cut.
func synthesizeIntro(events []models.EnrichedEvent) string {
	if len(events) == 0 {
		return "No upcoming events made the cut this time. Check back soon."
	}

	free := 0
	for _, ev := range events {
		if ev.IsFree {
			free++
		}
	}

	var typeNames []string
	for _, g := range GroupByType(events) {
		typeNames = append(typeNames, g.Heading)
	}

	noun := "events"
	if len(events) == 1 {
		noun = "event"
	}

	intro := fmt.Sprintf("We found %d upcoming %s across %s", len(events), noun, joinNatural(typeNames))
	switch free {
	case 0:
	case 1:
		intro += ", including 1 that is free to attend"
	default:
		intro += fmt.Sprintf(", including %d that are free to attend", free)
	}
	return intro + "."
}

func joinNatural(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
