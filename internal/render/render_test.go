package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbrite-extractor/internal/status"
	"eventbrite-extractor/models"
)

func enriched(id, title, eventType, date string, free bool) models.EnrichedEvent {
	ev := models.EnrichedEvent{
		Event: models.Event{
			ID:        id,
			Title:     title,
			StartDate: date,
			IsFree:    free,
			URL:       "https://example.com/e/" + id,
		},
		EventType:    eventType,
		DisplayPrice: "Paid",
		Location:     "Location TBD",
	}
	if free {
		ev.DisplayPrice = "Free"
	}
	if date != "" {
		ev.DisplayDate = date
	}
	return ev
}

func TestGroupByType_PreferredOrderThenAlphabetical(t *testing.T) {
	events := []models.EnrichedEvent{
		enriched("e1", "Gala", "Event", "2026-06-01", false),
		enriched("e2", "Panel Night", "Seminar", "2026-06-02", false),
		enriched("e3", "Go Meetup", "Meetup", "2026-06-03", true),
		enriched("e4", "AI Conf", "Conference", "2026-06-04", false),
		enriched("e5", "Warehouse Rave", "Rave", "2026-06-05", false),
		enriched("e6", "LLM Workshop", "Workshop", "2026-06-06", true),
	}

	groups := GroupByType(events)

	var order []string
	for _, g := range groups {
		order = append(order, g.Type)
	}

	// Known types in display order, then unknown ones alphabetically.
	assert.Equal(t, []string{"Conference", "Workshop", "Meetup", "Event", "Rave", "Seminar"}, order)
}

func TestGroupByType_PluralizesHeadings(t *testing.T) {
	groups := GroupByType([]models.EnrichedEvent{
		enriched("e1", "AI Conf", "Conference", "2026-06-01", false),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, "Conferences", groups[0].Heading)
}

func TestGroupByType_KeepsEventOrderWithinGroup(t *testing.T) {
	events := []models.EnrichedEvent{
		enriched("early", "First Meetup", "Meetup", "2026-06-01", false),
		enriched("late", "Second Meetup", "Meetup", "2026-06-02", false),
	}

	groups := GroupByType(events)

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Events, 2)
	assert.Equal(t, "early", groups[0].Events[0].ID)
	assert.Equal(t, "late", groups[0].Events[1].ID)
}

func TestPickFeatured_PrefersFreeHeadlineTypes(t *testing.T) {
	paidConf := enriched("conf", "AI Conf", "Conference", "2026-06-01", false)
	freeMeetup := enriched("meetup", "Free Meetup", "Meetup", "2026-06-02", true)
	freeWorkshop := enriched("ws", "Free Workshop", "Workshop", "2026-06-03", true)

	got := PickFeatured([]models.EnrichedEvent{paidConf, freeMeetup, freeWorkshop})

	require.NotNil(t, got)
	assert.Equal(t, "ws", got.ID)
}

func TestPickFeatured_HeadlineTypeBeatsFreeOther(t *testing.T) {
	paidConf := enriched("conf", "AI Conf", "Conference", "2026-06-05", false)
	freeMeetup := enriched("meetup", "Free Meetup", "Meetup", "2026-06-01", true)

	got := PickFeatured([]models.EnrichedEvent{freeMeetup, paidConf})

	require.NotNil(t, got)
	assert.Equal(t, "conf", got.ID)
}

func TestPickFeatured_SummaryThenSoonestBreakTies(t *testing.T) {
	bare := enriched("bare", "Conf A", "Conference", "2026-06-01", false)
	withSummary := enriched("summary", "Conf B", "Conference", "2026-06-03", false)
	withSummary.Summary = "Worth reading about"

	got := PickFeatured([]models.EnrichedEvent{bare, withSummary})
	require.NotNil(t, got)
	assert.Equal(t, "summary", got.ID)

	early := enriched("early", "Conf C", "Conference", "2026-06-01", false)
	late := enriched("late", "Conf D", "Conference", "2026-06-02", false)

	got = PickFeatured([]models.EnrichedEvent{late, early})
	require.NotNil(t, got)
	assert.Equal(t, "early", got.ID)
}

func TestPickFeatured_Empty(t *testing.T) {
	assert.Nil(t, PickFeatured(nil))
}

func TestRender_Newsletter(t *testing.T) {
	events := []models.EnrichedEvent{
		enriched("e1", "AI Conference NYC", "Conference", "2026-06-01", false),
		enriched("e2", "Community Meetup", "Meetup", "2026-06-02", true),
	}

	var sb strings.Builder
	err := Render(&sb, events, Options{
		Title:    "AI in NYC Weekly",
		Subtitle: "Hand-picked AI events",
		Now:      time.Date(2026, 5, 28, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	html := sb.String()
	assert.Contains(t, html, "AI in NYC Weekly")
	assert.Contains(t, html, "Hand-picked AI events")
	assert.Contains(t, html, "May 28, 2026")
	assert.Contains(t, html, "AI Conference NYC")
	assert.Contains(t, html, "Conferences")
	assert.Contains(t, html, "Meetups")
	assert.Contains(t, html, "FEATURED")
	assert.Contains(t, html, "https://example.com/e/e1")
	assert.Contains(t, html, "Free")
}

func TestRender_SynthesizedIntro(t *testing.T) {
	events := []models.EnrichedEvent{
		enriched("e1", "AI Conf", "Conference", "2026-06-01", false),
		enriched("e2", "Go Meetup", "Meetup", "2026-06-02", true),
		enriched("e3", "ML Meetup", "Meetup", "2026-06-03", true),
	}

	var sb strings.Builder
	require.NoError(t, Render(&sb, events, Options{}))

	assert.Contains(t, sb.String(), "We found 3 upcoming events across Conferences and Meetups, including 2 that are free to attend.")
}

func TestRender_CustomIntroWins(t *testing.T) {
	events := []models.EnrichedEvent{
		enriched("e1", "AI Conf", "Conference", "2026-06-01", false),
	}

	var sb strings.Builder
	require.NoError(t, Render(&sb, events, Options{Intro: "Hello from the editors."}))

	assert.Contains(t, sb.String(), "Hello from the editors.")
	assert.NotContains(t, sb.String(), "We found")
}

func TestRender_EscapesUntrustedText(t *testing.T) {
	events := []models.EnrichedEvent{
		enriched("e1", `<script>alert("x")</script>`, "Event", "2026-06-01", false),
	}

	var sb strings.Builder
	require.NoError(t, Render(&sb, events, Options{}))

	html := sb.String()
	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRender_DigestTemplate(t *testing.T) {
	events := []models.EnrichedEvent{
		enriched("e1", "AI Conf", "Conference", "2026-06-01", false),
	}

	var sb strings.Builder
	require.NoError(t, Render(&sb, events, Options{Template: "digest"}))

	html := sb.String()
	assert.Contains(t, html, "AI Conf")
	assert.NotContains(t, html, "FEATURED")
}

func TestRender_UnknownTemplate(t *testing.T) {
	var sb strings.Builder
	err := Render(&sb, nil, Options{Template: "glossy-print"})

	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrUnknownTemplate)
	assert.Empty(t, sb.String())
}

func TestRender_NoEvents(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Render(&sb, nil, Options{}))

	assert.Contains(t, sb.String(), "No upcoming events made the cut")
}

func TestToFile_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "newsletter.html")

	events := []models.EnrichedEvent{
		enriched("e1", "AI Conf", "Conference", "2026-06-01", false),
	}
	require.NoError(t, ToFile(path, events, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AI Conf")
}
