package transform

import (
	"strings"
	"time"

	"eventbrite-extractor/models"
)

const displayDateLayout = "Mon, Jan 2, 2006 at 3:04 PM"

// currencySymbols covers the currencies the newsletter actually sees.
// Anything else renders as "CODE amount".
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "CA$",
}

// NormalizePricing reconciles the free flag with the price fields: a
// zero amount means free, and free events carry no price or currency
// at all.
func NormalizePricing(ev models.Event) models.Event {
	if ev.Price != nil && ev.Price.IsZero() {
		ev.IsFree = true
	}
	if ev.IsFree {
		ev.Price = nil
		ev.Currency = nil
	}
	return ev
}

// DisplayPrice renders the price for humans: "Free", a formatted
// amount, or "Paid" when we know it costs something but not how much.
func DisplayPrice(ev models.Event) string {
	if ev.IsFree {
		return "Free"
	}
	if ev.Price == nil {
		return "Paid"
	}

	amount := ev.Price.StringFixed(2)
	currency := ""
	if ev.Currency != nil {
		currency = *ev.Currency
	}

	if symbol, ok := currencySymbols[currency]; ok {
		return symbol + amount
	}
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}

// CleanTags removes duplicates that differ only in case, keeping the
// first spelling and the original order.
func CleanTags(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}

	seen := make(map[string]struct{}, len(tags))
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	return cleaned
}

// FormatDisplayDate renders the start as e.g. "Fri, Feb 27, 2026 at
// 12:00 PM". Undated events yield "", and an unparseable date falls
// back to the raw value with ok=false so callers can log it. Either
// way the record survives.
func FormatDisplayDate(ev models.Event) (string, bool) {
	if ev.StartDate == "" {
		return "", true
	}

	startTime := ev.StartTime
	if startTime == "" {
		startTime = "00:00"
	}

	t, err := time.Parse("2006-01-02 15:04", ev.StartDate+" "+startTime)
	if err != nil {
		return ev.StartDate, false
	}
	return t.Format(displayDateLayout), true
}

// Location names where the event happens: online, at a venue, or not
// announced yet.
func Location(ev models.Event) string {
	if ev.IsOnline {
		return "Online"
	}
	if ev.VenueName != "" {
		return ev.VenueName
	}
	return "Location TBD"
}
