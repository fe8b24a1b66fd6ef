package eventbrite

import (
	"strings"

	"github.com/shopspring/decimal"

	"eventbrite-extractor/models"
)

// Wire types for the destination search endpoint. Only the fields the
// extractor reads are declared; the payload carries plenty more.

type searchRequest struct {
	EventSearch eventSearch `json:"event_search"`
	Expand      []string    `json:"expand.destination_event"`
}

type eventSearch struct {
	Query            string   `json:"q"`
	Places           []string `json:"places,omitempty"`
	OnlineEventsOnly bool     `json:"online_events_only,omitempty"`
	PageSize         int      `json:"page_size"`
	Continuation     string   `json:"continuation,omitempty"`
}

type searchResponse struct {
	Events     []destinationEvent `json:"events"`
	Pagination pagination         `json:"pagination"`
}

type pagination struct {
	Continuation string `json:"continuation"`
	HasMoreItems bool   `json:"has_more_items"`
	PageCount    int    `json:"page_count"`
	PageNumber   int    `json:"page_number"`
}

type destinationEvent struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Summary            string              `json:"summary"`
	StartDate          string              `json:"start_date"`
	StartTime          string              `json:"start_time"`
	EndDate            string              `json:"end_date"`
	EndTime            string              `json:"end_time"`
	Timezone           string              `json:"timezone"`
	URL                string              `json:"url"`
	IsOnlineEvent      bool                `json:"is_online_event"`
	IsCancelled        bool                `json:"is_cancelled"`
	Status             string              `json:"status"`
	Tags               []destTag           `json:"tags"`
	Image              *destImage          `json:"image"`
	PrimaryVenue       *destVenue          `json:"primary_venue"`
	PrimaryOrganizer   *destOrganizer      `json:"primary_organizer"`
	TicketAvailability *ticketAvailability `json:"ticket_availability"`
}

type destTag struct {
	Prefix      string `json:"prefix"`
	DisplayName string `json:"display_name"`
}

type destImage struct {
	URL string `json:"url"`
}

type destVenue struct {
	Name    string       `json:"name"`
	Address *destAddress `json:"address"`
}

type destAddress struct {
	LocalizedAddressDisplay string `json:"localized_address_display"`
}

type destOrganizer struct {
	Name string `json:"name"`
}

type ticketAvailability struct {
	IsFree             bool         `json:"is_free"`
	MinimumTicketPrice *ticketPrice `json:"minimum_ticket_price"`
}

type ticketPrice struct {
	MajorValue string `json:"major_value"`
	Currency   string `json:"currency"`
}

// toEvent maps one search fragment onto the normalized record. Optional
// fields that are absent or unparseable come through as zero values so
// a sparse listing never aborts the page.
func (d destinationEvent) toEvent() models.Event {
	ev := models.Event{
		ID:          d.ID,
		Title:       d.Name,
		Summary:     d.Summary,
		StartDate:   d.StartDate,
		StartTime:   d.StartTime,
		EndDate:     d.EndDate,
		EndTime:     d.EndTime,
		Timezone:    d.Timezone,
		IsOnline:    d.IsOnlineEvent,
		URL:         d.URL,
		IsCancelled: d.IsCancelled || isCancelledStatus(d.Status),
	}

	if d.Image != nil {
		ev.ImageURL = d.Image.URL
	}
	if d.PrimaryVenue != nil {
		ev.VenueName = d.PrimaryVenue.Name
		if d.PrimaryVenue.Address != nil {
			ev.VenueAddress = d.PrimaryVenue.Address.LocalizedAddressDisplay
		}
	}
	if d.PrimaryOrganizer != nil {
		ev.OrganizerName = d.PrimaryOrganizer.Name
	}

	// Category tags arrive with an "EventbriteCategory" prefix mixed in
	// with the plain topic tags. The first one becomes the category.
	for _, tag := range d.Tags {
		if tag.DisplayName == "" {
			continue
		}
		if strings.HasPrefix(tag.Prefix, "EventbriteCategory") {
			if ev.Category == "" {
				ev.Category = tag.DisplayName
			}
			continue
		}
		ev.Tags = append(ev.Tags, tag.DisplayName)
	}

	if d.TicketAvailability != nil {
		ev.IsFree = d.TicketAvailability.IsFree
		if p := d.TicketAvailability.MinimumTicketPrice; p != nil {
			if amount, err := decimal.NewFromString(p.MajorValue); err == nil {
				ev.Price = models.DecimalPtr(amount)
			}
			if p.Currency != "" {
				ev.Currency = models.StringPtr(p.Currency)
			}
		}
	}

	return ev
}

func isCancelledStatus(s string) bool {
	return strings.EqualFold(s, "canceled") || strings.EqualFold(s, "cancelled")
}
