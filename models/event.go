package models

import (
	"github.com/shopspring/decimal"
)

// Event is a single normalized listing as returned by the search API.
// StartDate/StartTime are kept as the API's local-time strings
// ("2006-01-02" and "15:04"); either may be empty when the listing
// has no schedule yet.
type Event struct {
	ID            string           `json:"event_id"`
	Title         string           `json:"title"`
	Summary       string           `json:"summary"`
	StartDate     string           `json:"start_date"`
	StartTime     string           `json:"start_time"`
	EndDate       string           `json:"end_date"`
	EndTime       string           `json:"end_time"`
	Timezone      string           `json:"timezone"`
	IsOnline      bool             `json:"is_online"`
	VenueName     string           `json:"venue_name"`
	VenueAddress  string           `json:"venue_address"`
	OrganizerName string           `json:"organizer_name"`
	IsFree        bool             `json:"is_free"`
	Price         *decimal.Decimal `json:"price"`
	Currency      *string          `json:"currency"`
	Category      string           `json:"category"`
	Tags          []string         `json:"tags"`
	URL           string           `json:"url"`
	ImageURL      string           `json:"image_url"`
	IsCancelled   bool             `json:"is_cancelled"`
}

// EnrichedEvent is an Event after the transform pipeline has run:
// classified, priced for display and ready to render or export.
type EnrichedEvent struct {
	Event
	EventType    string `json:"event_type"`
	DisplayDate  string `json:"display_date"`
	DisplayPrice string `json:"display_price"`
	Location     string `json:"location"`
}

func StringPtr(s string) *string {
	return &s
}

func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
