package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"eventbrite-extractor/models"
)

// csvHeader fixes the column order; it mirrors the flattened record
// layout of the JSON export.
var csvHeader = []string{
	"event_id", "title", "summary",
	"start_date", "start_time", "end_date", "end_time", "timezone",
	"is_online", "venue_name", "venue_address", "organizer_name",
	"is_free", "price", "currency",
	"category", "tags", "url", "image_url", "is_cancelled",
	"event_type", "display_date", "display_price", "location",
}

// WriteJSON writes events to path as an indented UTF-8 JSON array,
// creating parent directories as needed. No events still yields a
// valid empty array.
func WriteJSON(events []models.EnrichedEvent, path string) error {
	if events == nil {
		events = []models.EnrichedEvent{}
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("exportJSON: json.Marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("exportJSON: os.MkdirAll: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("exportJSON: os.WriteFile: %w", err)
	}
	return nil
}

// WriteCSV writes events to path with a header row followed by one row
// per event. Tags are joined with ", " inside their cell.
func WriteCSV(events []models.EnrichedEvent, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("exportCSV: os.MkdirAll: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("exportCSV: os.Create: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("exportCSV: write header: %w", err)
	}
	for _, ev := range events {
		if err := w.Write(record(ev)); err != nil {
			return fmt.Errorf("exportCSV: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("exportCSV: flush: %w", err)
	}
	return nil
}

func record(ev models.EnrichedEvent) []string {
	price := ""
	if ev.Price != nil {
		price = ev.Price.StringFixed(2)
	}
	currency := ""
	if ev.Currency != nil {
		currency = *ev.Currency
	}

	return []string{
		ev.ID, ev.Title, ev.Summary,
		ev.StartDate, ev.StartTime, ev.EndDate, ev.EndTime, ev.Timezone,
		strconv.FormatBool(ev.IsOnline), ev.VenueName, ev.VenueAddress, ev.OrganizerName,
		strconv.FormatBool(ev.IsFree), price, currency,
		ev.Category, strings.Join(ev.Tags, ", "), ev.URL, ev.ImageURL, strconv.FormatBool(ev.IsCancelled),
		ev.EventType, ev.DisplayDate, ev.DisplayPrice, ev.Location,
	}
}
