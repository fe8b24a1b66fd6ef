package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"eventbrite-extractor/config"
	"eventbrite-extractor/internal/eventbrite"
	"eventbrite-extractor/internal/export"
	"eventbrite-extractor/internal/render"
	"eventbrite-extractor/internal/transform"
	"eventbrite-extractor/models"
	"eventbrite-extractor/monitoring"
	"eventbrite-extractor/utils"
)

type options struct {
	query      string
	pages      int
	pageSize   int
	placeID    string
	onlineOnly bool
	format     string
	outputDir  string
	newsletter bool
	template   string
	rulesFile  string
	envFile    string

	// Explicit flags beat configuration; these record which ones the
	// user actually passed.
	pagesSet    bool
	pageSizeSet bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("eventbrite-extractor", flag.ContinueOnError)

	fs.StringVar(&opts.query, "query", "AI", "search keyword")
	fs.StringVar(&opts.query, "q", "AI", "search keyword (shorthand)")
	fs.IntVar(&opts.pages, "pages", 3, "maximum result pages to fetch")
	fs.IntVar(&opts.pageSize, "page-size", 20, "events per page, up to 50")
	fs.StringVar(&opts.placeID, "place-id", "", `place id to search ("none" searches worldwide, default is NYC)`)
	fs.BoolVar(&opts.onlineOnly, "online-only", false, "only include online events")
	fs.StringVar(&opts.format, "format", "both", "export format: json, csv or both")
	fs.StringVar(&opts.outputDir, "output-dir", "output", "directory for exports")
	fs.StringVar(&opts.outputDir, "o", "output", "directory for exports (shorthand)")
	fs.BoolVar(&opts.newsletter, "newsletter", false, "also render the HTML newsletter")
	fs.StringVar(&opts.template, "template", render.DefaultTemplate, "newsletter template: newsletter or digest")
	fs.StringVar(&opts.rulesFile, "rules", "", "YAML file overriding the classification rules")
	fs.StringVar(&opts.envFile, "env", "", "env file to load instead of .env")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pages":
			opts.pagesSet = true
		case "page-size":
			opts.pageSizeSet = true
		}
	})

	switch opts.format {
	case "json", "csv", "both":
	default:
		return nil, fmt.Errorf("parseFlags: unknown format %q (want json, csv or both)", opts.format)
	}

	return opts, nil
}

// Start runs one extraction end to end: fetch, transform, export and
// optionally render. Finding nothing is a clean exit, not an error.
func Start() error {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	// Load configuration
	var cfg *config.Config
	if opts.envFile != "" {
		cfg, err = config.LoadConfig(opts.envFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Resolve the search location
	placeID := opts.placeID
	if placeID == "" {
		placeID = cfg.PlaceID
	}
	if strings.EqualFold(placeID, "none") {
		placeID = ""
	}

	// Flags not given fall back to configuration
	pages := cfg.MaxPages
	if opts.pagesSet {
		pages = opts.pages
	}
	pageSize := cfg.PageSize
	if opts.pageSizeSet {
		pageSize = opts.pageSize
	}

	rules := transform.DefaultRules
	if opts.rulesFile != "" {
		rules, err = transform.LoadRules(opts.rulesFile)
		if err != nil {
			return err
		}
		logger.Info("loaded classification rules", "path", opts.rulesFile, "rules", len(rules))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := monitoring.NewStats()

	// Initialize the search client
	client := eventbrite.New(eventbrite.ClientConfig{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.APIKey,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		Backoff: utils.Backoff{
			Initial:    cfg.InitialBackoff,
			Max:        cfg.MaxBackoff,
			Multiplier: 2.0,
		},
	},
		eventbrite.WithLogger(logger),
		eventbrite.WithStats(stats),
	)

	logger.Info("searching events",
		"keyword", opts.query,
		"place", locationLabel(placeID),
		"pages", pages,
	)

	events, err := client.SearchEvents(ctx, eventbrite.Query{
		Keyword:    opts.query,
		PlaceID:    placeID,
		OnlineOnly: opts.onlineOnly,
		MaxPages:   pages,
		PageSize:   pageSize,
	})
	if err != nil {
		return err
	}
	if len(events) == 0 {
		logger.Warn("no events found", "keyword", opts.query)
		return nil
	}

	// Transform
	pipeline := transform.New(
		transform.WithRules(rules),
		transform.WithLogger(logger),
		transform.WithStats(stats),
	)
	enriched := pipeline.Run(events)
	if len(enriched) == 0 {
		logger.Warn("no events left after filtering", "fetched", len(events))
		return nil
	}

	// Write outputs. One failed writer should not stop the others, so
	// remember the first error and keep going.
	var firstErr error
	report := func(what, path string, err error) {
		if err != nil {
			logger.Error("write failed", "what", what, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		logger.Info("wrote "+what, "path", path)
	}

	if opts.format == "json" || opts.format == "both" {
		path := filepath.Join(opts.outputDir, "events.json")
		report("json export", path, export.WriteJSON(enriched, path))
	}
	if opts.format == "csv" || opts.format == "both" {
		path := filepath.Join(opts.outputDir, "events.csv")
		report("csv export", path, export.WriteCSV(enriched, path))
	}
	if opts.newsletter {
		path := filepath.Join(opts.outputDir, "newsletter.html")
		report("newsletter", path, render.ToFile(path, enriched, render.Options{
			Title:    newsletterTitle(opts.query, placeID),
			Subtitle: newsletterSubtitle(opts.query, placeID),
			Template: opts.template,
		}))
	}

	printSummary(os.Stdout, enriched, opts.query, locationLabel(placeID))
	logger.Info("run complete", "stats", stats.Summary())

	return firstErr
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	// JSON in production, readable text everywhere else. Logs go to
	// stderr so stdout stays clean for the summary.
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func locationLabel(placeID string) string {
	switch placeID {
	case "":
		return "worldwide"
	case config.DefaultPlaceID:
		return "NYC"
	default:
		return "place " + placeID
	}
}

func newsletterTitle(keyword, placeID string) string {
	label := locationLabel(placeID)
	if label == "worldwide" {
		return fmt.Sprintf("%s Events Weekly", keyword)
	}
	return fmt.Sprintf("%s in %s Weekly", keyword, label)
}

func newsletterSubtitle(keyword, placeID string) string {
	label := locationLabel(placeID)
	if label == "worldwide" {
		return fmt.Sprintf("Your curated guide to %s events everywhere", keyword)
	}
	return fmt.Sprintf("Your curated guide to %s events across %s", keyword, label)
}

func printSummary(w io.Writer, events []models.EnrichedEvent, keyword, location string) {
	fmt.Fprintf(w, "\nFound %d upcoming %q events (%s):\n\n", len(events), keyword, location)
	for i, ev := range events {
		date := ev.DisplayDate
		if date == "" {
			date = "Date TBD"
		}
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, ev.EventType, ev.Title)
		fmt.Fprintf(w, "    %s | %s | %s\n", date, ev.Location, ev.DisplayPrice)
		if ev.URL != "" {
			fmt.Fprintf(w, "    %s\n", ev.URL)
		}
	}
	fmt.Fprintln(w)
}
