package monitoring

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Counter names tracked across a run. The client and the transform
// pipeline increment these; the CLI logs Summary at the end.
const (
	CounterPagesFetched      = "pages_fetched"
	CounterRequestsMade      = "requests_made"
	CounterRateLimitRetries  = "rate_limit_retries"
	CounterDuplicatesSkipped = "duplicates_skipped"
	CounterRecordsSkipped    = "records_skipped"
	CounterCancelledRemoved  = "cancelled_removed"
	CounterPastRemoved       = "past_removed"
	CounterEventsExtracted   = "events_extracted"
)

// Stats is a set of named counters for a single extraction run.
// A nil *Stats is valid; every method is a no-op on it.
type Stats struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewStats() *Stats {
	return &Stats{counts: make(map[string]int)}
}

func (s *Stats) Inc(name string) {
	s.Add(name, 1)
}

func (s *Stats) Add(name string, n int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[name] += n
}

func (s *Stats) Get(name string) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[name]
}

// Summary renders the counters as "name=value" pairs in stable order.
func (s *Stats) Summary() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.counts))
	for name := range s.counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, s.counts[name]))
	}
	return strings.Join(parts, " ")
}
