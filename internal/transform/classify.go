package transform

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"eventbrite-extractor/models"
)

// DefaultType is assigned when no rule matches.
const DefaultType = "Event"

// Rule maps a set of keywords to an event type. Rules are checked in
// slice order and the first keyword hit wins, so broader buckets must
// come before narrow ones that share vocabulary.
type Rule struct {
	Type     string   `yaml:"type"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules is the built-in classification table. "talk" alone lands
// in Talk, which sits below Seminar so that "fireside chat" and "panel"
// keep their Seminar bucket.
var DefaultRules = []Rule{
	{Type: "Conference", Keywords: []string{"conference", "summit", "symposium", "forum"}},
	{Type: "Workshop", Keywords: []string{"workshop", "hands-on", "bootcamp", "training", "masterclass"}},
	{Type: "Meetup", Keywords: []string{"meetup", "meet-up", "networking", "mixer", "happy hour"}},
	{Type: "Webinar", Keywords: []string{"webinar", "online session", "virtual talk"}},
	{Type: "Seminar", Keywords: []string{"seminar", "lecture", "panel", "fireside chat"}},
	{Type: "Hackathon", Keywords: []string{"hackathon", "hack day", "buildathon"}},
	{Type: "Course", Keywords: []string{"course", "class", "certification", "program"}},
	{Type: "Talk", Keywords: []string{"talk", "lightning talk", "tech talk"}},
}

// Classify buckets an event by scanning its tags, title, summary and
// category for rule keywords, case-insensitively.
func Classify(rules []Rule, ev models.Event) string {
	parts := make([]string, 0, len(ev.Tags)+3)
	parts = append(parts, ev.Tags...)
	parts = append(parts, ev.Title, ev.Summary, ev.Category)
	searchable := strings.ToLower(strings.Join(parts, " "))

	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(searchable, keyword) {
				return rule.Type
			}
		}
	}
	return DefaultType
}

// LoadRules reads a replacement classification table from a YAML file.
// The file is a list of {type, keywords} entries; order in the file is
// match priority. Keywords are lowercased on load.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loadRules: os.ReadFile: %w", err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("loadRules: yaml.Unmarshal: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("loadRules: %s defines no rules", path)
	}

	for i, rule := range rules {
		if rule.Type == "" {
			return nil, fmt.Errorf("loadRules: rule %d has no type", i)
		}
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("loadRules: rule %q has no keywords", rule.Type)
		}
		for j, keyword := range rule.Keywords {
			rules[i].Keywords[j] = strings.ToLower(strings.TrimSpace(keyword))
		}
	}

	return rules, nil
}
