package domain

// TopicConfig describes one saved search to watch. The set of topics is
// owned by the external administration surface; the pipeline only reads it.
type TopicConfig struct {
	Topic    string `json:"topic" yaml:"topic"`
	URL      string `json:"url" yaml:"url"`
	Disabled bool   `json:"disabled" yaml:"disabled"`
}

// ListingRecord is a single marketplace listing extracted from a search
// results page. ID is the marketplace's own path-embedded identifier and the
// sole identity key; every other field is best-effort display text and may be
// empty when the markup gave the selectors nothing.
type ListingRecord struct {
	ID     string `json:"id"`
	Link   string `json:"link"`
	Title  string `json:"title"`
	Price  string `json:"price"`
	Year   string `json:"year"`
	Hand   string `json:"hand"`
	Agency string `json:"agency"`
	Image  string `json:"image"`
}

// TopicOutcome is the per-topic result of one orchestration pass.
type TopicOutcome struct {
	Topic   string
	URL     string
	Skipped bool
	New     int
	Err     error
}

// Failed reports whether the topic was attempted and did not complete.
func (o TopicOutcome) Failed() bool {
	return !o.Skipped && o.Err != nil
}
