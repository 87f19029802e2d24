package changelog

import "github.com/ddd/discovery-tracker/diff"

// ChangeSummary condenses one detection event: counts per change kind plus
// the semantic tags derived from the change set.
type ChangeSummary struct {
	Additions     int      `json:"additions"`
	Modifications int      `json:"modifications"`
	Deletions     int      `json:"deletions"`
	Tags          []string `json:"tags"`
}

// LoggedChange is one durably persisted change-detection event. It is
// created once at log time, identified by (service, timestamp), and never
// mutated afterwards. A second event for the same service within the same
// clock second overwrites the first.
type LoggedChange struct {
	Revision      string        `json:"revision"`
	Timestamp     int64         `json:"timestamp"`
	Service       string        `json:"service"`
	Summary       ChangeSummary `json:"summary"`
	Modifications []diff.Change `json:"modifications"`
	Additions     []diff.Change `json:"additions"`
	Deletions     []diff.Change `json:"deletions"`
}
