// Package changelog persists detected change sets as a durable, queryable,
// append-only history: one JSON record per detection event, keyed by
// (service, timestamp). Records are published atomically so concurrent
// readers never observe a partial write.
package changelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ddd/discovery-tracker/diff"
	"github.com/ddd/discovery-tracker/discovery"
	"github.com/ddd/discovery-tracker/storage"
)

// fallbackRevision is recorded when the new document carries no revision.
const fallbackRevision = "unknown"

// Store is the change log over a single directory. One writer and any
// number of concurrent readers may share it; there is no further locking.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the change log directory.
func NewStore(dir string) (*Store, error) {
	if err := storage.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("open change log: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Append classifies and persists a change set, stamped with the current
// wall-clock second and the new document's revision. The persisted record
// is returned. A record already present for the same (service, second) is
// overwritten.
func (s *Store) Append(cs *diff.ChangeSet, newDoc *discovery.Document) (*LoggedChange, error) {
	revision := fallbackRevision
	if newDoc.Revision != nil {
		revision = *newDoc.Revision
	}

	logged := &LoggedChange{
		Revision:  revision,
		Timestamp: time.Now().Unix(),
		Service:   cs.Service,
		Summary: ChangeSummary{
			Additions:     len(cs.Additions),
			Modifications: len(cs.Modifications),
			Deletions:     len(cs.Deletions),
			Tags:          Classify(cs),
		},
		Modifications: cs.Modifications,
		Additions:     cs.Additions,
		Deletions:     cs.Deletions,
	}

	path := s.recordPath(logged.Service, logged.Timestamp)
	if err := storage.WriteJSONAtomic(path, logged, true); err != nil {
		return nil, fmt.Errorf("append change log for %s: %w", cs.Service, err)
	}
	return logged, nil
}

// ListAll returns records across all services sorted newest first, after
// skipping offset and taking at most limit. A single corrupt record fails
// the whole listing.
func (s *Store) ListAll(offset, limit int) ([]*LoggedChange, error) {
	return s.list(func(string) bool { return true }, offset, limit)
}

// ListForService is ListAll filtered to records whose stored key starts
// with service. This is a prefix match: "foo" also matches records logged
// for "foobar".
func (s *Store) ListForService(service string, offset, limit int) ([]*LoggedChange, error) {
	return s.list(func(stem string) bool {
		return strings.HasPrefix(stem, service)
	}, offset, limit)
}

// Get looks up the record persisted for an exact (service, timestamp) pair.
func (s *Store) Get(service string, timestamp int64) (*LoggedChange, error) {
	var logged LoggedChange
	if err := storage.ReadJSON(s.recordPath(service, timestamp), &logged); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("change log entry %s@%d: %w", service, timestamp, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("change log entry %s@%d: %w", service, timestamp, err)
	}
	return &logged, nil
}

func (s *Store) list(match func(stem string) bool, offset, limit int) ([]*LoggedChange, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("enumerate change log %s: %w: %v", s.dir, storage.ErrUnavailable, err)
	}

	changes := []*LoggedChange{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		stem := strings.TrimSuffix(name, ".json")
		if !match(stem) {
			continue
		}
		var logged LoggedChange
		if err := storage.ReadJSON(filepath.Join(s.dir, name), &logged); err != nil {
			// One bad record fails the whole listing instead of
			// being skipped.
			return nil, fmt.Errorf("enumerate change log: %w", err)
		}
		changes = append(changes, &logged)
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Timestamp > changes[j].Timestamp
	})

	if offset >= len(changes) {
		return []*LoggedChange{}, nil
	}
	changes = changes[offset:]
	if limit < len(changes) {
		changes = changes[:limit]
	}
	return changes, nil
}

func (s *Store) recordPath(service string, timestamp int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%d.json", service, timestamp))
}
