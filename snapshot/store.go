// Package snapshot keeps the last-seen discovery document per service, used
// as the diff baseline for the next poll cycle. Each service owns exactly
// one slot which is overwritten wholesale on every put; history lives in
// the change log, never here.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ddd/discovery-tracker/discovery"
	"github.com/ddd/discovery-tracker/storage"
)

// Store holds one current document per service in a directory of JSON
// files, published atomically so concurrent readers never see a torn slot.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the snapshot directory.
func NewStore(dir string) (*Store, error) {
	if err := storage.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put overwrites the service's snapshot slot with the given document.
func (s *Store) Put(service string, doc *discovery.Document) error {
	if err := storage.WriteJSONAtomic(s.slotPath(service), doc, false); err != nil {
		return fmt.Errorf("store snapshot for %s: %w", service, err)
	}
	return nil
}

// Get returns the current snapshot for a service, or nil when the service
// has never been stored.
func (s *Store) Get(service string) (*discovery.Document, error) {
	var doc discovery.Document
	if err := storage.ReadJSON(s.slotPath(service), &doc); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot for %s: %w", service, err)
	}
	return &doc, nil
}

// GetAll returns every stored snapshot keyed by service name.
func (s *Store) GetAll() (map[string]*discovery.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("enumerate snapshots %s: %w: %v", s.dir, storage.ErrUnavailable, err)
	}

	documents := make(map[string]*discovery.Document)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		service := strings.TrimSuffix(name, ".json")
		doc, err := s.Get(service)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			documents[service] = doc
		}
	}
	return documents, nil
}

func (s *Store) slotPath(service string) string {
	return filepath.Join(s.dir, service+".json")
}
