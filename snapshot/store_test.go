package snapshot_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ddd/discovery-tracker/diff"
	"github.com/ddd/discovery-tracker/discovery"
	"github.com/ddd/discovery-tracker/snapshot"
	"github.com/ddd/discovery-tracker/storage"
)

func strp(s string) *string { return &s }

func TestPutGetRoundTrip(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	doc := &discovery.Document{
		Title:    strp("Test API"),
		Revision: strp("20210101"),
		Schemas: discovery.SchemaMap{
			"Color": &discovery.EnumSchema{
				ID:          strp("Color"),
				Enumeration: []string{"RED", "BLUE"},
			},
		},
	}
	if err := store.Put("example.googleapis.com", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get("example.googleapis.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored document, got nil")
	}
	if got.Title == nil || *got.Title != "Test API" {
		t.Errorf("title: got %v", got.Title)
	}
	if got.Description != nil {
		t.Errorf("absent field should stay absent, got %v", *got.Description)
	}
	enum, ok := got.Schemas["Color"].(*discovery.EnumSchema)
	if !ok {
		t.Fatalf("schema variant lost: %T", got.Schemas["Color"])
	}
	if len(enum.Enumeration) != 2 || enum.Enumeration[0] != "RED" {
		t.Errorf("enumeration: got %v", enum.Enumeration)
	}
}

// A stored document with present-but-empty collections must reload
// identically, or every later cycle diffs phantom additions at the
// collection paths against an unchanged remote document.
func TestEmptyCollectionsSurviveRoundTrip(t *testing.T) {
	raw := []byte(`{
	  "title": "Example API",
	  "revision": "20210101",
	  "schemas": {},
	  "resources": {
	    "things": {
	      "methods": {
	        "list": {"id": "things.list", "path": "things", "httpMethod": "GET", "parameters": {}, "scopes": []}
	      }
	    }
	  }
	}`)
	doc, err := discovery.ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Put("example.googleapis.com", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get("example.googleapis.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	method := got.Resources["things"].Methods["list"]
	if method.Parameters == nil || method.Scopes == nil {
		t.Errorf("empty collections lost in round trip: parameters=%v scopes=%v",
			method.Parameters, method.Scopes)
	}

	fresh, err := discovery.ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	cs := diff.Compute(got, fresh, "example.googleapis.com")
	if !cs.Empty() {
		t.Errorf("round trip against an identical document must diff empty, got %+v", cs)
	}
}

func TestGetMissingIsNotAnError(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	doc, err := store.Get("never-stored")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil for unknown service, got %+v", doc)
	}
}

func TestPutOverwritesWholesale(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Put("svc", &discovery.Document{Title: strp("first"), Revision: strp("1")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("svc", &discovery.Document{Title: strp("second")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get("svc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title == nil || *got.Title != "second" {
		t.Errorf("title: got %v", got.Title)
	}
	if got.Revision != nil {
		t.Errorf("old revision should not survive overwrite, got %v", *got.Revision)
	}
}

func TestGetAll(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Put("alpha", &discovery.Document{Title: strp("a")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("beta", &discovery.Document{Title: strp("b")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	all, err := store.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(all))
	}
	if all["alpha"] == nil || *all["alpha"].Title != "a" {
		t.Errorf("alpha snapshot wrong: %+v", all["alpha"])
	}
}

func TestCorruptSlotFailsWithDecodeKind(t *testing.T) {
	dir := t.TempDir()
	store, err := snapshot.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "svc.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt slot: %v", err)
	}

	if _, err := store.Get("svc"); !errors.Is(err, storage.ErrDecode) {
		t.Errorf("Get: expected ErrDecode, got %v", err)
	}
	if _, err := store.GetAll(); !errors.Is(err, storage.ErrDecode) {
		t.Errorf("GetAll: expected ErrDecode, got %v", err)
	}
}

func TestPutPublishesAtomically(t *testing.T) {
	dir := t.TempDir()
	store, err := snapshot.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Put("svc", &discovery.Document{Title: strp("x")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// No temporary files may survive a successful publish.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "svc.json" {
			t.Errorf("unexpected leftover file %q", entry.Name())
		}
	}
}
