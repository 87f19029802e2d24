package diff

import (
	"slices"

	"github.com/ddd/discovery-tracker/discovery"
)

// compareScalar diffs a pair of optional scalar fields. Both absent is no
// change; one side absent is an addition or deletion carrying the present
// value; both present and unequal is a modification carrying both.
func compareScalar[T comparable](cs *ChangeSet, path string, old, new *T) {
	switch {
	case old == nil && new == nil:
	case old == nil:
		cs.addAddition(path, *new)
	case new == nil:
		cs.addDeletion(path, *old)
	case *old != *new:
		cs.addModification(path, *old, *new)
	}
}

// compareStringSlice treats a nil slice as an absent field and reports any
// element-level difference as a single change carrying the full sequences.
func compareStringSlice(cs *ChangeSet, path string, old, new []string) {
	switch {
	case old == nil && new == nil:
	case old == nil:
		cs.addAddition(path, new)
	case new == nil:
		cs.addDeletion(path, old)
	case !slices.Equal(old, new):
		cs.addModification(path, old, new)
	}
}

// compareRef diffs optional request/response schema references.
func compareRef(cs *ChangeSet, path string, old, new *discovery.SchemaRef) {
	switch {
	case old == nil && new == nil:
	case old == nil:
		cs.addAddition(path, new)
	case new == nil:
		cs.addDeletion(path, old)
	case !old.Equal(new):
		cs.addModification(path, old, new)
	}
}

// diffKeyed walks a pair of keyed maps rooted at path. A nil map is an
// absent field: if only one side carries the map, a single change for the
// whole map is emitted at path. Keys present on both sides are handed to
// matched with the key's own path; one-sided keys become additions carrying
// the new value, and deletions that carry the old value only when
// deleteWithPayload is set. Resources, methods and parameters are removed
// bare.
func diffKeyed[T any](cs *ChangeSet, path string, old, new map[string]T, deleteWithPayload bool, matched func(itemPath string, oldV, newV T)) {
	switch {
	case old == nil && new == nil:
		return
	case old == nil:
		cs.addAddition(path, new)
		return
	case new == nil:
		if deleteWithPayload {
			cs.addDeletion(path, old)
		} else {
			cs.addBareDeletion(path)
		}
		return
	}

	for key, newV := range new {
		itemPath := path + "/" + key
		if oldV, ok := old[key]; ok {
			matched(itemPath, oldV, newV)
		} else {
			cs.addAddition(itemPath, newV)
		}
	}
	for key, oldV := range old {
		if _, ok := new[key]; !ok {
			itemPath := path + "/" + key
			if deleteWithPayload {
				cs.addDeletion(itemPath, oldV)
			} else {
				cs.addBareDeletion(itemPath)
			}
		}
	}
}
