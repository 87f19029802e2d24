package diff

// Change is one atomic difference between two documents, addressed by a
// slash-delimited path. Exactly one of three shapes holds:
//
//   - addition: Value set, OldValue and NewValue absent
//   - deletion: OldValue set (or, for resources/methods/parameters, nothing)
//   - modification: OldValue and NewValue set, Value absent
//
// Absent fields are omitted when serialized, never emitted as null, so the
// three shapes stay visually distinguishable in stored records.
type Change struct {
	Path     string `json:"path"`
	Value    any    `json:"value,omitempty"`
	OldValue any    `json:"old_value,omitempty"`
	NewValue any    `json:"new_value,omitempty"`
}

// ChangeSet is the complete set of differences between two documents for one
// service. It is produced once per diff invocation and not mutated after.
// Order among entries within a sequence is not guaranteed stable.
type ChangeSet struct {
	Service       string   `json:"service"`
	Modifications []Change `json:"modifications"`
	Additions     []Change `json:"additions"`
	Deletions     []Change `json:"deletions"`
}

// Empty reports whether the change set carries no changes at all.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Modifications) == 0 && len(cs.Additions) == 0 && len(cs.Deletions) == 0
}

func (cs *ChangeSet) addAddition(path string, value any) {
	cs.Additions = append(cs.Additions, Change{Path: path, Value: value})
}

func (cs *ChangeSet) addDeletion(path string, oldValue any) {
	cs.Deletions = append(cs.Deletions, Change{Path: path, OldValue: oldValue})
}

// addBareDeletion records a deletion with no payload at all. Resource,
// method and parameter removals are reported this way.
func (cs *ChangeSet) addBareDeletion(path string) {
	cs.Deletions = append(cs.Deletions, Change{Path: path})
}

func (cs *ChangeSet) addModification(path string, oldValue, newValue any) {
	cs.Modifications = append(cs.Modifications, Change{Path: path, OldValue: oldValue, NewValue: newValue})
}
