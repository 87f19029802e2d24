package changelog

import (
	"strings"

	"github.com/ddd/discovery-tracker/diff"
)

// Semantic tags derived from a change set.
const (
	TagNewMethod     = "new_method"
	TagRemovedMethod = "removed_method"
)

// Classify derives the semantic tags for a change set. Values are unique
// and order carries no meaning.
func Classify(cs *diff.ChangeSet) []string {
	tags := []string{}
	if hasNewMethod(cs) {
		tags = append(tags, TagNewMethod)
	}
	if hasRemovedMethod(cs) {
		tags = append(tags, TagRemovedMethod)
	}
	return tags
}

func hasNewMethod(cs *diff.ChangeSet) bool {
	for _, change := range cs.Additions {
		if underMethods(change.Path) && change.Value != nil && change.OldValue == nil {
			return true
		}
	}
	return false
}

func hasRemovedMethod(cs *diff.ChangeSet) bool {
	for _, change := range cs.Deletions {
		if underMethods(change.Path) && change.Value == nil && change.OldValue != nil {
			return true
		}
	}
	return false
}

// underMethods reports whether the path addresses an entry directly inside
// a methods map: at least four segments with "methods" second to last.
func underMethods(path string) bool {
	segments := strings.Split(path, "/")
	return len(segments) >= 4 && segments[len(segments)-2] == "methods"
}
