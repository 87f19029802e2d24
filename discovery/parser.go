package discovery

import (
	"encoding/json"
	"fmt"
)

// ParseDocument decodes a raw discovery document into the typed model.
// Absent fields decode to nil and stay distinguishable from empty values.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse discovery document: %w", err)
	}
	return &doc, nil
}
