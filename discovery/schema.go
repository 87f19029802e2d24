package discovery

import (
	"encoding/json"
	"fmt"
)

// Schema is the closed set of schema variants a document can carry. The two
// implementations are ObjectSchema and EnumSchema; comparison sites switch
// exhaustively over them.
type Schema interface {
	isSchema()
}

// ObjectSchema is a structured schema with named properties.
type ObjectSchema struct {
	Properties map[string]*Property `json:"properties"`
	Type       *string              `json:"type,omitempty"`
	ID         *string              `json:"id,omitempty"`
}

func (*ObjectSchema) isSchema() {}

// EnumSchema is a schema whose values are drawn from an ordered list of
// strings. EnumDescriptions, when present, is positionally coupled to
// Enumeration: entry i describes value i.
type EnumSchema struct {
	Properties       map[string]*Property `json:"properties"`
	Type             *string              `json:"type,omitempty"`
	ID               *string              `json:"id,omitempty"`
	Enumeration      []string             `json:"enumeration"`
	EnumDescriptions []string             `json:"enumDescriptions"`
}

func (*EnumSchema) isSchema() {}

// SchemaMap maps schema names to their variants. Decoding selects the
// variant by the presence of an "enumeration" key.
type SchemaMap map[string]Schema

func (m *SchemaMap) UnmarshalJSON(data []byte) error {
	// A null collection means the field was absent; it must reload as a
	// nil map, not an empty one.
	if string(data) == "null" {
		*m = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SchemaMap, len(raw))
	for name, msg := range raw {
		s, err := decodeSchema(msg)
		if err != nil {
			return fmt.Errorf("schema %q: %w", name, err)
		}
		out[name] = s
	}
	*m = out
	return nil
}

func decodeSchema(data []byte) (Schema, error) {
	var probe struct {
		Enumeration json.RawMessage `json:"enumeration"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Enumeration != nil {
		var e EnumSchema
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	}
	var o ObjectSchema
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
