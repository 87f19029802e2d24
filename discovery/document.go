// Package discovery defines the typed model of a service discovery document
// and the parser that produces it from raw JSON.
package discovery

// Document is a snapshot of one service's API description at a point in
// time. All scalar metadata is optional; a nil pointer means the field was
// absent from the source document, which is distinct from an empty value.
// Collection fields serialize unconditionally (absent as null, empty as an
// empty collection) so a present-but-empty map or list survives the
// snapshot round trip instead of reloading as absent.
type Document struct {
	Description       *string              `json:"description,omitempty"`
	Title             *string              `json:"title,omitempty"`
	DiscoveryVersion  *string              `json:"discoveryVersion,omitempty"`
	Revision          *string              `json:"revision,omitempty"`
	OwnerDomain       *string              `json:"ownerDomain,omitempty"`
	BaseURL           *string              `json:"baseUrl,omitempty"`
	Schemas           SchemaMap            `json:"schemas"`
	DocumentationLink *string              `json:"documentationLink,omitempty"`
	Resources         map[string]*Resource `json:"resources"`
}

// Property is one field of an object schema.
type Property struct {
	Type        *string `json:"type,omitempty"`
	Ref         *string `json:"$ref,omitempty"`
	Format      *string `json:"format,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Resource groups the methods exposed under one resource name. Resources do
// not nest in this model.
type Resource struct {
	Methods map[string]*Method `json:"methods"`
}

// Method is one callable operation of a resource.
type Method struct {
	ID          string                `json:"id"`
	Path        string                `json:"path"`
	HTTPMethod  string                `json:"httpMethod"`
	Description *string               `json:"description,omitempty"`
	Parameters  map[string]*Parameter `json:"parameters"`
	Request     *SchemaRef            `json:"request,omitempty"`
	Response    *SchemaRef            `json:"response,omitempty"`
	Scopes      []string              `json:"scopes"`
}

// SchemaRef is a request or response body reference.
type SchemaRef struct {
	Ref *string `json:"$ref,omitempty"`
}

// Equal reports whether two refs resolve to the same schema name.
func (r *SchemaRef) Equal(other *SchemaRef) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Ref == nil || other.Ref == nil {
		return r.Ref == other.Ref
	}
	return *r.Ref == *other.Ref
}

// Parameter describes one method parameter.
type Parameter struct {
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	Required    *bool   `json:"required,omitempty"`
	Location    *string `json:"location,omitempty"`
}
