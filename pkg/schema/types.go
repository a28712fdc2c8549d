package schema

// Document is one on-disk schema document: either a root document or a
// fragment referenced through an allOf entry. A Document is immutable once
// loaded.
type Document struct {
	// Ref is the canonical absolute path of the document on disk.
	Ref string `json:"-"`

	// Type is the declared schema type. Every document must declare
	// "object"; anything else is rejected as malformed.
	Type string `json:"type"`

	// Properties maps property names to their (possibly nested) schemas.
	Properties map[string]any `json:"properties"`

	// Required lists property names that must be present.
	Required []string `json:"required"`

	// Definitions holds named reusable subschemas.
	Definitions map[string]any `json:"definitions"`

	// AdditionalProperties, when present and false, forbids properties
	// not listed in Properties.
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`

	// AllOf lists the composition entries of this document, in order.
	AllOf []AllOfEntry `json:"allOf"`
}

// AllOfEntry is one entry of a document's allOf list. An entry either
// references another document by relative path or carries inline schema
// content; a referencing entry never carries inline content as well.
type AllOfEntry struct {
	Ref         string         `json:"$ref"`
	Type        string         `json:"type"`
	Properties  map[string]any `json:"properties"`
	Required    []string       `json:"required"`
	Definitions map[string]any `json:"definitions"`
}

// Resolved is the flattened result of merging one root document with every
// document it transitively references. It is pure data with no outstanding
// references and validates as a self-contained object schema.
type Resolved struct {
	// RootRef is the canonical path of the root document.
	RootRef string

	// Properties is the merged properties map (last fragment wins per key).
	Properties map[string]any

	// Required is the merged required list, deduplicated, in first-seen order.
	Required []string

	// Definitions is the merged definitions map (last fragment wins per key).
	Definitions map[string]any

	// AdditionalProperties mirrors the root document's setting.
	AdditionalProperties *bool

	// Fragments lists the canonical paths of every document that
	// contributed to the result, root first, in resolution order.
	Fragments []string
}

// AsMap returns the resolved schema as a plain JSON-compatible map. The
// allOf key is never present; only the flattened type, properties,
// required, and definitions remain.
func (r *Resolved) AsMap() map[string]any {
	out := map[string]any{
		"type":       "object",
		"properties": r.Properties,
	}
	if len(r.Required) > 0 {
		out["required"] = r.Required
	}
	if len(r.Definitions) > 0 {
		out["definitions"] = r.Definitions
	}
	if r.AdditionalProperties != nil {
		out["additionalProperties"] = *r.AdditionalProperties
	}
	return out
}

// IsRequired reports whether the named property is in the required list.
func (r *Resolved) IsRequired(name string) bool {
	for _, req := range r.Required {
		if req == name {
			return true
		}
	}
	return false
}
