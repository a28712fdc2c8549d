package schema

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// CacheMetrics receives resolution cache observations. Implementations must
// be safe for concurrent use. A nil CacheMetrics disables reporting.
type CacheMetrics interface {
	ResolutionCacheHit()
	ResolutionCacheMiss()
}

// Resolver flattens a root schema document and its allOf/$ref fragments
// into a single Resolved schema.
//
// A Resolver is safe to call concurrently: per-call state lives in a
// private resolution value, and the cache tolerates redundant concurrent
// misses because re-resolving the same fingerprint yields the same result.
type Resolver struct {
	loader  *DocumentLoader
	cache   *ResolutionCache
	metrics CacheMetrics
	logger  *slog.Logger
}

// NewResolver creates a new resolver. The cache may be nil to disable
// caching; metrics may be nil to disable cache reporting.
func NewResolver(loader *DocumentLoader, cache *ResolutionCache, metrics CacheMetrics) *Resolver {
	if loader == nil {
		loader = NewDocumentLoader(nil)
	}
	return &Resolver{
		loader:  loader,
		cache:   cache,
		metrics: metrics,
		logger:  slog.Default().With("component", "schema.resolver"),
	}
}

// Resolve loads the root document at rootRef, resolves every fragment it
// transitively references, and returns the flattened schema.
//
// Merge rules: properties and definitions are shallow-merged key by key
// with later fragments (closer to the allOf end, depth-first) overwriting
// earlier identical keys; a document's own entries merge before its allOf
// entries. Required lists are unioned with duplicates removed, preserving
// first-seen order. The allOf key never appears in the output.
func (r *Resolver) Resolve(rootRef string) (*Resolved, error) {
	canonical, err := canonicalRef(rootRef)
	if err != nil {
		return nil, &ResolutionError{
			Kind:    KindMissingFragment,
			Ref:     rootRef,
			Message: "failed to canonicalize root reference",
			Cause:   err,
		}
	}

	if r.cache != nil {
		if resolved, ok := r.cache.Lookup(canonical); ok {
			if r.metrics != nil {
				r.metrics.ResolutionCacheHit()
			}
			return resolved, nil
		}
		if r.metrics != nil {
			r.metrics.ResolutionCacheMiss()
		}
	}

	res := &resolution{
		loader:       r.loader,
		visiting:     make(map[string]bool),
		seen:         make(map[string]bool),
		requiredSeen: make(map[string]bool),
		properties:   make(map[string]any),
		definitions:  make(map[string]any),
	}

	root, err := res.resolveDocument(canonical)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		RootRef:              canonical,
		Properties:           res.properties,
		Required:             res.required,
		Definitions:          res.definitions,
		AdditionalProperties: root.AdditionalProperties,
		Fragments:            res.fragments,
	}

	// The flattened result must itself be a valid self-contained schema.
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(resolved.AsMap())); err != nil {
		return nil, &ResolutionError{
			Kind:    KindMalformedFragment,
			Ref:     canonical,
			Message: "flattened schema is not a valid schema",
			Cause:   err,
		}
	}

	if r.cache != nil {
		fingerprint, err := FingerprintFiles(resolved.Fragments)
		if err == nil {
			r.cache.Store(canonical, fingerprint, resolved)
		} else {
			r.logger.Warn("skipping cache store, fingerprint failed",
				"root", canonical,
				"error", err,
			)
		}
	}

	r.logger.Debug("schema resolved",
		"root", canonical,
		"fragments", len(resolved.Fragments),
		"properties", len(resolved.Properties),
	)

	return resolved, nil
}

// resolution holds the accumulator state of one Resolve call.
type resolution struct {
	loader *DocumentLoader

	// visiting marks documents on the current resolution path for cycle
	// detection; stack mirrors it in order for error reporting.
	visiting map[string]bool
	stack    []string

	// seen tracks every document merged so far; fragments records them in
	// resolution order for fingerprinting.
	seen      map[string]bool
	fragments []string

	properties   map[string]any
	required     []string
	requiredSeen map[string]bool
	definitions  map[string]any
}

// resolveDocument loads the document at the canonical ref, merges its own
// content, then recurses depth-first into its allOf entries.
func (s *resolution) resolveDocument(ref string) (*Document, error) {
	if s.visiting[ref] {
		cycle := append(append([]string{}, s.stack...), ref)
		return nil, &ResolutionError{
			Kind:    KindCyclicReference,
			Ref:     ref,
			Cycle:   cycle,
			Message: "circular fragment reference",
		}
	}

	doc, err := s.loader.Load(ref)
	if err != nil {
		return nil, err
	}

	s.visiting[doc.Ref] = true
	s.stack = append(s.stack, doc.Ref)

	if !s.seen[doc.Ref] {
		s.seen[doc.Ref] = true
		s.fragments = append(s.fragments, doc.Ref)
	}

	s.merge(doc.Properties, doc.Required, doc.Definitions)

	for i, entry := range doc.AllOf {
		if entry.Ref != "" {
			// References resolve relative to the referencing document.
			target := filepath.Join(filepath.Dir(doc.Ref), filepath.FromSlash(entry.Ref))
			canonical, err := canonicalRef(target)
			if err != nil {
				return nil, &ResolutionError{
					Kind:    KindMissingFragment,
					Ref:     entry.Ref,
					Message: "failed to canonicalize fragment reference",
					Cause:   err,
				}
			}
			if _, err := s.resolveDocument(canonical); err != nil {
				return nil, err
			}
			continue
		}

		if entry.Type != "" && entry.Type != "object" {
			return nil, &ResolutionError{
				Kind:    KindMalformedFragment,
				Ref:     doc.Ref,
				Message: fmt.Sprintf("allOf entry %d has type %q, must be \"object\"", i, entry.Type),
			}
		}
		s.merge(entry.Properties, entry.Required, entry.Definitions)
	}

	s.stack = s.stack[:len(s.stack)-1]
	delete(s.visiting, doc.Ref)

	return doc, nil
}

// merge folds one document's content into the accumulator. Properties and
// definitions are shallow-merged last-wins; required entries are unioned in
// first-seen order.
func (s *resolution) merge(properties map[string]any, required []string, definitions map[string]any) {
	for key, value := range properties {
		s.properties[key] = value
	}
	for key, value := range definitions {
		s.definitions[key] = value
	}
	for _, name := range required {
		if s.requiredSeen[name] {
			continue
		}
		s.requiredSeen[name] = true
		s.required = append(s.required, name)
	}
}
