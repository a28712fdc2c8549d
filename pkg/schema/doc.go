// Package schema provides loading, resolution, and caching of modular,
// fragment-based website configuration schemas.
//
// A configuration schema is stored on disk as a root JSON document plus
// zero or more fragment documents linked through allOf/$ref entries. The
// resolver flattens a root document and every fragment it transitively
// references into a single self-contained schema with one properties map,
// a deduplicated required list, and a merged definitions map.
//
// # Core Components
//
// DocumentLoader handles file system access and JSON parsing for schema
// documents, with size and encoding validation.
//
// Resolver flattens a root document and its fragments, detecting missing
// fragments, reference cycles, and malformed documents.
//
// ResolutionCache memoizes resolved schemas keyed by the root document and
// a modification fingerprint of the full fragment set, so unchanged schema
// files are never re-resolved.
//
// FragmentWatcher monitors the schema directory for changes and purges the
// cache eagerly, with debouncing to prevent purge storms. The fingerprint
// check remains the correctness mechanism; the watcher only shortens the
// window in which a stale entry is consulted.
//
// # Basic Usage
//
// Resolving a root schema document:
//
//	resolver := schema.NewResolver(schema.NewDocumentLoader(nil), schema.NewResolutionCache(), nil)
//	resolved, err := resolver.Resolve("schemas/site.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A Resolver is safe for concurrent use: resolution is a pure function of
// the immutable fragment content, and cache writes are idempotent per
// fingerprint.
package schema
