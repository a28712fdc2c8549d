package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// DocumentLoaderConfig contains configuration for the document loader.
type DocumentLoaderConfig struct {
	// MaxFileSize is the maximum size of a single schema document in bytes.
	MaxFileSize int64
}

// DefaultDocumentLoaderConfig returns the default loader configuration.
func DefaultDocumentLoaderConfig() *DocumentLoaderConfig {
	return &DocumentLoaderConfig{
		MaxFileSize: 1 << 20, // 1 MiB
	}
}

// DocumentLoader handles loading schema documents from the file system.
// It performs file size validation, UTF-8 validation, and JSON parsing.
type DocumentLoader struct {
	config *DocumentLoaderConfig
}

// NewDocumentLoader creates a new document loader with the given
// configuration.
func NewDocumentLoader(config *DocumentLoaderConfig) *DocumentLoader {
	if config == nil {
		config = DefaultDocumentLoaderConfig()
	}
	return &DocumentLoader{config: config}
}

// Load loads and parses a single schema document from the given path.
// The returned document's Ref is the canonical absolute path.
func (l *DocumentLoader) Load(path string) (*Document, error) {
	canonical, err := canonicalRef(path)
	if err != nil {
		return nil, &ResolutionError{
			Kind:    KindMissingFragment,
			Ref:     path,
			Message: "failed to canonicalize path",
			Cause:   err,
		}
	}

	fileInfo, err := os.Stat(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ResolutionError{
				Kind:    KindMissingFragment,
				Ref:     canonical,
				Message: "fragment not found",
				Cause:   err,
			}
		}
		return nil, &ResolutionError{
			Kind:    KindMissingFragment,
			Ref:     canonical,
			Message: "failed to access fragment",
			Cause:   err,
		}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &ResolutionError{
			Kind:    KindMissingFragment,
			Ref:     canonical,
			Message: "not a regular file",
		}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &ResolutionError{
			Kind:    KindMalformedFragment,
			Ref:     canonical,
			Message: fmt.Sprintf("fragment size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(canonical)
	if err != nil {
		return nil, &ResolutionError{
			Kind:    KindMissingFragment,
			Ref:     canonical,
			Message: "failed to read fragment",
			Cause:   err,
		}
	}

	if !utf8.Valid(data) {
		return nil, &ResolutionError{
			Kind:    KindMalformedFragment,
			Ref:     canonical,
			Message: "fragment contains invalid UTF-8 encoding",
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ResolutionError{
			Kind:    KindMalformedFragment,
			Ref:     canonical,
			Message: "JSON parsing failed",
			Cause:   err,
		}
	}

	if doc.Type != "object" {
		return nil, &ResolutionError{
			Kind:    KindMalformedFragment,
			Ref:     canonical,
			Message: fmt.Sprintf("fragment type is %q, must be \"object\"", doc.Type),
		}
	}

	doc.Ref = canonical
	return &doc, nil
}

// canonicalRef normalizes a document path to its absolute canonical form,
// resolving symlinks when the file exists.
func canonicalRef(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return absPath, nil
		}
		return "", err
	}

	return realPath, nil
}
