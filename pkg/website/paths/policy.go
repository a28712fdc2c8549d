package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// DefaultContentRoot is the conventional name of the content subtree
// inside a website project.
const DefaultContentRoot = "sources"

// ConfigFileName is the fixed conventional location of a website's
// configuration file inside its project root.
const ConfigFileName = "site.json"

// StagingDirName is the hidden sibling directory in which operations
// stage their results before commit.
const StagingDirName = ".staging"

// Policy canonicalizes website project roots and validates relative
// content paths against them. A Policy is immutable and safe for
// concurrent use.
type Policy struct {
	sitesRoot   string
	contentRoot string
}

// New creates a path policy rooted at sitesRoot, the directory that holds
// every website project. contentRoot is the fixed segment of the content
// subtree inside each project; if empty, DefaultContentRoot is used.
func New(sitesRoot, contentRoot string) (*Policy, error) {
	if sitesRoot == "" {
		return nil, fmt.Errorf("sites root must not be empty")
	}
	if contentRoot == "" {
		contentRoot = DefaultContentRoot
	}
	if strings.ContainsRune(contentRoot, os.PathSeparator) || strings.ContainsRune(contentRoot, '/') {
		return nil, fmt.Errorf("content root %q must be a single path segment", contentRoot)
	}

	absRoot, err := filepath.Abs(sitesRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize sites root %q: %w", sitesRoot, err)
	}
	if realRoot, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = realRoot
	}

	return &Policy{
		sitesRoot:   absRoot,
		contentRoot: contentRoot,
	}, nil
}

// SitesRoot returns the canonical directory that holds every project.
func (p *Policy) SitesRoot() string {
	return p.sitesRoot
}

// ContentRoot returns the fixed content-root segment.
func (p *Policy) ContentRoot() string {
	return p.contentRoot
}

// CanonicalRoot maps a website identity to its canonical project root
// directory. The identity is an opaque user-chosen name; anything that is
// not a single plain path segment is rejected.
func (p *Policy) CanonicalRoot(identity string) (string, error) {
	if err := p.CheckIdentity(identity); err != nil {
		return "", err
	}
	return filepath.Join(p.sitesRoot, identity), nil
}

// CheckIdentity validates a website identity without resolving it.
func (p *Policy) CheckIdentity(identity string) error {
	if identity == "" {
		return &PathError{
			Kind:    KindTraversal,
			Path:    identity,
			Message: "website name must not be empty",
		}
	}
	if filepath.IsAbs(identity) {
		return &PathError{
			Kind:    KindAbsoluteRejected,
			Path:    identity,
			Message: "website name must not be an absolute path",
		}
	}
	if strings.ContainsRune(identity, '/') || strings.ContainsRune(identity, os.PathSeparator) {
		return &PathError{
			Kind:    KindTraversal,
			Path:    identity,
			Message: "website name must not contain path separators",
		}
	}
	if identity == "." || identity == ".." || strings.HasPrefix(identity, ".") {
		return &PathError{
			Kind:    KindTraversal,
			Path:    identity,
			Message: "website name must not begin with a dot",
		}
	}
	return nil
}

// ConfigFile returns the configuration file path inside a project root.
func (p *Policy) ConfigFile(root string) string {
	return filepath.Join(root, ConfigFileName)
}

// ContentDir returns the content subtree directory inside a project root.
func (p *Policy) ContentDir(root string) string {
	return filepath.Join(root, p.contentRoot)
}

// StagingRoot returns the directory, sibling to every project root, in
// which operations stage their results.
func (p *Policy) StagingRoot() string {
	return filepath.Join(p.sitesRoot, StagingDirName)
}

// StagingPath returns a staging location for the given identity and
// uniqueness token.
func (p *Policy) StagingPath(identity, token string) string {
	return filepath.Join(p.StagingRoot(), fmt.Sprintf("%s-%s", identity, token))
}

// ResolveContentPath resolves a caller-supplied relative content path
// against a project root and returns the absolute path of the content
// file.
//
// Rules, applied in order:
//
//  1. an absolute relative path is rejected;
//  2. a path containing a parent-directory traversal segment anywhere is
//     rejected;
//  3. a leading content-root segment is stripped exactly once, repairing
//     historically double-prefixed content references (only an exact,
//     fully matched leading component counts; a second leading occurrence
//     after the repair is rejected as corrupted data);
//  4. the repaired path is joined under the project's content root and
//     the result is confirmed to be lexically contained within the
//     project root, independent of rule 2.
func (p *Policy) ResolveContentPath(root, relative string) (string, error) {
	if filepath.IsAbs(relative) {
		return "", &PathError{
			Kind:    KindAbsoluteRejected,
			Path:    relative,
			Message: "content path must be project-relative",
		}
	}

	normalized := filepath.ToSlash(relative)
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", &PathError{
				Kind:    KindTraversal,
				Path:    relative,
				Message: "content path must not contain parent-directory segments",
			}
		}
	}

	repaired, stripped := stripLeadingSegment(normalized, p.contentRoot)
	if stripped {
		if _, twice := stripLeadingSegment(repaired, p.contentRoot); twice {
			return "", &PathError{
				Kind:    KindPrefixDuplication,
				Path:    relative,
				Message: fmt.Sprintf("content path duplicates the %q prefix more than once", p.contentRoot),
			}
		}
	}

	contentBase := filepath.Join(root, p.contentRoot)
	resolved, err := securejoin.SecureJoin(contentBase, filepath.FromSlash(repaired))
	if err != nil {
		return "", &PathError{
			Kind:    KindTraversal,
			Path:    relative,
			Message: "content path could not be safely joined",
		}
	}

	// Containment check independent of rule 2, against encoded or
	// symlinked inputs the earlier lexical checks cannot see.
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", &PathError{
			Kind:    KindTraversal,
			Path:    relative,
			Message: "content path resolves outside the project root",
		}
	}

	return resolved, nil
}

// stripLeadingSegment removes one exact leading path component equal to
// segment. A component that merely begins with segment is left untouched.
func stripLeadingSegment(path, segment string) (string, bool) {
	if path == segment {
		return "", true
	}
	if strings.HasPrefix(path, segment+"/") {
		return path[len(segment)+1:], true
	}
	return path, false
}
