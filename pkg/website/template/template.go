// Package template supplies initial website file trees from named
// templates. A template is a directory whose contents are copied verbatim
// into a new project's staging area.
package template

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Source maps template names to initial file trees.
type Source interface {
	// Materialize copies the named template's tree into destDir, which
	// must already exist.
	Materialize(ctx context.Context, name, destDir string) error

	// List returns the available template names, sorted.
	List() ([]string, error)
}

// DirSource is a Source backed by a directory of template directories,
// one per template name.
type DirSource struct {
	root string
}

// NewDirSource creates a template source rooted at the given directory.
func NewDirSource(root string) (*DirSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("template directory %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template path %q is not a directory", root)
	}
	return &DirSource{root: root}, nil
}

// List returns the available template names, sorted.
func (s *DirSource) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Materialize copies the named template's tree into destDir. Top-level
// entries are copied concurrently; any failure aborts the whole copy.
func (s *DirSource) Materialize(ctx context.Context, name, destDir string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid template name %q", name)
	}

	templateDir := filepath.Join(s.root, name)
	info, err := os.Stat(templateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("template %q not found", name)
		}
		return fmt.Errorf("failed to access template %q: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("template %q is not a directory", name)
	}

	entries, err := os.ReadDir(templateDir)
	if err != nil {
		return fmt.Errorf("failed to read template %q: %w", name, err)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, entry := range entries {
		src := filepath.Join(templateDir, entry.Name())
		dst := filepath.Join(destDir, entry.Name())
		g.Go(func() error {
			return copyPath(src, dst)
		})
	}
	return g.Wait()
}

// copyPath copies a file or directory tree from src to dst.
func copyPath(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if info.IsDir() {
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := copyPath(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	if !info.Mode().IsRegular() {
		// Symlinks and other special files are not part of a template.
		return nil
	}

	return copyFile(src, dst, info.Mode().Perm())
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
