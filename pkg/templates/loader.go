package templates

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// templateSource is one root in the ordered template search list.
type templateSource interface {
	// open returns the template contents. ok is false when this source
	// simply does not contain the path; err reports real read failures.
	open(name string) (r io.Reader, ok bool, err error)
	// key identifies the source for order-preserving deduplication.
	key() string
}

// dirSource looks templates up under a filesystem directory.
type dirSource struct {
	root string
}

func (s dirSource) key() string { return "dir:" + s.root }

func (s dirSource) open(name string) (io.Reader, bool, error) {
	p := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(name, "/")))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return nil, false, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false, fmt.Errorf("templates: read %s: %w", p, err)
	}
	return bytes.NewReader(data), true, nil
}

// pkgTemplateRoot is the conventional templates directory inside a bundled
// package tree.
const pkgTemplateRoot = "templates"

// pkgSource looks templates up inside a registered package's bundled
// templates directory. The registry lookup happens per open so packages
// registered by a later init still resolve.
type pkgSource struct {
	name string
}

func (s pkgSource) key() string { return "pkg:" + s.name }

func (s pkgSource) open(name string) (io.Reader, bool, error) {
	fsys, dir, ok := lookupPackage(s.name)
	if !ok {
		return nil, false, nil
	}
	rel := path.Join(pkgTemplateRoot, strings.TrimPrefix(path.Clean("/"+name), "/"))

	if dir != "" {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, false, fmt.Errorf("templates: read %s: %w", p, err)
			}
			return bytes.NewReader(data), true, nil
		}
	}
	if fsys != nil {
		data, err := fs.ReadFile(fsys, rel)
		if err == nil {
			return bytes.NewReader(data), true, nil
		}
	}
	return nil, false, nil
}

// choiceLoader implements pongo2.TemplateLoader over the ordered source
// list: first source containing the path wins. Relative includes resolve
// against the including template's own directory, using "/" regardless of
// the host filesystem, because template paths are a logical namespace.
type choiceLoader struct {
	sources []templateSource
}

func newChoiceLoader(sources []templateSource) *choiceLoader {
	seen := make(map[string]struct{}, len(sources))
	deduped := make([]templateSource, 0, len(sources))
	for _, src := range sources {
		if _, dup := seen[src.key()]; dup {
			continue
		}
		seen[src.key()] = struct{}{}
		deduped = append(deduped, src)
	}
	return &choiceLoader{sources: deduped}
}

// Abs joins a template name relative to the template that referenced it.
func (l *choiceLoader) Abs(base, name string) string {
	if base == "" || strings.HasPrefix(name, "/") {
		return name
	}
	return path.Join(path.Dir(base), name)
}

// Get returns the first source's copy of the template.
func (l *choiceLoader) Get(p string) (io.Reader, error) {
	for _, src := range l.sources {
		r, ok, err := src.open(p)
		if err != nil {
			return nil, err
		}
		if ok {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, p)
}

// contains probes the source list without keeping the contents.
func (l *choiceLoader) contains(p string) (bool, error) {
	for _, src := range l.sources {
		_, ok, err := src.open(p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
