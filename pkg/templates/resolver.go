package templates

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// The package registry maps symbolic package names to their bundled file
// trees. Packages register at init time; the registry is effectively
// immutable once the process is serving requests.
var pkgRegistry = struct {
	sync.RWMutex
	fsys map[string]fs.FS
	dirs map[string]string
}{
	fsys: make(map[string]fs.FS),
	dirs: make(map[string]string),
}

// RegisterPackage associates a package name with its bundled file tree,
// typically an embed.FS rooted at the package's source directory.
func RegisterPackage(name string, fsys fs.FS) {
	pkgRegistry.Lock()
	defer pkgRegistry.Unlock()
	pkgRegistry.fsys[name] = fsys
}

// RegisterPackageDir associates a package name with an on-disk source
// directory. When present and the requested file exists there, it takes
// precedence over the bundled tree, so a source checkout serves its files
// directly.
func RegisterPackageDir(name, dir string) {
	pkgRegistry.Lock()
	defer pkgRegistry.Unlock()
	pkgRegistry.dirs[name] = dir
}

func lookupPackage(name string) (fs.FS, string, bool) {
	pkgRegistry.RLock()
	defer pkgRegistry.RUnlock()
	fsys, okFS := pkgRegistry.fsys[name]
	dir, okDir := pkgRegistry.dirs[name]
	return fsys, dir, okFS || okDir
}

// Resolver maps pkg://<package>/<path> addresses to filesystem paths. Items
// in any other form pass through unchanged for the surrounding asset
// environment's default strategy. Files served from a bundled (embedded)
// tree are extracted once into a per-resolver cache directory.
type Resolver struct {
	mu        sync.Mutex
	cacheDir  string
	extracted map[string]string
}

// NewResolver returns a resolver with an empty extraction cache.
func NewResolver() *Resolver {
	return &Resolver{extracted: make(map[string]string)}
}

func splitPackagePath(item string) (pkg, rel string, ok bool) {
	u, err := url.Parse(item)
	if err != nil || u.Scheme != "pkg" || u.Host == "" {
		return "", "", false
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), true
}

// Resolve returns the filesystem path for item. Non-pkg:// items are
// returned unchanged.
func (r *Resolver) Resolve(item string) (string, error) {
	pkgName, rel, ok := splitPackagePath(item)
	if !ok {
		return item, nil
	}

	rel = path.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrPackageResource, item)
	}

	fsys, dir, found := lookupPackage(pkgName)
	if !found {
		return "", fmt.Errorf("%w: package %q is not registered", ErrPackageResource, pkgName)
	}

	if dir != "" {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(p)
			if err != nil {
				return "", fmt.Errorf("templates: resolve %s: %w", item, err)
			}
			return abs, nil
		}
	}

	if fsys != nil {
		return r.extract(pkgName, fsys, rel)
	}
	return "", fmt.Errorf("%w: %s", ErrPackageResource, item)
}

func (r *Resolver) extract(pkgName string, fsys fs.FS, rel string) (string, error) {
	key := pkgName + "/" + rel

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.extracted[key]; ok {
		return p, nil
	}

	data, err := fs.ReadFile(fsys, rel)
	if err != nil {
		return "", fmt.Errorf("%w: pkg://%s/%s", ErrPackageResource, pkgName, rel)
	}

	if r.cacheDir == "" {
		dir, err := os.MkdirTemp("", "pywb-assets-")
		if err != nil {
			return "", fmt.Errorf("templates: create extraction cache: %w", err)
		}
		r.cacheDir = dir
	}

	dst := filepath.Join(r.cacheDir, pkgName, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("templates: extract %s: %w", key, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("templates: extract %s: %w", key, err)
	}

	r.extracted[key] = dst
	return dst, nil
}
