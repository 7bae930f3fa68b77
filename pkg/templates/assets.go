package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AssetBundle is one named bundle from the asset manifest.
type AssetBundle struct {
	// Contents lists the bundle inputs, each either a plain path relative
	// to the manifest directory or a pkg:// address.
	Contents []string `yaml:"contents"`
	// Output names the built bundle file under the static URL prefix.
	Output string `yaml:"output"`
	// Filters optionally names the build-time filter chain. Carried for
	// the asset pipeline; not interpreted here.
	Filters string `yaml:"filters,omitempty"`
}

type assetManifest struct {
	Directory string                 `yaml:"directory"`
	URL       string                 `yaml:"url"`
	Bundles   map[string]AssetBundle `yaml:"bundles"`
}

// AssetEnv is the asset-bundling sub-environment attached to a template
// environment when an asset manifest is configured. Its single job here is
// mapping manifest entries to concrete files, routing pkg:// addresses
// through the package resolver.
type AssetEnv struct {
	directory string
	urlPrefix string
	bundles   map[string]AssetBundle
	resolver  *Resolver
}

// LoadAssetEnv parses a YAML asset manifest. A nil resolver gets a fresh one.
func LoadAssetEnv(path string, resolver *Resolver) (*AssetEnv, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("templates: read asset manifest %s: %w", path, err)
	}
	var m assetManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("templates: parse asset manifest %s: %w", path, err)
	}
	if resolver == nil {
		resolver = NewResolver()
	}
	directory := m.Directory
	if directory != "" && !filepath.IsAbs(directory) {
		directory = filepath.Join(filepath.Dir(path), directory)
	}
	return &AssetEnv{
		directory: directory,
		urlPrefix: strings.TrimSuffix(m.URL, "/"),
		bundles:   m.Bundles,
		resolver:  resolver,
	}, nil
}

// Bundle returns the raw manifest entry for name.
func (a *AssetEnv) Bundle(name string) (AssetBundle, bool) {
	b, ok := a.bundles[name]
	return b, ok
}

// Resolver exposes the pkg:// resolver the asset pipeline should use.
func (a *AssetEnv) Resolver() *Resolver {
	return a.resolver
}

// Resolve maps every entry of the named bundle to a filesystem path.
func (a *AssetEnv) Resolve(name string) ([]string, error) {
	b, ok := a.bundles[name]
	if !ok {
		return nil, fmt.Errorf("templates: unknown asset bundle %q", name)
	}
	out := make([]string, 0, len(b.Contents))
	for _, item := range b.Contents {
		p, err := a.resolver.Resolve(item)
		if err != nil {
			return nil, err
		}
		// Plain entries pass through the resolver unchanged; anchor
		// them to the manifest's directory.
		if p == item && !filepath.IsAbs(p) && a.directory != "" {
			p = filepath.Join(a.directory, filepath.FromSlash(p))
		}
		out = append(out, p)
	}
	return out, nil
}

// URL returns the public URL of the named bundle's built output.
func (a *AssetEnv) URL(name string) (string, error) {
	b, ok := a.bundles[name]
	if !ok {
		return "", fmt.Errorf("templates: unknown asset bundle %q", name)
	}
	if b.Output == "" {
		return "", fmt.Errorf("templates: asset bundle %q has no output", name)
	}
	return a.urlPrefix + "/" + strings.TrimPrefix(b.Output, "/"), nil
}
