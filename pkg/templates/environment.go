package templates

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Request-context keys the environment reads, overridable per environment
// for embedders that namespace their context differently.
const (
	DefaultTemplateParamsKey = "pywb.template_params"
	DefaultTemplateDirKey    = "pywb.templates_dir"
)

// Option configures an Env before construction.
type Option func(*envConfig)

type envConfig struct {
	paths      []string
	packages   []string
	assetsPath string
	globals    map[string]any
	overlay    *Env
	paramsKey  string
	dirKey     string
}

// WithSearchPaths replaces the ordered directory search list. The default
// ("templates", ".", "/") is a last-resort fallback; callers should override.
func WithSearchPaths(paths ...string) Option {
	return func(cfg *envConfig) {
		cfg.paths = paths
	}
}

// WithPackages replaces the ordered list of bundled template packages
// searched after the directory paths. Defaults to the pywb package.
func WithPackages(names ...string) Option {
	return func(cfg *envConfig) {
		cfg.packages = names
	}
}

// WithAssetManifest attaches an asset-bundling sub-environment loaded from
// the given YAML manifest.
func WithAssetManifest(path string) Option {
	return func(cfg *envConfig) {
		cfg.assetsPath = path
	}
}

// WithGlobals merges extra values into every render call's namespace.
func WithGlobals(globals map[string]any) Option {
	return func(cfg *envConfig) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(globals))
		}
		for k, v := range globals {
			cfg.globals[k] = v
		}
	}
}

// WithOverlay layers the new environment on top of base: the filter registry
// is shared and base globals seed the new namespace, while template sources
// come from the new configuration.
func WithOverlay(base *Env) Option {
	return func(cfg *envConfig) {
		cfg.overlay = base
	}
}

// WithTemplateParamsKey overrides the request-context key holding the
// per-request template parameter bag.
func WithTemplateParamsKey(key string) Option {
	return func(cfg *envConfig) {
		cfg.paramsKey = key
	}
}

// WithTemplateDirKey overrides the request-context key naming the
// collection-specific template override directory.
func WithTemplateDirKey(key string) Option {
	return func(cfg *envConfig) {
		cfg.dirKey = key
	}
}

// Env owns the ordered template sources, the named render filters and the
// optional asset environment, and exposes the render entry point the insert
// views build on. Construct once at startup; immutable afterwards apart from
// the internal template cache.
type Env struct {
	set       *pongo2.TemplateSet
	loader    *choiceLoader
	filters   *filterRegistry
	globals   map[string]any
	assets    *AssetEnv
	resolver  *Resolver
	paramsKey string
	dirKey    string

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

// New constructs a template environment.
func New(opts ...Option) (*Env, error) {
	cfg := envConfig{
		paths:     []string{"templates", ".", "/"},
		packages:  []string{"pywb"},
		paramsKey: DefaultTemplateParamsKey,
		dirKey:    DefaultTemplateDirKey,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	sources := make([]templateSource, 0, len(cfg.paths)+len(cfg.packages))
	for _, p := range cfg.paths {
		sources = append(sources, dirSource{root: p})
	}
	for _, name := range cfg.packages {
		sources = append(sources, pkgSource{name: name})
	}
	loader := newChoiceLoader(sources)

	set := pongo2.NewSet("pywb", loader)
	set.Options.TrimBlocks = true
	// Templates emit raw HTML/JS fragments; escaping is the template
	// author's responsibility, as in the upstream engine.
	pongo2.SetAutoescape(false)

	env := &Env{
		set:       set,
		loader:    loader,
		resolver:  NewResolver(),
		paramsKey: cfg.paramsKey,
		dirKey:    cfg.dirKey,
		cache:     make(map[string]*pongo2.Template),
	}

	if cfg.overlay != nil {
		env.filters = cfg.overlay.filters
	} else {
		env.filters = newFilterRegistry()
	}

	globals := make(map[string]any)
	if cfg.overlay != nil {
		for k, v := range cfg.overlay.globals {
			globals[k] = v
		}
	}
	for k, v := range cfg.globals {
		globals[k] = v
	}
	env.globals = globals
	if set.Globals == nil {
		set.Globals = make(pongo2.Context)
	}
	for k, v := range globals {
		set.Globals[k] = v
	}

	if cfg.assetsPath != "" {
		assets, err := LoadAssetEnv(cfg.assetsPath, env.resolver)
		if err != nil {
			return nil, err
		}
		env.assets = assets
		// Templates reach bundle URLs via {{ assets.URL("name") }}.
		set.Globals["assets"] = assets
	}

	return env, nil
}

// TemplateParamsKey returns the request-context key for the per-request
// template parameter bag.
func (e *Env) TemplateParamsKey() string { return e.paramsKey }

// TemplateDirKey returns the request-context key naming the override
// template directory.
func (e *Env) TemplateDirKey() string { return e.dirKey }

// Assets returns the attached asset environment, or nil when no manifest was
// configured.
func (e *Env) Assets() *AssetEnv { return e.assets }

// Resolver returns the environment's pkg:// resource resolver.
func (e *Env) Resolver() *Resolver { return e.resolver }

// Filters lists the registered filter names.
func (e *Env) Filters() []string { return e.filters.names() }

// RegisterFilter installs a named render-time filter. Registering an
// existing name replaces it: last registration wins.
func (e *Env) RegisterFilter(name string, fn FilterFunc) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("templates: filter name and function required")
	}
	e.filters.register(name, fn)
	return nil
}

// Render looks templatePath up across the ordered source list and renders it
// with params layered over the environment globals. A path no source
// contains yields ErrTemplateNotFound before any rendering begins; every
// other failure yields ErrTemplateRender.
func (e *Env) Render(templatePath string, params map[string]any) (string, error) {
	ok, err := e.loader.contains(templatePath)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, templatePath)
	}

	tmpl, err := e.template(templatePath)
	if err != nil {
		// Render the cause as text: a missing include surfacing here is
		// a render failure of the found template, not a not-found of it.
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateRender, templatePath, err)
	}

	ctx := make(pongo2.Context, len(params))
	for k, v := range params {
		ctx[k] = v
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateRender, templatePath, err)
	}
	return out, nil
}

func (e *Env) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, err
	}
	e.cache[name] = tmpl
	return tmpl, nil
}
