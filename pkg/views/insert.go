package views

import (
	"errors"

	"github.com/halvir/pywb/pkg/templates"
)

// RequestContext is the per-request key/value mapping the replay pipeline
// hands to the views. Lifetime is one request; the views never retain it.
type RequestContext map[string]any

// Well-known request-context keys.
const (
	HostPrefixKey = "pywb.host_prefix"
	AppPrefixKey  = "pywb.app_prefix"
	// ProxyHostKey is present when the request arrived through the
	// transparent proxy rather than direct framed replay.
	ProxyHostKey = "wsgiprox.proxy_host"
)

// Renderer is the contract shared by the insert views and the optional
// banner collaborator.
type Renderer interface {
	RenderToString(rctx RequestContext, params map[string]any) (string, error)
}

// InsertView resolves and renders one insert template.
type InsertView struct {
	env    *templates.Env
	file   string
	banner Renderer
}

var _ Renderer = (*InsertView)(nil)

// InsertOption configures an insert view.
type InsertOption func(*InsertView)

// WithBanner attaches a banner collaborator whose output is rendered first
// and injected under banner_html.
func WithBanner(banner Renderer) InsertOption {
	return func(v *InsertView) {
		v.banner = banner
	}
}

// NewInsertView creates a view rendering insertFile through env.
func NewInsertView(env *templates.Env, insertFile string, opts ...InsertOption) *InsertView {
	v := &InsertView{env: env, file: insertFile}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Env returns the view's template environment.
func (v *InsertView) Env() *templates.Env { return v.env }

// InsertFile returns the template file name this view renders.
func (v *InsertView) InsertFile() string { return v.file }

// RenderToString renders the insert. When the request context names an
// override template directory containing the insert file, that copy is used;
// an absent override falls through to the default search order. Any failure
// other than override absence propagates.
//
// Merge order for the rendered parameters: the request-context parameter bag
// first, then params (caller wins on collision), then the computed fields
// (raw context under "env", the static URL prefix) which always win.
func (v *InsertView) RenderToString(rctx RequestContext, params map[string]any) (string, error) {
	merged := make(map[string]any, len(params)+2)
	if bag, ok := rctx[v.env.TemplateParamsKey()].(map[string]any); ok {
		for k, val := range bag {
			merged[k] = val
		}
	}
	for k, val := range params {
		merged[k] = val
	}
	merged["env"] = map[string]any(rctx)
	merged["static_prefix"] = ctxString(rctx, HostPrefixKey) + ctxString(rctx, AppPrefixKey) + "/static"

	if dir := ctxString(rctx, v.env.TemplateDirKey()); dir != "" {
		// Template paths are a logical namespace: always "/", never the
		// host filesystem separator.
		out, err := v.env.Render(dir+"/"+v.file, merged)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, templates.ErrTemplateNotFound) {
			return "", err
		}
	}
	return v.env.Render(v.file, merged)
}

func ctxString(rctx RequestContext, key string) string {
	if s, ok := rctx[key].(string); ok {
		return s
	}
	return ""
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func cloneParams(params map[string]any, extra int) map[string]any {
	out := make(map[string]any, len(params)+extra)
	for k, v := range params {
		out[k] = v
	}
	return out
}
