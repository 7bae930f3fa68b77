package templates

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/halvir/pywb/pkg/timeutils"
)

// FilterFunc is a named pure function callable from template markup: it maps
// a template value (plus one optional argument) to a replacement value.
type FilterFunc func(in any, param any) (any, error)

// defaultTSFormat renders timestamps the way the bundled banner shows them.
const defaultTSFormat = "%a, %b %d %Y %H:%M:%S"

// filterRegistry tracks the named filters of an environment. Filter
// registration is process-wide (the underlying engine keeps one filter
// table), which fits the init-once lifecycle: environments register their
// filters at construction and treat them as immutable afterwards.
type filterRegistry struct {
	mu      sync.RWMutex
	filters map[string]FilterFunc
}

func newFilterRegistry() *filterRegistry {
	r := &filterRegistry{filters: make(map[string]FilterFunc)}
	r.register("format_ts", filterFormatTS)
	r.register("urlsplit", filterURLSplit)
	r.register("tojson", filterToJSON)
	r.register("sanitize_html", filterSanitizeHTML)
	return r
}

// register installs fn under name. Re-registering an existing name replaces
// it: last registration wins, which is how callers override a default filter
// for testing.
func (r *filterRegistry) register(name string, fn FilterFunc) {
	r.mu.Lock()
	r.filters[name] = fn
	r.mu.Unlock()

	wrapped := wrapFilter(fn)
	if pongo2.FilterExists(name) {
		_ = pongo2.ReplaceFilter(name, wrapped)
		return
	}
	_ = pongo2.RegisterFilter(name, wrapped)
}

func (r *filterRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.filters))
	for name := range r.filters {
		out = append(out, name)
	}
	return out
}

func wrapFilter(fn FilterFunc) pongo2.FilterFunction {
	return func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil && !param.IsNil() {
			paramVal = param.Interface()
		}
		out, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter", OrigError: err}
		}
		return pongo2.AsValue(out), nil
	}
}

func filterString(in any) string {
	if s, ok := in.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", in)
}

// filterFormatTS formats an archive timestamp. The pattern "%s" returns the
// epoch seconds instead of a calendar rendering.
func filterFormatTS(in any, param any) (any, error) {
	ts := filterString(in)
	format := defaultTSFormat
	if s, ok := param.(string); ok && s != "" {
		format = s
	}
	if format == "%s" {
		return timeutils.ToSec(ts)
	}
	return timeutils.Format(ts, format)
}

// filterURLSplit decomposes a URL into its components.
func filterURLSplit(in any, _ any) (any, error) {
	u, err := url.Parse(filterString(in))
	if err != nil {
		return nil, fmt.Errorf("urlsplit: %w", err)
	}
	return map[string]any{
		"scheme":   u.Scheme,
		"netloc":   u.Host,
		"host":     u.Hostname(),
		"port":     u.Port(),
		"path":     u.Path,
		"query":    u.RawQuery,
		"fragment": u.Fragment,
	}, nil
}

// filterToJSON serializes any render-time value to a JSON string.
func filterToJSON(in any, _ any) (any, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("tojson: %w", err)
	}
	return string(data), nil
}

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

func htmlSanitizer() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

// filterSanitizeHTML strips unsafe markup from metadata strings templates
// interpolate into replayed pages.
func filterSanitizeHTML(in any, _ any) (any, error) {
	return htmlSanitizer().Sanitize(filterString(in)), nil
}
