package views

import (
	"github.com/halvir/pywb/pkg/templates"
	"github.com/halvir/pywb/pkg/timeutils"
	"github.com/halvir/pywb/pkg/wburl"
)

// TopFrameView renders the replay iframe wrapper.
type TopFrameView struct {
	*InsertView
}

// NewTopFrameView creates a top-frame view for insertFile.
func NewTopFrameView(env *templates.Env, insertFile string, opts ...InsertOption) *TopFrameView {
	return &TopFrameView{InsertView: NewInsertView(env, insertFile, opts...)}
}

// TopFrameRequest carries the parameters of one frame render.
type TopFrameRequest struct {
	WbURL      *wburl.WbURL
	Prefix     string
	HostPrefix string
	Context    RequestContext
	FrameMod   string
	ReplayMod  string
	Coll       string
	Extra      map[string]any
}

// GetTopFrame renders the frame insert. The embedded replay URL carries the
// replay modifier regardless of the modifier on the incoming archival URL;
// the timestamp falls back to the current time when the URL has none.
func (v *TopFrameView) GetTopFrame(req TopFrameRequest) (string, error) {
	embedURL := req.WbURL.ToStr(wburl.WithMod(req.ReplayMod))

	timestamp := req.WbURL.Timestamp
	if timestamp == "" {
		timestamp = timeutils.Now()
	}

	_, isProxy := req.Context[ProxyHostKey]

	params := map[string]any{
		"host_prefix": req.HostPrefix,
		"wb_prefix":   req.Prefix,
		"wb_url":      req.WbURL,
		"coll":        req.Coll,

		"options": map[string]any{
			"frame_mod":  req.FrameMod,
			"replay_mod": req.ReplayMod,
		},

		"embed_url": embedURL,
		"is_proxy":  isProxy,
		"timestamp": timestamp,
		"url":       req.WbURL.GetURL(),
	}

	for k, val := range req.Extra {
		params[k] = val
	}

	if v.banner != nil {
		html, err := v.banner.RenderToString(req.Context, cloneParams(params, 0))
		if err != nil {
			return "", err
		}
		params["banner_html"] = html
	}

	return v.RenderToString(req.Context, params)
}
