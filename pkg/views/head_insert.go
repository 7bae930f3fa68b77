package views

import (
	"fmt"

	"github.com/halvir/pywb/pkg/config"
	"github.com/halvir/pywb/pkg/templates"
	"github.com/halvir/pywb/pkg/timeutils"
	"github.com/halvir/pywb/pkg/wburl"
)

// HeadInsertView renders the HTML inserted into the head of replayed pages.
type HeadInsertView struct {
	*InsertView
}

// NewHeadInsertView creates a head-insert view for insertFile.
func NewHeadInsertView(env *templates.Env, insertFile string, opts ...InsertOption) *HeadInsertView {
	return &HeadInsertView{InsertView: NewInsertView(env, insertFile, opts...)}
}

// HeadInsertRequest carries the parameters known before content lookup.
type HeadInsertRequest struct {
	WbURL      *wburl.WbURL
	Prefix     string
	HostPrefix string
	TopURL     string
	Context    RequestContext
	Coll       string
	IsFramed   bool
	IncludeTS  bool
	Config     *config.Config
	Extra      map[string]any
}

// HeadInsert is a partially bound head insert: parameters fixed by
// CreateInsertFunc, finalized once the CDX record is located.
type HeadInsert struct {
	view      *HeadInsertView
	rctx      RequestContext
	params    map[string]any
	includeTS bool
}

// CreateInsertFunc fixes the early-known parameters and returns the
// partially bound insert to finish once the record arrives.
func (v *HeadInsertView) CreateInsertFunc(req HeadInsertRequest) *HeadInsert {
	params := cloneParams(req.Extra, 8)
	params["host_prefix"] = req.HostPrefix
	params["wb_prefix"] = req.Prefix
	params["wb_url"] = req.WbURL
	params["top_url"] = req.TopURL
	params["coll"] = req.Coll
	// The template layer compares these as strings, never as booleans.
	params["is_framed"] = boolStr(req.IsFramed)

	if req.Config != nil {
		params["config"] = req.Config
		if proxy := req.Config.Proxy; proxy != nil && proxy.Coll == req.Coll {
			mode := ""
			if proxy.UseWombat {
				mode += "w"
			}
			if proxy.UsePreserveWorker {
				mode += "p"
			}
			params["wombat_mode"] = mode
		}
	}

	return &HeadInsert{
		view:      v,
		rctx:      req.Context,
		params:    params,
		includeTS: req.IncludeTS,
	}
}

// Finish renders the head insert for the located record. rule identifies the
// rewrite rule that matched the response; it is part of the replay
// pipeline's callback contract and not consumed here.
func (h *HeadInsert) Finish(rule string, cdx CDX) (string, error) {
	_ = rule

	params := cloneParams(h.params, 5)
	if h.includeTS {
		params["wombat_ts"] = cdx.Timestamp
	} else {
		params["wombat_ts"] = ""
	}
	sec, err := timeutils.ToSec(cdx.Timestamp)
	if err != nil {
		return "", fmt.Errorf("views: head insert timestamp: %w", err)
	}
	params["wombat_sec"] = sec
	params["is_live"] = boolStr(cdx.IsLive)
	params["cdx"] = cdx

	if h.view.banner != nil {
		html, err := h.view.banner.RenderToString(h.rctx, cloneParams(params, 0))
		if err != nil {
			return "", err
		}
		params["banner_html"] = html
	}

	return h.view.RenderToString(h.rctx, params)
}
