package pywb

import (
	"github.com/halvir/pywb/pkg/templates"
	"github.com/halvir/pywb/pkg/views"
)

// Bundled insert template file names.
const (
	HeadInsertFile  = "head_insert.html"
	FrameInsertFile = "frame_insert.html"
	BannerFile      = "banner.html"
)

// Aliases exported via the root package for convenience.
type (
	Env            = templates.Env
	RequestContext = views.RequestContext
	CDX            = views.CDX
)

// NewEnv constructs a template environment; with no options it searches the
// default paths and falls back to the bundled pywb templates.
func NewEnv(opts ...templates.Option) (*templates.Env, error) {
	return templates.New(opts...)
}

// NewHeadInsertView returns a view rendering the bundled head insert.
func NewHeadInsertView(env *templates.Env, opts ...views.InsertOption) *views.HeadInsertView {
	return views.NewHeadInsertView(env, HeadInsertFile, opts...)
}

// NewTopFrameView returns a view rendering the bundled frame insert.
func NewTopFrameView(env *templates.Env, opts ...views.InsertOption) *views.TopFrameView {
	return views.NewTopFrameView(env, FrameInsertFile, opts...)
}

// NewBannerView returns the default banner collaborator for the insert
// views.
func NewBannerView(env *templates.Env) *views.InsertView {
	return views.NewInsertView(env, BannerFile)
}
