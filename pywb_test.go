package pywb_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pywb "github.com/halvir/pywb"
	"github.com/halvir/pywb/pkg/config"
	"github.com/halvir/pywb/pkg/templates"
	"github.com/halvir/pywb/pkg/views"
	"github.com/halvir/pywb/pkg/wburl"
)

// bundledEnv builds an environment whose directory search paths miss so every
// render falls through to the embedded package templates.
func bundledEnv(t *testing.T) *templates.Env {
	t.Helper()
	env, err := pywb.NewEnv(
		templates.WithSearchPaths(filepath.Join(t.TempDir(), "absent")),
	)
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	return env
}

func TestBundledTemplatesPresent(t *testing.T) {
	for _, name := range []string{pywb.HeadInsertFile, pywb.FrameInsertFile, pywb.BannerFile} {
		if _, err := fs.Stat(pywb.TemplatesFS(), name); err != nil {
			t.Fatalf("bundled template %s: %v", name, err)
		}
	}
	if _, err := fs.Stat(pywb.StaticFS(), "wb.css"); err != nil {
		t.Fatalf("bundled static asset: %v", err)
	}
}

func TestHeadInsertFromBundledTemplate(t *testing.T) {
	env := bundledEnv(t)
	view := pywb.NewHeadInsertView(env, views.WithBanner(pywb.NewBannerView(env)))

	u, err := wburl.Parse("20140126101112/http://example.com/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	insert := view.CreateInsertFunc(views.HeadInsertRequest{
		WbURL:      u,
		Prefix:     "http://localhost:8080/demo/",
		HostPrefix: "http://localhost:8080",
		TopURL:     "http://localhost:8080/demo/20140126101112/http://example.com/",
		Context: views.RequestContext{
			views.HostPrefixKey: "http://localhost:8080",
		},
		Coll:      "demo",
		IsFramed:  true,
		IncludeTS: true,
		Config: &config.Config{
			Proxy: &config.ProxyConfig{Coll: "demo", UseWombat: true},
		},
	})

	out, err := insert.Finish("", views.CDX{
		URL:       "http://example.com/",
		Timestamp: "20140126101112",
	})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	for _, want := range []string{
		`wbinfo.url = "http://example.com/";`,
		`wbinfo.timestamp = "20140126101112";`,
		`wbinfo.timestamp_sec = 1390731072;`,
		`wbinfo.prefix = "http://localhost:8080/demo/";`,
		`wbinfo.is_framed = true;`,
		`wbinfo.is_live = false;`,
		`wbinfo.wombat_mode = "w";`,
		`_wb_frame_top_banner`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("head insert missing %q:\n%s", want, out)
		}
	}
}

func TestTopFrameFromBundledTemplate(t *testing.T) {
	env := bundledEnv(t)
	view := pywb.NewTopFrameView(env, views.WithBanner(pywb.NewBannerView(env)))

	u, err := wburl.Parse("20140126101112/http://example.com/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	out, err := view.GetTopFrame(views.TopFrameRequest{
		WbURL:      u,
		Prefix:     "http://localhost:8080/demo/",
		HostPrefix: "http://localhost:8080",
		Context:    views.RequestContext{},
		FrameMod:   "if_",
		ReplayMod:  "mp_",
		Coll:       "demo",
	})
	if err != nil {
		t.Fatalf("get top frame: %v", err)
	}

	for _, want := range []string{
		`src="http://localhost:8080/demo/20140126101112mp_/http://example.com/"`,
		`wbinfo.options = {"frame_mod":"if_","replay_mod":"mp_"};`,
		`<title>http://example.com/</title>`,
		`Sun, Jan 26 2014 10:11:12`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("top frame missing %q:\n%s", want, out)
		}
	}
}

func TestDirectoryTemplateOverridesBundled(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, pywb.HeadInsertFile)
	if err := os.WriteFile(override, []byte("custom head insert"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	env, err := pywb.NewEnv(templates.WithSearchPaths(dir))
	if err != nil {
		t.Fatalf("new env: %v", err)
	}

	out, err := env.Render(pywb.HeadInsertFile, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "custom head insert" {
		t.Fatalf("render = %q, directory copy must win over bundled", out)
	}
}
