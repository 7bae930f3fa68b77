package views_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/halvir/pywb/pkg/config"
	"github.com/halvir/pywb/pkg/views"
	"github.com/halvir/pywb/pkg/wburl"
)

func mustParseURL(t *testing.T, raw string) *wburl.WbURL {
	t.Helper()
	u, err := wburl.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func sampleCDX() views.CDX {
	return views.CDX{
		URLKey:    "com,example)/",
		URL:       "http://example.com/",
		Timestamp: "20140126101112",
		Mime:      "text/html",
		Status:    "200",
	}
}

// headInsertParams runs the full two-phase flow and captures the final
// parameter map through the banner collaborator.
func headInsertParams(t *testing.T, req views.HeadInsertRequest, cdx views.CDX) map[string]any {
	t.Helper()
	env, _ := newViewEnv(t, map[string]string{
		"head_insert.html": "head",
		"banner.html":      "banner",
	})
	banner := &captureBanner{out: "BANNER"}
	view := views.NewHeadInsertView(env, "head_insert.html", views.WithBanner(banner))

	insert := view.CreateInsertFunc(req)
	if _, err := insert.Finish("", cdx); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if banner.calls != 1 {
		t.Fatalf("banner rendered %d times", banner.calls)
	}
	return banner.params
}

func TestHeadInsertBaseParams(t *testing.T) {
	u := mustParseURL(t, "20140126101112/http://example.com/")
	params := headInsertParams(t, views.HeadInsertRequest{
		WbURL:      u,
		Prefix:     "http://localhost:8080/demo/",
		HostPrefix: "http://localhost:8080",
		TopURL:     "http://localhost:8080/demo/20140126101112/http://example.com/",
		Context:    views.RequestContext{},
		Coll:       "demo",
		IsFramed:   true,
		IncludeTS:  true,
	}, sampleCDX())

	if params["host_prefix"] != "http://localhost:8080" {
		t.Fatalf("host_prefix = %v", params["host_prefix"])
	}
	if params["wb_prefix"] != "http://localhost:8080/demo/" {
		t.Fatalf("wb_prefix = %v", params["wb_prefix"])
	}
	if params["wb_url"] != u {
		t.Fatalf("wb_url = %v", params["wb_url"])
	}
	if params["coll"] != "demo" {
		t.Fatalf("coll = %v", params["coll"])
	}
	if params["is_framed"] != "true" {
		t.Fatalf("is_framed = %v, must be the literal string", params["is_framed"])
	}
	if params["is_live"] != "false" {
		t.Fatalf("is_live = %v, must be the literal string", params["is_live"])
	}
	if params["wombat_ts"] != "20140126101112" {
		t.Fatalf("wombat_ts = %v", params["wombat_ts"])
	}
	if params["wombat_sec"] != int64(1390731072) {
		t.Fatalf("wombat_sec = %v", params["wombat_sec"])
	}
	if got, ok := params["cdx"].(views.CDX); !ok || got.URL != "http://example.com/" {
		t.Fatalf("cdx = %v", params["cdx"])
	}
}

func TestHeadInsertExcludeTS(t *testing.T) {
	params := headInsertParams(t, views.HeadInsertRequest{
		WbURL:     mustParseURL(t, "20140126101112/http://example.com/"),
		Context:   views.RequestContext{},
		IncludeTS: false,
	}, sampleCDX())

	if params["wombat_ts"] != "" {
		t.Fatalf("wombat_ts = %v, want empty when timestamp excluded", params["wombat_ts"])
	}
	if params["wombat_sec"] != int64(1390731072) {
		t.Fatalf("wombat_sec = %v, must be set regardless", params["wombat_sec"])
	}
}

func TestHeadInsertWombatMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		coll string
		want string
		set  bool
	}{
		{
			name: "both flags",
			cfg: &config.Config{Proxy: &config.ProxyConfig{
				Coll: "demo", UseWombat: true, UsePreserveWorker: true,
			}},
			coll: "demo", want: "wp", set: true,
		},
		{
			name: "wombat only",
			cfg: &config.Config{Proxy: &config.ProxyConfig{
				Coll: "demo", UseWombat: true,
			}},
			coll: "demo", want: "w", set: true,
		},
		{
			name: "preserve only",
			cfg: &config.Config{Proxy: &config.ProxyConfig{
				Coll: "demo", UsePreserveWorker: true,
			}},
			coll: "demo", want: "p", set: true,
		},
		{
			name: "neither flag",
			cfg: &config.Config{Proxy: &config.ProxyConfig{
				Coll: "demo",
			}},
			coll: "demo", want: "", set: true,
		},
		{
			name: "other collection",
			cfg: &config.Config{Proxy: &config.ProxyConfig{
				Coll: "other", UseWombat: true,
			}},
			coll: "demo", set: false,
		},
		{
			name: "no proxy section",
			cfg:  &config.Config{},
			coll: "demo", set: false,
		},
		{
			name: "no config",
			coll: "demo", set: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := headInsertParams(t, views.HeadInsertRequest{
				WbURL:   mustParseURL(t, "20140126101112/http://example.com/"),
				Context: views.RequestContext{},
				Coll:    tc.coll,
				Config:  tc.cfg,
			}, sampleCDX())

			got, ok := params["wombat_mode"]
			if ok != tc.set {
				t.Fatalf("wombat_mode present = %v, want %v (value %v)", ok, tc.set, got)
			}
			if tc.set && got != tc.want {
				t.Fatalf("wombat_mode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHeadInsertBannerInjected(t *testing.T) {
	env, _ := newViewEnv(t, map[string]string{
		"head_insert.html": "[{{ banner_html|safe }}]",
	})
	banner := &captureBanner{out: "<div>banner</div>"}
	view := views.NewHeadInsertView(env, "head_insert.html", views.WithBanner(banner))

	insert := view.CreateInsertFunc(views.HeadInsertRequest{
		WbURL:   mustParseURL(t, "20140126101112/http://example.com/"),
		Context: views.RequestContext{},
	})
	out, err := insert.Finish("", sampleCDX())
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if out != "[<div>banner</div>]" {
		t.Fatalf("render = %q", out)
	}
	// The banner sees the insert parameters but its output key is not
	// visible to itself.
	if _, ok := banner.params["banner_html"]; ok {
		t.Fatal("banner saw its own output key")
	}
}

func TestHeadInsertBannerErrorPropagates(t *testing.T) {
	env, _ := newViewEnv(t, map[string]string{
		"head_insert.html": "head",
	})
	bannerErr := errors.New("banner broke")
	view := views.NewHeadInsertView(env, "head_insert.html",
		views.WithBanner(&captureBanner{err: bannerErr}))

	insert := view.CreateInsertFunc(views.HeadInsertRequest{
		WbURL:   mustParseURL(t, "20140126101112/http://example.com/"),
		Context: views.RequestContext{},
	})
	if _, err := insert.Finish("", sampleCDX()); !errors.Is(err, bannerErr) {
		t.Fatalf("expected banner error, got %v", err)
	}
}

func TestHeadInsertBadRecordTimestamp(t *testing.T) {
	env, _ := newViewEnv(t, map[string]string{
		"head_insert.html": "head",
	})
	view := views.NewHeadInsertView(env, "head_insert.html")

	insert := view.CreateInsertFunc(views.HeadInsertRequest{
		WbURL:   mustParseURL(t, "20140126101112/http://example.com/"),
		Context: views.RequestContext{},
	})
	cdx := sampleCDX()
	cdx.Timestamp = "garbage"
	if _, err := insert.Finish("", cdx); err == nil {
		t.Fatal("expected error for unparseable record timestamp")
	}
}

func TestHeadInsertExtraParams(t *testing.T) {
	params := headInsertParams(t, views.HeadInsertRequest{
		WbURL:   mustParseURL(t, "20140126101112/http://example.com/"),
		Context: views.RequestContext{},
		Extra:   map[string]any{"ui": map[string]any{"logo": "logo.png"}},
	}, sampleCDX())

	ui, ok := params["ui"].(map[string]any)
	if !ok || ui["logo"] != "logo.png" {
		t.Fatalf("extra params not carried: %v", params["ui"])
	}
}

func TestHeadInsertReusableAcrossRecords(t *testing.T) {
	env, _ := newViewEnv(t, map[string]string{
		"head_insert.html": "{{ cdx.Timestamp }}",
	})
	view := views.NewHeadInsertView(env, "head_insert.html")

	insert := view.CreateInsertFunc(views.HeadInsertRequest{
		WbURL:     mustParseURL(t, "20140126101112/http://example.com/"),
		Context:   views.RequestContext{},
		IncludeTS: true,
	})

	first := sampleCDX()
	second := sampleCDX()
	second.Timestamp = "20150126101112"

	out1, err := insert.Finish("", first)
	if err != nil {
		t.Fatalf("first finish: %v", err)
	}
	out2, err := insert.Finish("", second)
	if err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if !strings.Contains(out1, "20140126101112") || !strings.Contains(out2, "20150126101112") {
		t.Fatalf("finishes not independent: %q / %q", out1, out2)
	}
}
