// Command pywb-render renders one insert template from the command line,
// useful for previewing collection template overrides without running the
// full replay application.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/halvir/pywb"
	"github.com/halvir/pywb/pkg/config"
	"github.com/halvir/pywb/pkg/templates"
	"github.com/halvir/pywb/pkg/timeutils"
	"github.com/halvir/pywb/pkg/views"
	"github.com/halvir/pywb/pkg/wburl"
)

func main() {
	insert := flag.String("insert", "frame", "insert to render: head or frame")
	rawURL := flag.String("url", "", "archival url, e.g. 20200102030405mp_/http://example.com/")
	prefix := flag.String("prefix", "http://localhost:8080/web/", "collection url prefix")
	hostPrefix := flag.String("host-prefix", "http://localhost:8080", "host url prefix")
	coll := flag.String("coll", "", "collection name")
	templatesDir := flag.String("templates-dir", "", "collection template override directory")
	configPath := flag.String("config", "", "yaml config file (proxy settings)")
	assetsPath := flag.String("assets", "", "yaml asset manifest")
	framed := flag.Bool("framed", true, "render for framed replay")
	banner := flag.Bool("banner", true, "include the default banner")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	if *rawURL == "" {
		log.Fatal("missing required -url")
	}

	wbURL, err := wburl.Parse(*rawURL)
	if err != nil {
		log.Fatalf("invalid archival url: %v", err)
	}

	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	envOpts := []templates.Option{
		templates.WithSearchPaths("templates", "."),
	}
	if *assetsPath != "" {
		envOpts = append(envOpts, templates.WithAssetManifest(*assetsPath))
	}
	env, err := pywb.NewEnv(envOpts...)
	if err != nil {
		log.Fatalf("configure template environment: %v", err)
	}

	rctx := views.RequestContext{
		views.HostPrefixKey: *hostPrefix,
	}
	if *templatesDir != "" {
		rctx[env.TemplateDirKey()] = *templatesDir
	}

	var viewOpts []views.InsertOption
	if *banner {
		viewOpts = append(viewOpts, views.WithBanner(pywb.NewBannerView(env)))
	}

	var html string
	switch *insert {
	case "frame":
		view := pywb.NewTopFrameView(env, viewOpts...)
		html, err = view.GetTopFrame(views.TopFrameRequest{
			WbURL:      wbURL,
			Prefix:     *prefix,
			HostPrefix: *hostPrefix,
			Context:    rctx,
			FrameMod:   "if_",
			ReplayMod:  "mp_",
			Coll:       *coll,
		})
	case "head":
		view := pywb.NewHeadInsertView(env, viewOpts...)
		ts := wbURL.Timestamp
		if ts == "" {
			ts = timeutils.Now()
		}
		head := view.CreateInsertFunc(views.HeadInsertRequest{
			WbURL:      wbURL,
			Prefix:     *prefix,
			HostPrefix: *hostPrefix,
			TopURL:     *hostPrefix + "/" + *coll + "/" + wbURL.ToStr(),
			Context:    rctx,
			Coll:       *coll,
			IsFramed:   *framed,
			IncludeTS:  true,
			Config:     cfg,
		})
		html, err = head.Finish("", views.CDX{
			URL:       wbURL.GetURL(),
			Timestamp: ts,
		})
	default:
		log.Fatalf("unknown insert %q (want head or frame)", *insert)
	}
	if err != nil {
		log.Fatalf("render %s insert: %v", *insert, err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(html), 0o644); err != nil {
			log.Fatalf("write output: %v", err)
		}
		fmt.Printf("Insert written to %s\n", *output)
		return
	}
	fmt.Println(html)
}
