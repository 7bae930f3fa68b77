package pywb

import (
	"embed"
	"io/fs"

	"github.com/halvir/pywb/pkg/templates"
)

// TemplatePackage is the bundled template package searched after the
// configured directory paths.
const TemplatePackage = "pywb"

//go:embed templates static
var packageFS embed.FS

func init() {
	templates.RegisterPackage(TemplatePackage, packageFS)
}

// TemplatesFS exposes the bundled default insert templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(packageFS, "templates")
	if err != nil {
		return packageFS
	}
	return sub
}

// StaticFS exposes the bundled static assets so applications can serve them
// under the static prefix without unpacking the package.
func StaticFS() fs.FS {
	sub, err := fs.Sub(packageFS, "static")
	if err != nil {
		return packageFS
	}
	return sub
}
