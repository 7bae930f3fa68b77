package views_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/halvir/pywb/pkg/templates"
	"github.com/halvir/pywb/pkg/views"
)

// newViewEnv builds an isolated environment over a fresh template directory.
func newViewEnv(t *testing.T, files map[string]string) (*templates.Env, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write template: %v", err)
		}
	}
	env, err := templates.New(templates.WithSearchPaths(dir), templates.WithPackages())
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	return env, dir
}

// captureBanner records the parameters handed to the banner collaborator and
// returns a fixed fragment (or a configured error).
type captureBanner struct {
	out    string
	err    error
	rctx   views.RequestContext
	params map[string]any
	calls  int
}

func (b *captureBanner) RenderToString(rctx views.RequestContext, params map[string]any) (string, error) {
	b.calls++
	b.rctx = rctx
	b.params = params
	if b.err != nil {
		return "", b.err
	}
	return b.out, nil
}
