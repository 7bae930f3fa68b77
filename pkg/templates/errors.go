package templates

import "errors"

// Sentinel errors for template resolution and rendering. Callers should use
// errors.Is to classify failures.
var (
	// ErrTemplateNotFound reports that no configured source contains the
	// requested template path.
	ErrTemplateNotFound = errors.New("templates: template not found")
	// ErrTemplateRender reports any failure after a template was located:
	// parse errors, undefined filters, failing filters.
	ErrTemplateRender = errors.New("templates: template render failed")
	// ErrPackageResource reports a pkg:// address that cannot be mapped to
	// a real file.
	ErrPackageResource = errors.New("templates: package resource not found")
)
