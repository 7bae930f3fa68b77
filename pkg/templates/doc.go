// Package templates provides the template environment used to render the
// HTML inserts injected into replayed pages: an ordered search across
// directory and packaged template sources, the render-time filter registry,
// and the asset manifest with its pkg:// resource resolver.
package templates
