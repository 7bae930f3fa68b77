// Package pywb renders the HTML inserts a web-archive replay system injects
// into archived pages: a head insert carrying replay state for the client
// runtime and a top frame wrapping framed replay.
//
// The bundled default templates live under templates/ and are registered as
// the "pywb" template package; collections override them by naming a
// template directory in the request context.
package pywb
