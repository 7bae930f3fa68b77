// Package views renders the HTML inserts spliced into replayed pages: the
// head insert added inside each page and the top frame wrapping framed
// replay. Views resolve a collection-specific template override when the
// request names one and fall back to the bundled defaults otherwise.
package views
