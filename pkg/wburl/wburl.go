// Package wburl models archival URLs of the form
// "[timestamp][modifier]/url", e.g. "20200102030405mp_/http://example.com/".
// The modifier carries its trailing underscore ("mp_", "if_") and the
// timestamp is a 1..14 digit prefix as understood by pkg/timeutils.
package wburl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Type classifies how a WbURL addresses its target.
type Type int

const (
	// LatestReplay addresses the most recent capture (no timestamp prefix).
	LatestReplay Type = iota
	// Replay addresses a capture at a specific timestamp.
	Replay
)

// ErrBadURL reports an archival URL that cannot be parsed.
var ErrBadURL = errors.New("wburl: invalid archival url")

var prefixRx = regexp.MustCompile(`^(\d{1,14})?([a-z][a-z0-9]{1,4}_)?/(.+)$`)

// WbURL is a parsed archival URL. Immutable by convention; ToStr produces
// variants without mutating the receiver.
type WbURL struct {
	Type      Type
	URL       string
	Timestamp string
	Modifier  string
}

// Parse splits an archival URL into its timestamp, modifier and target URL.
func Parse(raw string) (*WbURL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadURL)
	}
	// Scheme-relative targets never carry an archival prefix.
	if !strings.HasPrefix(raw, "//") {
		if m := prefixRx.FindStringSubmatch(raw); m != nil {
			u := &WbURL{
				Timestamp: m[1],
				Modifier:  m[2],
				URL:       m[3],
				Type:      LatestReplay,
			}
			if u.Timestamp != "" {
				u.Type = Replay
			}
			return u, nil
		}
	}
	return &WbURL{URL: raw, Type: LatestReplay}, nil
}

// StrOption overrides one component during re-serialization.
type StrOption func(*strOptions)

type strOptions struct {
	mod       *string
	timestamp *string
	url       *string
}

// WithMod substitutes the modifier segment (pass "" to drop it).
func WithMod(mod string) StrOption {
	return func(o *strOptions) { o.mod = &mod }
}

// WithTimestamp substitutes the timestamp segment.
func WithTimestamp(ts string) StrOption {
	return func(o *strOptions) { o.timestamp = &ts }
}

// WithURL substitutes the target URL.
func WithURL(url string) StrOption {
	return func(o *strOptions) { o.url = &url }
}

// ToStr re-serializes the archival URL, applying any overrides. When both
// timestamp and modifier are empty the bare target URL is returned.
func (u *WbURL) ToStr(opts ...StrOption) string {
	o := strOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	ts, mod, target := u.Timestamp, u.Modifier, u.URL
	if o.timestamp != nil {
		ts = *o.timestamp
	}
	if o.mod != nil {
		mod = *o.mod
	}
	if o.url != nil {
		target = *o.url
	}
	if ts == "" && mod == "" {
		return target
	}
	return ts + mod + "/" + target
}

// String implements fmt.Stringer.
func (u *WbURL) String() string {
	return u.ToStr()
}

// GetURL returns the target URL without the archival prefix.
func (u *WbURL) GetURL() string {
	return u.URL
}
