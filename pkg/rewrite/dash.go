// Package rewrite contains self-contained content transforms applied to
// archived responses during replay. Only the MPEG-DASH manifest rewrite
// lives here; the surrounding rewriting engine is a separate system.
package rewrite

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Caps applied when the caller supplies none: a 720p ceiling for
// resolution-described streams, 2 Mbit/s otherwise.
const (
	DefaultMaxResolution = 1280 * 720
	DefaultMaxBandwidth  = 2000000
)

// element is a generic XML element that survives a decode/encode round trip.
// Comments and exact attribute formatting are not preserved.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*element `xml:",any"`
}

// RewriteDASH prunes every AdaptationSet of an MPD manifest down to its best
// Representation under the given caps and returns the rewritten manifest
// plus the ids of the representations kept. Zero or negative caps select the
// defaults.
//
// Selection mirrors adaptive playback limits: when a representation
// advertises a resolution, the largest resolution not above maxResolution
// wins; otherwise the highest bandwidth not above maxBandwidth wins.
func RewriteDASH(r io.Reader, maxResolution, maxBandwidth int) ([]byte, []string, error) {
	if maxResolution <= 0 {
		maxResolution = DefaultMaxResolution
	}
	if maxBandwidth <= 0 {
		maxBandwidth = DefaultMaxBandwidth
	}

	var root element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, nil, fmt.Errorf("rewrite: parse dash manifest: %w", err)
	}
	normalizeNamespaces(&root)

	bestIDs := []string{}
	for _, period := range childrenNamed(&root, "Period") {
		for _, aset := range childrenNamed(period, "AdaptationSet") {
			best := selectBest(childrenNamed(aset, "Representation"), maxResolution, maxBandwidth)
			if best != nil {
				bestIDs = append(bestIDs, attrValue(best, "id"))
			}

			kept := make([]*element, 0, len(aset.Children))
			for _, child := range aset.Children {
				if child.XMLName.Local == "Representation" && child != best {
					continue
				}
				kept = append(kept, child)
			}
			aset.Children = kept
		}
	}

	out, err := xml.Marshal(&root)
	if err != nil {
		return nil, nil, fmt.Errorf("rewrite: serialize dash manifest: %w", err)
	}
	return append([]byte(xml.Header), out...), bestIDs, nil
}

func selectBest(reps []*element, maxResolution, maxBandwidth int) *element {
	var best *element
	bestResolution := 0
	bestBandwidth := 0
	for _, rep := range reps {
		resolution := attrInt(rep, "width") * attrInt(rep, "height")
		bandwidth := attrInt(rep, "bandwidth")
		if resolution > 0 && maxResolution > 0 {
			if resolution <= maxResolution && resolution > bestResolution {
				bestResolution = resolution
				bestBandwidth = bandwidth
				best = rep
			}
		} else if bandwidth <= maxBandwidth && bandwidth > bestBandwidth {
			bestResolution = resolution
			bestBandwidth = bandwidth
			best = rep
		}
	}
	return best
}

func childrenNamed(n *element, local string) []*element {
	var out []*element
	for _, child := range n.Children {
		if child.XMLName.Local == local {
			out = append(out, child)
		}
	}
	return out
}

func attrValue(n *element, local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local && (a.Name.Space == "" || a.Name.Space == "xmlns") {
			return a.Value
		}
	}
	return ""
}

func attrInt(n *element, local string) int {
	v, err := strconv.Atoi(attrValue(n, local))
	if err != nil {
		return 0
	}
	return v
}

// Go's decoder expands namespace prefixes into URIs; re-encoding those
// directly would emit a default xmlns on every element. Fold the names back
// to their prefixed form and keep the original xmlns attributes verbatim.
var attrNamespacePrefixes = map[string]string{
	"http://www.w3.org/2001/XMLSchema-instance": "xsi",
	"http://www.w3.org/1999/xlink":              "xlink",
	"http://www.w3.org/XML/1998/namespace":      "xml",
}

func normalizeNamespaces(n *element) {
	n.XMLName.Space = ""
	for i, a := range n.Attrs {
		switch {
		case a.Name.Space == "xmlns":
			n.Attrs[i].Name = xml.Name{Local: "xmlns:" + a.Name.Local}
		case a.Name.Space != "":
			if prefix, ok := attrNamespacePrefixes[a.Name.Space]; ok {
				n.Attrs[i].Name = xml.Name{Local: prefix + ":" + a.Name.Local}
			} else {
				n.Attrs[i].Name = xml.Name{Local: a.Name.Local}
			}
		}
	}
	for _, child := range n.Children {
		normalizeNamespaces(child)
	}
}

// fbDashSplit separates the inline manifest from the prefetched
// representation ids inside Facebook's embedded player payloads. The
// manifest before it is a JS string literal.
const fbDashSplit = `\n",dash_prefetched_representation_ids:`

// RewriteFBDash rewrites a DASH manifest embedded as a JS string literal,
// replacing the prefetched representation ids with the ones actually kept.
// Payloads without the marker pass through unchanged.
func RewriteFBDash(s string) (string, error) {
	idx := strings.Index(s, fbDashSplit)
	if idx < 0 {
		return s, nil
	}

	manifest, err := unescapeJS(s[:idx])
	if err != nil {
		return "", fmt.Errorf("rewrite: unescape inline dash manifest: %w", err)
	}

	rewritten, bestIDs, err := RewriteDASH(strings.NewReader(manifest), 0, 0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(string(rewritten)); err != nil {
		return "", fmt.Errorf("rewrite: encode inline dash manifest: %w", err)
	}
	quoted := strings.TrimSuffix(sb.String(), "\n")
	body := strings.ReplaceAll(quoted[1:len(quoted)-1], "<", `\x3C`)

	ids, err := json.Marshal(bestIDs)
	if err != nil {
		return "", fmt.Errorf("rewrite: encode representation ids: %w", err)
	}
	return body + fbDashSplit + string(ids), nil
}

// unescapeJS expands the escapes found in JS string literals, leaving
// unknown escape sequences untouched.
func unescapeJS(s string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\'':
			sb.WriteByte('\'')
		case '\\':
			sb.WriteByte('\\')
		case '/':
			sb.WriteByte('/')
		case 'x':
			if i+2 >= len(s) {
				return "", fmt.Errorf("truncated \\x escape at %d", i)
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape at %d: %w", i, err)
			}
			sb.WriteByte(byte(v))
			i += 2
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("truncated \\u escape at %d", i)
			}
			v, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad \\u escape at %d: %w", i, err)
			}
			sb.WriteRune(rune(v))
			i += 4
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String(), nil
}
