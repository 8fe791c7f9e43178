// Package fragment extracts embedded markup occurrences from document bodies.
//
// Two kinds are recognised: block markers written as HTML comments
// (`<!-- wp:name {"ref":N} -->`) and bracketed shortcode tags (`[tag ...]`).
// Matching uses bounded regular expressions rather than a grammar; anything
// that does not match is ignored.
package fragment

import (
	"regexp"
	"strconv"
)

// MarkerPrefix is the text every block marker starts with. The corpus
// pre-filter uses it as well.
const MarkerPrefix = "<!-- wp:"

// ShortcodeOpen is the character every shortcode starts with.
const ShortcodeOpen = "["

var (
	// name: letters, digits, hyphens, at most one namespace slash.
	// The reference attribute only matches when it is the sole attribute.
	blockRe     = regexp.MustCompile(`<!-- wp:([a-zA-Z0-9-]+(?:/[a-zA-Z0-9-]+)?)(?: \{"ref":(\d+)\})? `)
	shortcodeRe = regexp.MustCompile(`\[(\w+)[^\]]*\]`)
)

// Block is one structured block marker.
type Block struct {
	Name   string `json:"name"`
	Ref    int64  `json:"ref,omitempty"`
	HasRef bool   `json:"has_ref"`
}

// Shortcode is one inline tag. Text is the full match, brackets included.
type Shortcode struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// Occurrences holds everything found in one body, in document order.
type Occurrences struct {
	Blocks     []Block     `json:"blocks"`
	Shortcodes []Shortcode `json:"shortcodes"`
}

// Extractor turns a document body into occurrences.
type Extractor interface {
	Extract(body string) Occurrences
}

// RegexExtractor is the default Extractor.
type RegexExtractor struct{}

// NewExtractor returns the default extractor.
func NewExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract implements Extractor.
func (RegexExtractor) Extract(body string) Occurrences {
	return Occurrences{
		Blocks:     ExtractBlocks(body),
		Shortcodes: ExtractShortcodes(body),
	}
}

// ExtractBlocks returns block markers in order of appearance.
func ExtractBlocks(body string) []Block {
	matches := blockRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		b := Block{Name: m[1]}
		if m[2] != "" {
			// 0 is never a valid document id; treat it like a missing ref
			if ref, err := strconv.ParseInt(m[2], 10, 64); err == nil && ref > 0 {
				b.Ref = ref
				b.HasRef = true
			}
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// ExtractShortcodes returns shortcode matches in order of appearance.
func ExtractShortcodes(body string) []Shortcode {
	matches := shortcodeRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	codes := make([]Shortcode, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, Shortcode{Text: m[0], Tag: m[1]})
	}
	return codes
}
