// Package patch applies a suggestion's text replacement to file content.
package patch

import "strings"

// Strategy replaces an anchor inside content. ok is false when the anchor
// cannot be located, in which case content is returned unchanged.
type Strategy interface {
	Apply(content, anchor, replacement string) (patched string, ok bool)
}

// ReplaceFirstOccurrence replaces the first exact occurrence of the anchor.
// An empty anchor never matches.
type ReplaceFirstOccurrence struct{}

var _ Strategy = ReplaceFirstOccurrence{}

// Apply implements Strategy.
func (ReplaceFirstOccurrence) Apply(content, anchor, replacement string) (string, bool) {
	if anchor == "" {
		return content, false
	}
	idx := strings.Index(content, anchor)
	if idx < 0 {
		return content, false
	}
	return content[:idx] + replacement + content[idx+len(anchor):], true
}
