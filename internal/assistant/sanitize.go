package assistant

import "strings"

// Default reasoning block markers. Groq's reasoning models wrap their
// deliberation in think tags; the label form shows up when a model narrates
// its steps in markdown instead.
const (
	DefaultStartTag   = "<think>"
	DefaultEndTag     = "</think>"
	reasoningLabel    = "**Reasoning:**"
	boldSectionMarker = "\n**"
)

// Sanitizer strips reasoning segments out of assistant answers before they
// reach the client. Marker matching is case-insensitive and non-greedy; a
// start tag with no matching end tag strips nothing for that occurrence, so
// a truncated answer is never made worse.
type Sanitizer struct {
	StartTag string
	EndTag   string
}

// NewSanitizer returns a sanitizer with the default think-tag markers.
func NewSanitizer() Sanitizer {
	return Sanitizer{StartTag: DefaultStartTag, EndTag: DefaultEndTag}
}

// Sanitize removes reasoning blocks and labeled reasoning sections from text
// when hideReasoning is set, then trims surrounding whitespace. With
// hideReasoning false the text passes through untouched. The operation is
// idempotent: sanitizing already-clean text changes nothing.
func (s Sanitizer) Sanitize(text string, hideReasoning bool) string {
	if !hideReasoning {
		return text
	}
	out := s.stripTaggedBlocks(text)
	out = stripLabeledSections(out)
	return strings.TrimSpace(out)
}

func (s Sanitizer) stripTaggedBlocks(text string) string {
	start, end := s.StartTag, s.EndTag
	if start == "" || end == "" {
		return text
	}

	var b strings.Builder
	for {
		i := indexFold(text, start)
		if i < 0 {
			break
		}
		j := indexFold(text[i+len(start):], end)
		if j < 0 {
			// Unmatched start tag: keep the occurrence as-is.
			b.WriteString(text[:i+len(start)])
			text = text[i+len(start):]
			continue
		}
		b.WriteString(text[:i])
		text = text[i+len(start)+j+len(end):]
	}
	b.WriteString(text)
	return b.String()
}

// stripLabeledSections removes a "**Reasoning:**" section running from the
// label to the next blank line, the next bold-labeled section, or the end of
// the text.
func stripLabeledSections(text string) string {
	for {
		i := indexFold(text, reasoningLabel)
		if i < 0 {
			return text
		}
		rest := text[i+len(reasoningLabel):]

		stop := len(rest)
		if b := strings.Index(rest, "\n\n"); b >= 0 && b < stop {
			stop = b
		}
		if b := strings.Index(rest, boldSectionMarker); b >= 0 && b < stop {
			stop = b
		}
		// Drop the line break that introduced the section so removing it
		// does not leave extra blank lines behind.
		text = strings.TrimRight(text[:i], "\n") + rest[stop:]
	}
}

// indexFold is a byte-offset case-insensitive substring search. Markers are
// ASCII, so lowercasing does not shift offsets.
func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}
