package editor

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const maskChar = "*"

// Censor masks blacklisted words. A Censor is built from a read-only
// snapshot of the blacklist and is safe for concurrent use.
type Censor struct {
	pattern *regexp.Regexp
}

// NewCensor compiles a whole-word, case-insensitive matcher for words.
// Blank entries are ignored; a nil or empty list yields the identity censor.
func NewCensor(words []string) *Censor {
	seen := make(map[string]struct{}, len(words))
	alts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		alts = append(alts, w)
	}
	if len(alts) == 0 {
		return &Censor{}
	}

	// Longest first, so overlapping entries mask the longest whole word.
	sort.Slice(alts, func(i, j int) bool {
		if len(alts[i]) != len(alts[j]) {
			return len(alts[i]) > len(alts[j])
		}
		return alts[i] < alts[j]
	})
	for i, w := range alts {
		alts[i] = regexp.QuoteMeta(w)
	}

	return &Censor{
		pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`),
	}
}

// Censor replaces every whole-word occurrence of a blacklisted word with an
// equal-length run of '*'. Substrings inside longer words are left alone.
func (c *Censor) Censor(text string) string {
	if c == nil || c.pattern == nil {
		return text
	}
	return c.pattern.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat(maskChar, utf8.RuneCountInString(match))
	})
}
