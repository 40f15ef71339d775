package dabbrev

import (
	"regexp"

	"github.com/dshills/dabbrev/internal/engine/buffer"
)

// Candidates returns the distinct words in text that start with prefix, are
// strictly longer than it, and begin before offset before. Words are ordered
// by their nearest occurrence to before, closest first.
func Candidates(text, prefix string, before buffer.ByteOffset) []string {
	if prefix == "" {
		return nil
	}

	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(prefix) + `\w+\b`)
	matches := re.FindAllStringIndex(text, -1)

	seen := make(map[string]struct{}, len(matches))
	var out []string
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if buffer.ByteOffset(m[0]) >= before {
			continue
		}
		word := text[m[0]:m[1]]
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}
