package buffer

import "strings"

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithLineEnding sets the buffer's line ending style.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// WithTabWidth sets the buffer's tab width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// DetectLineEnding returns the most common line ending in text.
// Returns LineEndingLF if no line endings are found.
func DetectLineEnding(text string) LineEnding {
	crlf := strings.Count(text, "\r\n")
	cr := strings.Count(text, "\r") - crlf
	lf := strings.Count(text, "\n") - crlf

	switch {
	case crlf > 0 && crlf >= lf && crlf >= cr:
		return LineEndingCRLF
	case cr > 0 && cr >= lf:
		return LineEndingCR
	default:
		return LineEndingLF
	}
}

// ParseLineEnding maps a configuration name ("lf", "crlf", "cr") to a
// LineEnding. Unknown names map to LineEndingLF.
func ParseLineEnding(name string) LineEnding {
	switch strings.ToLower(name) {
	case "crlf", "\\r\\n":
		return LineEndingCRLF
	case "cr", "\\r":
		return LineEndingCR
	default:
		return LineEndingLF
	}
}
