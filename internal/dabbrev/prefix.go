package dabbrev

// isWordByte reports whether c is an ASCII word character [A-Za-z0-9_].
func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// PrefixAt returns the run of word characters ending at column col of line.
// Columns past the end of the line are clamped. The result is empty when the
// character before col is not a word character.
func PrefixAt(line string, col int) string {
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	return line[start:col]
}
