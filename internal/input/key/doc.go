// Package key parses key specifications and normalizes terminal key
// events to the same canonical form.
//
// Specifications are written with modifiers joined by "+":
//
//	"a", "Enter", "Ctrl+S", "alt+/", "<C-l>", "<A-s>"
//
// Both spellings canonicalize to lowercase modifier order
// ctrl, alt, shift followed by the key name, for example "ctrl+s".
package key
