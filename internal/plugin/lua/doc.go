// Package lua runs editing scripts in a sandboxed gopher-lua state.
//
// A State opens only the base, table, string and math libraries, removes
// the loaders that reach the file system, and redirects print to a
// writer. Scripts drive the editor through the ks module:
//
//	ks.text()               -- whole document text
//	ks.cursor()             -- line, col (1-based)
//	ks.move(line, col)      -- move the cursor (1-based)
//	ks.insert(s)            -- insert at the cursor
//	ks.exec(cmd [, args])   -- dispatch a command, returns a result table
//	ks.messages()           -- status messages shown so far
//
// The module is available both as the global ks and through require("ks").
// Execution is bounded by a timeout enforced through the state's context.
package lua
