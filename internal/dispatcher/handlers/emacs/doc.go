// Package emacs provides Emacs-flavoured editing commands.
//
//   - emacs.dabbrevExpand: expand the word before the cursor from earlier
//     text in the buffer; repeat to cycle through candidates
//   - emacs.selectLine: select the cursor line from column 0 to its end
package emacs
