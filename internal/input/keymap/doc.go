// Package keymap maps key specifications to dispatcher actions.
//
// A Keymap is built from the editor's built-in bindings and then layered
// with user bindings from configuration. Later layers win.
//
//	km := keymap.Default()
//	if err := km.Merge(cfg.Keymap()); err != nil {
//	    return err
//	}
//	if b, ok := km.Lookup(spec); ok {
//	    dispatcher.Dispatch(ctx, handler.NewAction(b.Action))
//	}
package keymap
