package keymap

// Default returns the built-in bindings for editing and cursor motion.
// The expansion and view commands are bound through configuration.
func Default() *Keymap {
	k := NewKeymap("default")
	for keys, action := range map[string]string{
		"left":      "cursor.moveLeft",
		"right":     "cursor.moveRight",
		"up":        "cursor.moveUp",
		"down":      "cursor.moveDown",
		"enter":     "editor.newline",
		"backspace": "editor.backspace",
		"ctrl+q":    ActionQuit,
	} {
		if err := k.Add(keys, action, "default"); err != nil {
			panic(err)
		}
	}
	return k
}
