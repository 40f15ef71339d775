// Package config provides layered configuration for dabbrev.
//
// Settings are merged from three layers, lowest priority first:
//
//  1. built-in defaults
//  2. the config file (TOML or YAML, chosen by extension)
//  3. environment variables with the DABBREV_ prefix
//
// Environment variables map to dotted paths: the first segment after the
// prefix names the section and the rest form a camelCase key, so
// DABBREV_EDITOR_TAB_WIDTH sets editor.tabWidth.
//
// Typed section accessors (Logging, Editor, View, Dabbrev, Keymap) return
// snapshots. When watching is enabled, changes to the config file are
// reloaded and OnReload callbacks run with the new configuration in place.
package config
