// Package confloader loads and watches StackKV configuration.
//
// It is built on koanf and layers sources with the following priority
// (highest first):
//
//  1. Explicit overrides (LoadMap, e.g. command-line flags)
//  2. Environment variables (STACKKV_ prefix, "__" separates sections)
//  3. YAML configuration file
//  4. Values already present in the target struct (defaults)
//
// Watcher reports changes to watched files via fsnotify so that
// reloadable settings can be applied without a restart.
package confloader
