// Package config holds the wordcount plugin configuration.
//
// Configuration is assembled from three layers, higher layers overriding
// lower ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← WORDCOUNT_SECTION_SETTING
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML, picked by extension
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// Command line flags are applied by the caller on top of the result.
//
// # Sub-packages
//
//   - loader: file and environment loading into maps
//   - watcher: fsnotify-based file watching for live reload
//
// # File Format
//
//	[logging]
//	level = "info"
//	file = ""
//
//	[tokenizer]
//	kind = "word"          # word, segment or lua
//	script = ""            # required for lua
//
//	[status]
//	alignment = "left"     # left or right
//
//	[capitalize]
//	enabled = true
//	priority = 0
//	author = "wordcount"
package config
