package rpc

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Editor setting keys understood by the plugin. Both flat
// ({"wordcount.tokenizer": "segment"}) and nested
// ({"wordcount": {"tokenizer": "segment"}}) payloads are accepted.
const (
	SettingTokenizer  = "wordcount.tokenizer"
	SettingCapitalize = "wordcount.capitalize"
)

// ConfigChange holds the plugin settings found in a config_changed payload.
type ConfigChange struct {
	Tokenizer  string // Empty when not present
	Capitalize *bool  // nil when not present
}

// IsZero reports whether the change carries no plugin setting.
func (c ConfigChange) IsZero() bool {
	return c.Tokenizer == "" && c.Capitalize == nil
}

// ParseConfigChange extracts the plugin settings from raw. Settings of other
// plugins and values of the wrong type are ignored.
func ParseConfigChange(raw []byte) ConfigChange {
	var c ConfigChange
	if !gjson.ValidBytes(raw) {
		return c
	}
	if r := lookup(raw, SettingTokenizer); r.Type == gjson.String {
		c.Tokenizer = r.String()
	}
	if r := lookup(raw, SettingCapitalize); r.IsBool() {
		b := r.Bool()
		c.Capitalize = &b
	}
	return c
}

// lookup finds a dotted key as a flat key first, then as a nested path.
func lookup(raw []byte, key string) gjson.Result {
	if r := gjson.GetBytes(raw, escapePath(key)); r.Exists() {
		return r
	}
	return gjson.GetBytes(raw, key)
}

func escapePath(key string) string {
	out := make([]byte, 0, len(key)+2)
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}

// decodeChanges turns a config_changed payload into a generic map for
// handlers that want the full set of changes.
func decodeChanges(raw json.RawMessage) map[string]any {
	changes := make(map[string]any)
	if len(raw) == 0 {
		return changes
	}
	if err := json.Unmarshal(raw, &changes); err != nil {
		return make(map[string]any)
	}
	return changes
}

// ConfigFunc applies plugin settings received from the editor. It reports
// whether anything changed, in which case every view is refreshed.
type ConfigFunc func(ctx context.Context, change ConfigChange) (changed bool, err error)
