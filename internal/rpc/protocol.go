// Package rpc connects the plugin to an editor over newline-delimited
// JSON-RPC 2.0 on stdio.
//
// The editor sends lifecycle notifications and "update" requests; the
// plugin answers buffer queries by calling back into the editor and
// submits edits and status items as notifications. Every incoming message
// is handled on a single dispatch goroutine in arrival order, so calls
// back into the editor never block the connection's read loop.
package rpc

import (
	"encoding/json"

	"github.com/dshills/wordcount/internal/delta"
	"github.com/dshills/wordcount/internal/host"
)

// Methods sent by the editor.
const (
	MethodNewView       = "new_view"
	MethodUpdate        = "update"
	MethodDidClose      = "did_close"
	MethodDidSave       = "did_save"
	MethodConfigChanged = "config_changed"
	MethodShutdown      = "shutdown"
)

// Methods sent by the plugin.
const (
	MethodGetBufSize       = "get_buf_size"
	MethodLineOfOffset     = "line_of_offset"
	MethodOffsetOfLine     = "offset_of_line"
	MethodGetLine          = "get_line"
	MethodGetRegion        = "get_region"
	MethodEdit             = "edit"
	MethodAddStatusItem    = "add_status_item"
	MethodUpdateStatusItem = "update_status_item"
)

// Error codes returned by the editor for failed queries.
const (
	CodeOffsetOutOfRange = -32001
	CodeLineOutOfRange   = -32002
	CodeIO               = -32003
)

// ViewParams identifies a view at a revision.
type ViewParams struct {
	ViewID host.ViewID `json:"view_id"`
	Rev    uint64      `json:"rev,omitempty"`
}

// UpdateParams describes an edit the editor has applied.
type UpdateParams struct {
	ViewID   host.ViewID  `json:"view_id"`
	Rev      uint64       `json:"rev"`
	Delta    *delta.Delta `json:"delta"`
	NewLen   *int         `json:"new_len,omitempty"`
	EditType string       `json:"edit_type"`
	Author   string       `json:"author"`
}

// SaveParams describes a saved view.
type SaveParams struct {
	ViewID host.ViewID `json:"view_id"`
	Path   string      `json:"path"`
}

// ConfigParams carries changed editor settings.
type ConfigParams struct {
	ViewID  host.ViewID     `json:"view_id"`
	Changes json.RawMessage `json:"changes"`
}

// OffsetParams is the payload of line_of_offset.
type OffsetParams struct {
	ViewID host.ViewID `json:"view_id"`
	Offset int         `json:"offset"`
}

// LineParams is the payload of offset_of_line and get_line.
type LineParams struct {
	ViewID host.ViewID `json:"view_id"`
	Line   int         `json:"line"`
}

// RegionParams is the payload of get_region.
type RegionParams struct {
	ViewID host.ViewID `json:"view_id"`
	Start  int         `json:"start"`
	End    int         `json:"end"`
}

// EditParams is the payload of edit.
type EditParams struct {
	ViewID      host.ViewID  `json:"view_id"`
	Rev         uint64       `json:"rev"`
	Delta       *delta.Delta `json:"delta"`
	Priority    uint64       `json:"priority"`
	AfterCursor bool         `json:"after_cursor"`
	Author      string       `json:"author"`
}

// StatusParams is the payload of add_status_item and update_status_item.
type StatusParams struct {
	ViewID    host.ViewID `json:"view_id"`
	Key       string      `json:"key"`
	Value     string      `json:"value"`
	Alignment string      `json:"alignment,omitempty"`
}
