package memhost

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/wordcount/internal/delta"
	"github.com/dshills/wordcount/internal/host"
)

// Query names accepted by Document.Fail.
const (
	OpBufSize      = "get_buf_size"
	OpLineOfOffset = "line_of_offset"
	OpOffsetOfLine = "offset_of_line"
	OpGetLine      = "get_line"
	OpGetRegion    = "get_region"
	OpEdit         = "edit"
	OpStatus       = "status"
)

// StatusItem is a status-bar entry owned by a document.
type StatusItem struct {
	Key       string
	Value     string
	Alignment host.Alignment
}

// SubmittedEdit is an edit the plugin handed to the document.
type SubmittedEdit struct {
	Delta   *delta.Delta
	Options host.EditOptions
	Rev     uint64 // Document revision the edit was built against
}

// Document is an in-memory buffer implementing host.View.
type Document struct {
	mu sync.Mutex

	id   host.ViewID
	text string
	rev  uint64

	// lineStarts[i] is the byte offset at which line i starts.
	lineStarts []int

	status        map[string]StatusItem
	statusAdds    int
	statusUpdates int
	duplicateAdds int

	pending   []SubmittedEdit
	submitted []SubmittedEdit

	faults map[string]error
}

// NewDocument creates a standalone document. Documents opened through a Host
// are created by Host.Open.
func NewDocument(id host.ViewID, text string) *Document {
	d := &Document{
		id:     id,
		status: make(map[string]StatusItem),
		faults: make(map[string]error),
	}
	d.setText(text)
	return d
}

// ID implements host.View.
func (d *Document) ID() host.ViewID {
	return d.id
}

// Text returns the current document text.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Rev returns the current revision. Every applied delta increments it.
func (d *Document) Rev() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rev
}

// Fail makes every subsequent call of query op return err.
// A nil err clears the fault.
func (d *Document) Fail(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.faults, op)
		return
	}
	d.faults[op] = err
}

// BufSize implements host.BufferAccessor.
func (d *Document) BufSize(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.faults[OpBufSize]; err != nil {
		return 0, err
	}
	return len(d.text), nil
}

// LineOfOffset implements host.BufferAccessor.
func (d *Document) LineOfOffset(_ context.Context, offset int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.faults[OpLineOfOffset]; err != nil {
		return 0, host.NewQueryError(OpLineOfOffset, offset, err)
	}
	if offset < 0 || offset > len(d.text) {
		return 0, host.NewQueryError(OpLineOfOffset, offset, host.ErrOffsetOutOfRange)
	}
	// Index of the last line start <= offset.
	return sort.SearchInts(d.lineStarts, offset+1) - 1, nil
}

// OffsetOfLine implements host.BufferAccessor.
func (d *Document) OffsetOfLine(_ context.Context, line int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.faults[OpOffsetOfLine]; err != nil {
		return 0, host.NewQueryError(OpOffsetOfLine, line, err)
	}
	if line < 0 || line >= len(d.lineStarts) {
		return 0, host.NewQueryError(OpOffsetOfLine, line, host.ErrLineOutOfRange)
	}
	return d.lineStarts[line], nil
}

// GetLine implements host.BufferAccessor.
func (d *Document) GetLine(_ context.Context, line int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.faults[OpGetLine]; err != nil {
		return "", host.NewQueryError(OpGetLine, line, err)
	}
	if line < 0 || line >= len(d.lineStarts) {
		return "", host.NewQueryError(OpGetLine, line, host.ErrLineOutOfRange)
	}
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1]
	}
	return d.text[d.lineStarts[line]:end], nil
}

// GetRegion implements host.BufferAccessor.
func (d *Document) GetRegion(_ context.Context, iv delta.Interval) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.faults[OpGetRegion]; err != nil {
		return "", host.NewQueryError(OpGetRegion, iv.Start, err)
	}
	if iv.Start < 0 || iv.Start > iv.End || iv.End > len(d.text) {
		return "", host.NewQueryError(OpGetRegion, iv.Start, host.ErrOffsetOutOfRange)
	}
	return d.text[iv.Start:iv.End], nil
}

// Edit implements host.EditEmitter. The edit is queued and applied by the
// Host after the current notification returns.
func (d *Document) Edit(_ context.Context, dl *delta.Delta, opts host.EditOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.faults[OpEdit]; err != nil {
		return err
	}
	e := SubmittedEdit{Delta: dl, Options: opts, Rev: d.rev}
	d.pending = append(d.pending, e)
	d.submitted = append(d.submitted, e)
	return nil
}

// Submitted returns every edit the plugin has submitted, applied or not.
func (d *Document) Submitted() []SubmittedEdit {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SubmittedEdit, len(d.submitted))
	copy(out, d.submitted)
	return out
}

// AddStatusItem implements host.StatusSink.
func (d *Document) AddStatusItem(_ context.Context, key, value string, align host.Alignment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.faults[OpStatus]; err != nil {
		return err
	}
	if _, exists := d.status[key]; exists {
		d.duplicateAdds++
	}
	d.statusAdds++
	d.status[key] = StatusItem{Key: key, Value: value, Alignment: align}
	return nil
}

// UpdateStatusItem implements host.StatusSink.
func (d *Document) UpdateStatusItem(_ context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.faults[OpStatus]; err != nil {
		return err
	}
	item, exists := d.status[key]
	if !exists {
		return host.NewQueryError("update_status_item", 0, ErrUnknownStatusItem)
	}
	d.statusUpdates++
	item.Value = value
	d.status[key] = item
	return nil
}

// StatusItem returns the status item stored under key.
func (d *Document) StatusItem(key string) (StatusItem, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	item, ok := d.status[key]
	return item, ok
}

// StatusItems returns all status items sorted by key.
func (d *Document) StatusItems() []StatusItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := make([]StatusItem, 0, len(d.status))
	for _, item := range d.status {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items
}

// StatusStats returns how many adds, updates and duplicate adds were made.
func (d *Document) StatusStats() (adds, updates, duplicates int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusAdds, d.statusUpdates, d.duplicateAdds
}

// Apply applies dl to the text and bumps the revision. Handlers are not
// notified; use Host.Apply for that.
func (d *Document) Apply(dl *delta.Delta) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	text, err := dl.Apply(d.text)
	if err != nil {
		return err
	}
	d.setText(text)
	d.rev++
	return nil
}

// takePending removes and returns the oldest queued edit.
func (d *Document) takePending() (SubmittedEdit, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return SubmittedEdit{}, false
	}
	e := d.pending[0]
	d.pending = d.pending[1:]
	return e, true
}

// setText replaces the text and rebuilds the line index. Caller holds mu.
func (d *Document) setText(text string) {
	d.text = text
	starts := make([]int, 1, strings.Count(text, "\n")+1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	d.lineStarts = starts
}
