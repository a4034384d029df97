package memhost

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/wordcount/internal/delta"
	"github.com/dshills/wordcount/internal/host"
)

// Edit kinds reported to the handler.
const (
	EditKindInsert = "insert"
	EditKindPlugin = "plugin"
)

// DefaultMaxCascade bounds how many plugin edits one user edit may trigger.
const DefaultMaxCascade = 64

// Handler receives lifecycle notifications. plugin.Plugin implements it.
type Handler interface {
	OnViewOpened(ctx context.Context, view host.View) error
	OnEditApplied(ctx context.Context, view host.View, d *delta.Delta, editKind, author string) error
	OnViewClosed(ctx context.Context, id host.ViewID) error
}

// Host owns documents and delivers notifications to a Handler, one at a time.
type Host struct {
	mu sync.Mutex

	handler    Handler
	docs       map[host.ViewID]*Document
	rejected   int
	maxCascade int
}

// New creates a host delivering notifications to h.
func New(h Handler) *Host {
	return &Host{
		handler:    h,
		docs:       make(map[host.ViewID]*Document),
		maxCascade: DefaultMaxCascade,
	}
}

// Open creates a document holding text and notifies the handler.
func (h *Host) Open(ctx context.Context, text string) (*Document, error) {
	doc := NewDocument(host.ViewID("view-"+uuid.NewString()), text)

	h.mu.Lock()
	h.docs[doc.ID()] = doc
	h.mu.Unlock()

	if err := h.handler.OnViewOpened(ctx, doc); err != nil {
		return doc, err
	}
	return doc, h.drain(ctx, doc)
}

// Document returns the open document with the given id.
func (h *Host) Document(id host.ViewID) (*Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	doc, ok := h.docs[id]
	return doc, ok
}

// Apply applies a user edit to a document, notifies the handler, then
// applies any edits the handler submitted.
func (h *Host) Apply(ctx context.Context, id host.ViewID, d *delta.Delta, editKind, author string) error {
	doc, ok := h.Document(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	if err := doc.Apply(d); err != nil {
		return err
	}
	if err := h.handler.OnEditApplied(ctx, doc, d, editKind, author); err != nil {
		return err
	}
	return h.drain(ctx, doc)
}

// Type inserts text at offset as a user keystroke would.
func (h *Host) Type(ctx context.Context, id host.ViewID, offset int, text string) error {
	doc, ok := h.Document(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	size, _ := doc.BufSize(ctx)
	return h.Apply(ctx, id, delta.NewInsert(size, offset, text), EditKindInsert, "user")
}

// Close removes a document and notifies the handler.
func (h *Host) Close(ctx context.Context, id host.ViewID) error {
	h.mu.Lock()
	_, ok := h.docs[id]
	delete(h.docs, id)
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return h.handler.OnViewClosed(ctx, id)
}

// Rejected returns how many plugin edits were dropped because the document
// changed after they were built.
func (h *Host) Rejected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rejected
}

// drain applies queued plugin edits in submission order. Each applied edit
// is delivered as its own notification.
func (h *Host) drain(ctx context.Context, doc *Document) error {
	for applied := 0; ; applied++ {
		e, ok := doc.takePending()
		if !ok {
			return nil
		}
		if applied >= h.maxCascade {
			return ErrEditLoop
		}
		if e.Rev != doc.Rev() {
			h.mu.Lock()
			h.rejected++
			h.mu.Unlock()
			continue
		}
		if err := doc.Apply(e.Delta); err != nil {
			h.mu.Lock()
			h.rejected++
			h.mu.Unlock()
			continue
		}
		if err := h.handler.OnEditApplied(ctx, doc, e.Delta, EditKindPlugin, e.Options.Author); err != nil {
			return err
		}
	}
}
