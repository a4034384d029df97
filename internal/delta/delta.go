package delta

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ElementKind distinguishes copy and insert elements.
type ElementKind uint8

const (
	// KindCopy keeps a run of the base document.
	KindCopy ElementKind = iota
	// KindInsert adds new text.
	KindInsert
)

// Element is one step of a Delta.
type Element struct {
	Kind  ElementKind
	Start int    // Base offset (copy only)
	End   int    // Base offset (copy only)
	Text  string // Inserted text (insert only)
}

// Copy returns an element keeping base[start:end].
func Copy(start, end int) Element {
	return Element{Kind: KindCopy, Start: start, End: end}
}

// Insert returns an element adding text.
func Insert(text string) Element {
	return Element{Kind: KindInsert, Text: text}
}

// Len returns the number of bytes the element contributes to the new document.
func (e Element) Len() int {
	if e.Kind == KindInsert {
		return len(e.Text)
	}
	return e.End - e.Start
}

// String returns a human-readable representation of the element.
func (e Element) String() string {
	if e.Kind == KindInsert {
		return fmt.Sprintf("insert %q", e.Text)
	}
	return fmt.Sprintf("copy [%d, %d)", e.Start, e.End)
}

type elementJSON struct {
	Copy   *[2]int `json:"copy,omitempty"`
	Insert *string `json:"insert,omitempty"`
}

// MarshalJSON encodes the element as {"copy":[s,e]} or {"insert":"t"}.
func (e Element) MarshalJSON() ([]byte, error) {
	var v elementJSON
	if e.Kind == KindInsert {
		text := e.Text
		v.Insert = &text
	} else {
		v.Copy = &[2]int{e.Start, e.End}
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes either element form.
func (e *Element) UnmarshalJSON(data []byte) error {
	var v elementJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch {
	case v.Copy != nil && v.Insert == nil:
		*e = Copy(v.Copy[0], v.Copy[1])
	case v.Insert != nil && v.Copy == nil:
		*e = Insert(*v.Insert)
	default:
		return fmt.Errorf("%w: %s", ErrMalformedElement, string(data))
	}
	return nil
}

// Delta is one atomic mutation of a document of BaseLen bytes.
type Delta struct {
	BaseLen int       `json:"base_len"`
	Els     []Element `json:"els"`
}

// NewInsert returns a delta inserting text at offset in a document of baseLen bytes.
func NewInsert(baseLen, offset int, text string) *Delta {
	b := NewBuilder(baseLen)
	_ = b.Insert(offset, text)
	return b.Build()
}

// Validate checks that copies are in range and ascending.
func (d *Delta) Validate() error {
	pos := 0
	for i, el := range d.Els {
		if el.Kind != KindCopy {
			continue
		}
		if el.Start < pos || el.Start > el.End || el.End > d.BaseLen {
			return fmt.Errorf("%w: element %d %s (base %d)", ErrInvalidCopy, i, el, d.BaseLen)
		}
		pos = el.End
	}
	return nil
}

// NewLen returns the length of the document after the delta is applied.
func (d *Delta) NewLen() int {
	n := 0
	for _, el := range d.Els {
		n += el.Len()
	}
	return n
}

// Summary returns the smallest base interval touched by the delta and the
// number of bytes that replace it.
func (d *Delta) Summary() (Interval, int) {
	els := d.nonEmpty()
	start, end := 0, d.BaseLen
	prefix, suffix := 0, 0

	if len(els) > 0 && els[0].Kind == KindCopy && els[0].Start == 0 {
		start = els[0].End
		prefix = els[0].Len()
		els = els[1:]
	}
	if n := len(els); n > 0 && els[n-1].Kind == KindCopy && els[n-1].End == d.BaseLen {
		end = els[n-1].Start
		suffix = els[n-1].Len()
	}
	if end < start {
		end = start
	}
	return Interval{Start: start, End: end}, d.NewLen() - prefix - suffix
}

// SimpleInsert returns the inserted text when the delta is exactly one
// contiguous, non-empty insertion with no deletion.
func (d *Delta) SimpleInsert() (string, bool) {
	_, text, ok := d.simpleInsert()
	return text, ok
}

// InsertEnd returns the offset immediately after the inserted text, in
// new-document coordinates. ok is false unless the delta is a simple insertion.
func (d *Delta) InsertEnd() (int, bool) {
	at, text, ok := d.simpleInsert()
	if !ok {
		return 0, false
	}
	return at + len(text), true
}

func (d *Delta) simpleInsert() (at int, text string, ok bool) {
	els := d.nonEmpty()
	pos := 0
	inserted := false
	for _, el := range els {
		switch el.Kind {
		case KindCopy:
			if el.Start != pos {
				return 0, "", false
			}
			pos = el.End
		case KindInsert:
			if inserted {
				return 0, "", false
			}
			inserted = true
			at = pos
			text = el.Text
		}
	}
	if !inserted || pos != d.BaseLen {
		return 0, "", false
	}
	return at, text, true
}

// IsIdentity returns true if the delta leaves the document unchanged.
func (d *Delta) IsIdentity() bool {
	iv, n := d.Summary()
	return iv.IsEmpty() && n == 0
}

// Apply returns base with the delta applied.
func (d *Delta) Apply(base string) (string, error) {
	if len(base) != d.BaseLen {
		return "", fmt.Errorf("%w: base %d, text %d", ErrBaseMismatch, d.BaseLen, len(base))
	}
	if err := d.Validate(); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(d.NewLen())
	for _, el := range d.Els {
		if el.Kind == KindInsert {
			sb.WriteString(el.Text)
		} else {
			sb.WriteString(base[el.Start:el.End])
		}
	}
	return sb.String(), nil
}

// String returns a human-readable representation of the delta.
func (d *Delta) String() string {
	parts := make([]string, len(d.Els))
	for i, el := range d.Els {
		parts[i] = el.String()
	}
	return fmt.Sprintf("Delta(base=%d; %s)", d.BaseLen, strings.Join(parts, ", "))
}

func (d *Delta) nonEmpty() []Element {
	els := make([]Element, 0, len(d.Els))
	for _, el := range d.Els {
		if el.Len() > 0 {
			els = append(els, el)
		}
	}
	return els
}
