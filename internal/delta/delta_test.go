package delta

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimpleInsert(t *testing.T) {
	tests := []struct {
		name     string
		d        *Delta
		wantText string
		wantOK   bool
		wantEnd  int
	}{
		{
			name:     "append bang",
			d:        NewInsert(11, 11, "!"),
			wantText: "!",
			wantOK:   true,
			wantEnd:  12,
		},
		{
			name:     "insert in middle",
			d:        NewInsert(11, 5, ","),
			wantText: ",",
			wantOK:   true,
			wantEnd:  6,
		},
		{
			name:     "insert into empty document",
			d:        NewInsert(0, 0, "!"),
			wantText: "!",
			wantOK:   true,
			wantEnd:  1,
		},
		{
			name:     "paste",
			d:        NewInsert(3, 3, "hi!"),
			wantText: "hi!",
			wantOK:   true,
			wantEnd:  6,
		},
		{
			name: "delete",
			d:    &Delta{BaseLen: 5, Els: []Element{Copy(0, 2), Copy(3, 5)}},
		},
		{
			name: "replace",
			d:    &Delta{BaseLen: 5, Els: []Element{Copy(0, 2), Insert("!"), Copy(3, 5)}},
		},
		{
			name: "two inserts",
			d:    &Delta{BaseLen: 4, Els: []Element{Insert("a"), Copy(0, 4), Insert("b")}},
		},
		{
			name: "identity",
			d:    &Delta{BaseLen: 4, Els: []Element{Copy(0, 4)}},
		},
		{
			name:     "empty elements ignored",
			d:        &Delta{BaseLen: 4, Els: []Element{Copy(0, 2), Insert(""), Copy(2, 2), Insert("x"), Copy(2, 4)}},
			wantText: "x",
			wantOK:   true,
			wantEnd:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := tt.d.SimpleInsert()
			if ok != tt.wantOK || text != tt.wantText {
				t.Errorf("SimpleInsert() = (%q, %v), want (%q, %v)", text, ok, tt.wantText, tt.wantOK)
			}
			end, ok := tt.d.InsertEnd()
			if ok != tt.wantOK {
				t.Errorf("InsertEnd() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && end != tt.wantEnd {
				t.Errorf("InsertEnd() = %d, want %d", end, tt.wantEnd)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name    string
		d       *Delta
		wantIv  Interval
		wantLen int
	}{
		{"append", NewInsert(11, 11, "!"), Interval{11, 11}, 1},
		{"prepend", NewInsert(3, 0, "ab"), Interval{0, 0}, 2},
		{"delete middle", &Delta{BaseLen: 5, Els: []Element{Copy(0, 2), Copy(3, 5)}}, Interval{2, 3}, 0},
		{"replace all", &Delta{BaseLen: 5, Els: []Element{Insert("xyz")}}, Interval{0, 5}, 3},
		{"identity", &Delta{BaseLen: 4, Els: []Element{Copy(0, 4)}}, Interval{4, 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, n := tt.d.Summary()
			if iv != tt.wantIv || n != tt.wantLen {
				t.Errorf("Summary() = (%v, %d), want (%v, %d)", iv, n, tt.wantIv, tt.wantLen)
			}
		})
	}
}

func TestApply(t *testing.T) {
	b := NewBuilder(11)
	if err := b.Replace(Interval{6, 11}, "WORLD"); err != nil {
		t.Fatalf("Replace error = %v", err)
	}
	got, err := b.Build().Apply("hello world")
	if err != nil {
		t.Fatalf("Apply error = %v", err)
	}
	if got != "hello WORLD" {
		t.Errorf("Apply() = %q, want %q", got, "hello WORLD")
	}
}

func TestApplyBaseMismatch(t *testing.T) {
	_, err := NewInsert(3, 0, "x").Apply("toolong")
	if !errors.Is(err, ErrBaseMismatch) {
		t.Errorf("Apply error = %v, want ErrBaseMismatch", err)
	}
}

func TestValidate(t *testing.T) {
	bad := &Delta{BaseLen: 4, Els: []Element{Copy(2, 4), Copy(0, 1)}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCopy) {
		t.Errorf("Validate() = %v, want ErrInvalidCopy", err)
	}
	outOfRange := &Delta{BaseLen: 4, Els: []Element{Copy(0, 9)}}
	if err := outOfRange.Validate(); !errors.Is(err, ErrInvalidCopy) {
		t.Errorf("Validate() = %v, want ErrInvalidCopy", err)
	}
}

func TestBuilderRejectsOverlap(t *testing.T) {
	b := NewBuilder(10)
	if err := b.Replace(Interval{4, 6}, "x"); err != nil {
		t.Fatalf("first Replace error = %v", err)
	}
	if err := b.Replace(Interval{5, 7}, "y"); !errors.Is(err, ErrUnorderedEdit) {
		t.Errorf("overlapping Replace error = %v, want ErrUnorderedEdit", err)
	}
	if err := b.Insert(9, "z"); !errors.Is(err, ErrUnorderedEdit) {
		t.Errorf("Replace after failure error = %v, want sticky ErrUnorderedEdit", err)
	}
}

func TestBuilderLayout(t *testing.T) {
	b := NewBuilder(10)
	_ = b.Delete(Interval{0, 2})
	_ = b.Insert(5, "ab")
	got := b.Build()

	want := &Delta{BaseLen: 10, Els: []Element{Copy(2, 5), Insert("ab"), Copy(5, 10)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON(t *testing.T) {
	const wire = `{"base_len":11,"els":[{"copy":[0,11]},{"insert":"!"}]}`

	var d Delta
	if err := json.Unmarshal([]byte(wire), &d); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if text, ok := d.SimpleInsert(); !ok || text != "!" {
		t.Errorf("SimpleInsert() = (%q, %v), want (\"!\", true)", text, ok)
	}

	out, err := json.Marshal(&d)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(out) != wire {
		t.Errorf("Marshal() = %s, want %s", out, wire)
	}
}

func TestJSONMalformedElement(t *testing.T) {
	var d Delta
	err := json.Unmarshal([]byte(`{"base_len":1,"els":[{"copy":[0,1],"insert":"x"}]}`), &d)
	if !errors.Is(err, ErrMalformedElement) {
		t.Errorf("Unmarshal error = %v, want ErrMalformedElement", err)
	}
}
