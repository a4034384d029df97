package stats

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/wordcount/internal/host"
	"github.com/dshills/wordcount/internal/memhost"
	"github.com/dshills/wordcount/internal/tokenize"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Counts
	}{
		{"empty", "", Counts{Words: 0, Lines: 1, Chars: 0}},
		{"three lines", "a\nb\nc", Counts{Words: 3, Lines: 3, Chars: 5}},
		{"trailing newline", "a\nb\n", Counts{Words: 2, Lines: 3, Chars: 4}},
		{"spaces", "a b  c", Counts{Words: 3, Lines: 1, Chars: 6}},
		{"hyphen", "hello-world", Counts{Words: 2, Lines: 1, Chars: 11}},
		{"multibyte", "naïve café\n", Counts{Words: 2, Lines: 2, Chars: 13}},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := memhost.NewDocument("v", tt.text)
			got, err := e.Count(context.Background(), doc)
			if err != nil {
				t.Fatalf("Count error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Count() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCountMatchesWholeText(t *testing.T) {
	text := "The quick-brown fox\n\njumps over_the lazy dog.\n  42 times\n"
	doc := memhost.NewDocument("v", text)

	got, err := NewEngine().Count(context.Background(), doc)
	if err != nil {
		t.Fatalf("Count error = %v", err)
	}
	if want := tokenize.Word().CountWords(text); got.Words != want {
		t.Errorf("Words = %d, want %d (whole-text count)", got.Words, want)
	}
	if got.Lines != strings.Count(text, "\n")+1 {
		t.Errorf("Lines = %d, want %d", got.Lines, strings.Count(text, "\n")+1)
	}
}

func TestRefreshUpserts(t *testing.T) {
	ctx := context.Background()
	doc := memhost.NewDocument("v", "one two")
	e := NewEngine(WithAlignment(host.AlignRight))
	var st State

	if _, err := e.Refresh(ctx, doc, &st); err != nil {
		t.Fatalf("first Refresh error = %v", err)
	}
	if !st.Published {
		t.Error("Published = false after first refresh")
	}
	adds, updates, dups := doc.StatusStats()
	if adds != 3 || updates != 0 || dups != 0 {
		t.Errorf("after first refresh: adds=%d updates=%d dups=%d, want 3/0/0", adds, updates, dups)
	}

	// Unchanged document: nothing to send.
	if _, err := e.Refresh(ctx, doc, &st); err != nil {
		t.Fatalf("second Refresh error = %v", err)
	}
	adds, updates, dups = doc.StatusStats()
	if adds != 3 || updates != 0 || dups != 0 {
		t.Errorf("after second refresh: adds=%d updates=%d dups=%d, want 3/0/0", adds, updates, dups)
	}

	// Only the changed items are updated.
	other := memhost.NewDocument("v", "one two three")
	copyStatus(t, doc, other)
	if _, err := e.Refresh(ctx, other, &st); err != nil {
		t.Fatalf("third Refresh error = %v", err)
	}
	_, updates, dups = other.StatusStats()
	if updates != 2 || dups != 0 {
		t.Errorf("after change: updates=%d dups=%d, want 2/0", updates, dups)
	}

	want := []memhost.StatusItem{
		{Key: KeyChars, Value: "Chars: 13", Alignment: host.AlignRight},
		{Key: KeyLines, Value: "Lines: 1", Alignment: host.AlignRight},
		{Key: KeyWords, Value: "Words: 3", Alignment: host.AlignRight},
	}
	if diff := cmp.Diff(want, other.StatusItems()); diff != "" {
		t.Errorf("status items mismatch (-want +got):\n%s", diff)
	}
}

// copyStatus seeds dst with the status items of src so refreshes against
// dst behave like later refreshes of the same view.
func copyStatus(t *testing.T, src, dst *memhost.Document) {
	t.Helper()
	for _, item := range src.StatusItems() {
		if err := dst.AddStatusItem(context.Background(), item.Key, item.Value, item.Alignment); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRefreshFailureKeepsPreviousCounts(t *testing.T) {
	ctx := context.Background()
	doc := memhost.NewDocument("v", "alpha beta")
	e := NewEngine()
	var st State

	if _, err := e.Refresh(ctx, doc, &st); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	before := st.Counts

	doc.Fail(memhost.OpGetLine, host.ErrIO)
	got, err := e.Refresh(ctx, doc, &st)
	if !errors.Is(err, host.ErrIO) {
		t.Fatalf("Refresh error = %v, want ErrIO", err)
	}
	if got != before || st.Counts != before {
		t.Errorf("counts after failure = %v / %v, want %v", got, st.Counts, before)
	}
	if item, _ := doc.StatusItem(KeyWords); item.Value != "Words: 2" {
		t.Errorf("words item = %q, want %q", item.Value, "Words: 2")
	}
}

func TestRefreshFailureBeforeFirstPublish(t *testing.T) {
	doc := memhost.NewDocument("v", "alpha")
	doc.Fail(memhost.OpLineOfOffset, host.ErrOffsetOutOfRange)

	var st State
	if _, err := NewEngine().Refresh(context.Background(), doc, &st); err == nil {
		t.Fatal("Refresh error = nil, want failure")
	}
	if st.Published {
		t.Error("Published = true after failed first refresh")
	}
	if items := doc.StatusItems(); len(items) != 0 {
		t.Errorf("status items = %v, want none", items)
	}
}

// failingKeyView rejects updates of one status key.
type failingKeyView struct {
	*memhost.Document
	key string
	err error
}

func (v *failingKeyView) UpdateStatusItem(ctx context.Context, key, value string) error {
	if key == v.key && v.err != nil {
		return v.err
	}
	return v.Document.UpdateStatusItem(ctx, key, value)
}

func TestRefreshStatusFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	doc := memhost.NewDocument("v", "one two")
	e := NewEngine()
	var st State
	if _, err := e.Refresh(ctx, doc, &st); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	before := st.Counts

	other := memhost.NewDocument("v", "one two three")
	copyStatus(t, doc, other)
	view := &failingKeyView{Document: other, key: KeyChars, err: host.ErrIO}

	got, err := e.Refresh(ctx, view, &st)
	if !errors.Is(err, host.ErrIO) {
		t.Fatalf("Refresh error = %v, want ErrIO", err)
	}
	if got != before || st.Counts != before {
		t.Errorf("counts after failure = %v / %v, want %v", got, st.Counts, before)
	}
	want := []memhost.StatusItem{
		{Key: KeyChars, Value: "Chars: 7", Alignment: host.AlignLeft},
		{Key: KeyLines, Value: "Lines: 1", Alignment: host.AlignLeft},
		{Key: KeyWords, Value: "Words: 2", Alignment: host.AlignLeft},
	}
	if diff := cmp.Diff(want, other.StatusItems()); diff != "" {
		t.Errorf("status items after failure (-want +got):\n%s", diff)
	}

	view.err = nil
	if _, err := e.Refresh(ctx, view, &st); err != nil {
		t.Fatalf("Refresh after recovery error = %v", err)
	}
	if item, _ := other.StatusItem(KeyWords); item.Value != "Words: 3" {
		t.Errorf("words item = %q, want %q", item.Value, "Words: 3")
	}
	if item, _ := other.StatusItem(KeyChars); item.Value != "Chars: 13" {
		t.Errorf("chars item = %q, want %q", item.Value, "Chars: 13")
	}
}

func TestCustomTokenizer(t *testing.T) {
	lines := 0
	tok := tokenize.Func(func(text string) int {
		lines++
		return 1
	})
	doc := memhost.NewDocument("v", "x\ny\nz")

	got, err := NewEngine(WithTokenizer(tok)).Count(context.Background(), doc)
	if err != nil {
		t.Fatalf("Count error = %v", err)
	}
	if got.Words != 3 || lines != 3 {
		t.Errorf("Words = %d, tokenizer calls = %d, want 3 and 3", got.Words, lines)
	}
}

func TestFormat(t *testing.T) {
	if got := FormatWords(5); got != "Words: 5" {
		t.Errorf("FormatWords(5) = %q", got)
	}
	if got := FormatLines(1); got != "Lines: 1" {
		t.Errorf("FormatLines(1) = %q", got)
	}
	if got := FormatChars(0); got != "Chars: 0" {
		t.Errorf("FormatChars(0) = %q", got)
	}
}
