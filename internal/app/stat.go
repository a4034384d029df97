package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dshills/wordcount/internal/memhost"
	"github.com/dshills/wordcount/internal/stats"
)

// FileCounts is the result of counting one file.
type FileCounts struct {
	Path   string
	Counts stats.Counts
}

// Stat counts each file by opening it in an in-memory host, the same way an
// editor would open it. Files that cannot be read or counted are reported
// in the returned error; the others are still counted.
func (app *Application) Stat(ctx context.Context, files []string) ([]FileCounts, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	h := memhost.New(app.plugin)
	var (
		results []FileCounts
		errs    []error
	)
	for _, path := range files {
		c, err := app.statFile(ctx, h, path)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			errs = append(errs, NewOperationError("stat", path, err))
			continue
		}
		results = append(results, FileCounts{Path: path, Counts: c})
	}
	return results, errors.Join(errs...)
}

func (app *Application) statFile(ctx context.Context, h *memhost.Host, path string) (stats.Counts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return stats.Counts{}, err
	}

	doc, err := h.Open(ctx, string(data))
	if err != nil {
		return stats.Counts{}, err
	}
	defer h.Close(ctx, doc.ID())

	return app.plugin.Counts(doc.ID())
}

// WriteCounts prints results in wc order (lines, words, chars), with a
// total line when there is more than one file.
func WriteCounts(w io.Writer, results []FileCounts) error {
	var total stats.Counts
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%8d %8d %8d %s\n", r.Counts.Lines, r.Counts.Words, r.Counts.Chars, r.Path); err != nil {
			return err
		}
		total.Lines += r.Counts.Lines
		total.Words += r.Counts.Words
		total.Chars += r.Counts.Chars
	}
	if len(results) > 1 {
		_, err := fmt.Fprintf(w, "%8d %8d %8d total\n", total.Lines, total.Words, total.Chars)
		return err
	}
	return nil
}
