package report

import (
	"context"
	"strings"
	"time"

	"github.com/local/pdfcheck/internal/duplicates"
	"github.com/local/pdfcheck/internal/metrics"
)

// Content prints a short preview of every page and the pages whose trimmed
// text is identical.
func (r *Runner) Content(ctx context.Context, ref string) {
	start := time.Now()
	result, err := r.content(ctx, ref)
	if err != nil {
		r.printf("Error: %v\n", err)
	}
	observe("content", result, start, err)
}

func (r *Runner) content(ctx context.Context, ref string) (string, error) {
	d, err := r.open(ctx, ref)
	if err != nil {
		return "", err
	}
	defer d.Close()

	r.printf("%s has %d pages\n", ref, d.NumPage())
	texts, err := pageTexts(d, -1)
	if err != nil {
		return "", err
	}

	r.printf("\nPage content analysis:\n")
	trimmed := make([]string, len(texts))
	for i, text := range texts {
		trimmed[i] = strings.TrimSpace(text)
		r.printf("Page %d: %s\n", i+1, contentPreview(text))
	}
	metrics.AddPages("content", len(texts))

	r.printf("\nDuplicate analysis:\n")
	pairs := duplicates.Identical(trimmed)
	metrics.AddDuplicates("content", len(pairs))
	if len(pairs) > 0 {
		r.printf("Found duplicates between pages: %s\n", formatPairs(pairs))
		return "fail", nil
	}
	r.println("No duplicate pages found")
	return "pass", nil
}

// contentPreview joins the first three lines with spaces, capped at 100 runes.
func contentPreview(text string) string {
	ls := lines(text)
	if len(ls) > 3 {
		ls = ls[:3]
	}
	joined := strings.Join(ls, " ")
	if short := truncate(joined, previewRunes); short != joined {
		return short + "..."
	}
	return joined
}
