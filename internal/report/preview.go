package report

import (
	"context"
	"time"

	"github.com/local/pdfcheck/internal/metrics"
)

// Preview prints the page count and the first line of the leading pages.
// An empty label falls back to the reference.
func (r *Runner) Preview(ctx context.Context, label, ref string) {
	if label == "" {
		label = ref
	}
	start := time.Now()
	err := r.preview(ctx, label, ref)
	if err != nil {
		r.printf("%s error: %v\n", label, err)
	}
	observe("preview", "pass", start, err)
}

func (r *Runner) preview(ctx context.Context, label, ref string) error {
	d, err := r.open(ctx, ref)
	if err != nil {
		return err
	}
	defer d.Close()

	r.printf("%s result: %d pages\n", label, d.NumPage())

	n := r.PreviewPages
	if n <= 0 {
		n = defaultPreviewPages
	}
	texts, err := pageTexts(d, n)
	if err != nil {
		return err
	}
	for i, text := range texts {
		ls := lines(text)
		r.printf("Page %d: %d lines of content\n", i+1, len(ls))
		r.printf("  First line: %s\n", truncate(ls[0], firstLineRunes))
	}
	metrics.AddPages("preview", len(texts))
	return nil
}
