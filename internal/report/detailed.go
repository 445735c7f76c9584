package report

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/local/pdfcheck/internal/duplicates"
	"github.com/local/pdfcheck/internal/filetype"
	"github.com/local/pdfcheck/internal/metrics"
)

// Detailed prints per-page content lengths and previews, then compares the raw
// text of every page pair.
func (r *Runner) Detailed(ctx context.Context, ref string) {
	start := time.Now()
	result, err := r.detailed(ctx, ref)
	if err != nil {
		r.printf("Error: %v\n", err)
	}
	observe("detailed", result, start, err)
}

func (r *Runner) detailed(ctx context.Context, ref string) (string, error) {
	d, err := r.open(ctx, ref)
	if err != nil {
		return "", err
	}
	defer d.Close()

	size, err := filetype.Size(d.path)
	if err != nil {
		return "", err
	}
	r.printf("%s detailed analysis:\n", ref)
	r.printf("  Pages: %d\n", d.NumPage())
	r.printf("  File size: %d bytes\n", size)

	texts, err := pageTexts(d, -1)
	if err != nil {
		return "", err
	}
	for i, text := range texts {
		r.printf("\nPage %d:\n", i+1)
		r.printf("  Content length: %d characters\n", utf8.RuneCountInString(text))
		r.printf("  Preview: '%s'\n", strings.ReplaceAll(truncate(text, previewRunes), "\n", `\n`))
	}
	metrics.AddPages("detailed", len(texts))

	r.printf("\nDuplicate check:\n")
	same := duplicates.Identical(texts)
	identical := make(map[duplicates.Pair]bool, len(same))
	for _, p := range same {
		identical[p] = true
	}
	for i := range texts {
		for j := i + 1; j < len(texts); j++ {
			if identical[duplicates.Pair{I: i, J: j}] {
				r.printf("  Pages %d and %d are IDENTICAL\n", i+1, j+1)
				continue
			}
			r.printf("  Pages %d and %d are DIFFERENT\n", i+1, j+1)
			diff := utf8.RuneCountInString(texts[i]) - utf8.RuneCountInString(texts[j])
			if diff < 0 {
				diff = -diff
			}
			r.printf("    Length difference: %d characters\n", diff)
		}
	}
	metrics.AddDuplicates("detailed", len(same))
	if len(same) > 0 {
		return "fail", nil
	}
	return "pass", nil
}
