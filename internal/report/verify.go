package report

import (
	"context"
	"time"

	"github.com/local/pdfcheck/internal/duplicates"
	"github.com/local/pdfcheck/internal/filetype"
	"github.com/local/pdfcheck/internal/metrics"
	"github.com/local/pdfcheck/internal/pdfdoc"
)

// Verify checks ref for duplicate pages and, when Expected is set, for the
// expected page count. It prints a verdict line and returns it.
//
// The verdict is the page count check. Without an expected count it is the
// absence of duplicates.
func (r *Runner) Verify(ctx context.Context, ref string) bool {
	start := time.Now()
	ok, err := r.verify(ctx, ref)
	if err != nil {
		r.printf("Error analyzing %s: %v\n", ref, err)
		ok = false
	}
	result := "fail"
	if ok {
		result = "pass"
	}
	observe("verify", result, start, err)

	if ok {
		r.printf("\n✓ VERIFICATION PASSED: %s is correct\n", ref)
	} else {
		r.printf("\n✗ VERIFICATION FAILED: %s has issues\n", ref)
	}
	return ok
}

func (r *Runner) verify(ctx context.Context, ref string) (bool, error) {
	d, err := r.open(ctx, ref)
	if err != nil {
		return false, err
	}
	defer d.Close()

	size, err := filetype.Size(d.path)
	if err != nil {
		return false, err
	}
	total := d.NumPage()
	r.printf("%s analysis:\n", ref)
	r.printf("  Total pages: %d\n", total)
	r.printf("  File size: %d bytes\n", size)

	infos, err := pdfdoc.Collect(d)
	if err != nil {
		return false, err
	}
	r.printf("\nPage content analysis:\n")
	for _, info := range infos {
		md := info.Metadata
		r.printf("  Page %d: %d chars, %d lines, %d images, %.0fx%.0f\n",
			info.Number, md.TextLength, md.LineCount, md.ImageCount, md.Width, md.Height)
	}
	metrics.AddPages("verify", len(infos))

	r.printf("\nDuplicate analysis:\n")
	pairs := duplicates.Detect(pdfdoc.Metadata(infos), r.Suppress)
	metrics.AddDuplicates("verify", len(pairs))
	if len(pairs) > 0 {
		r.printf("  ERROR: Found real duplicates between pages: %s\n", formatPairs(pairs))
	} else {
		r.println("  SUCCESS: No real duplicate pages found")
	}

	ok := len(pairs) == 0
	if r.Expected > 0 {
		ok = total == r.Expected
		if ok {
			r.printf("  SUCCESS: Correct number of pages (%d)\n", r.Expected)
		} else {
			r.printf("  ERROR: Expected %d pages, got %d\n", r.Expected, total)
		}
	}

	if r.Suppress != nil {
		r.println("\nNote: form pages may appear similar if they contain only form fields")
		r.println("without extractable text. This is normal for form templates.")
	}
	return ok, nil
}
