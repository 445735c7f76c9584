package report

import (
	"context"
	"time"

	"github.com/local/pdfcheck/internal/metrics"
)

// Quick prints the page count of every reference, one line each.
func (r *Runner) Quick(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		start := time.Now()
		n, err := r.pageCount(ctx, ref)
		if err != nil {
			r.printf("%s: Error - %v\n", ref, err)
		} else {
			r.printf("%s: %d pages\n", ref, n)
			metrics.AddPages("quick", n)
		}
		observe("quick", "pass", start, err)
	}
}

func (r *Runner) pageCount(ctx context.Context, ref string) (int, error) {
	d, err := r.open(ctx, ref)
	if err != nil {
		return 0, err
	}
	defer d.Close()
	return d.NumPage(), nil
}
