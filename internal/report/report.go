// Package report renders the diagnostic reports for a single run. Every report
// writes to Runner.Out and prints failures in its own format instead of
// returning them.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfcheck/internal/duplicates"
	"github.com/local/pdfcheck/internal/metrics"
	"github.com/local/pdfcheck/internal/pdfdoc"
	"github.com/local/pdfcheck/internal/source"
)

const (
	defaultPreviewPages = 3
	firstLineRunes      = 50
	previewRunes        = 100
)

// Runner carries the collaborators shared by all reports.
type Runner struct {
	Out    io.Writer
	Opener pdfdoc.Opener // nil uses pdfdoc.Default()

	// Resolver fetches remote references. When nil every reference is a local path.
	Resolver *source.Resolver

	// Suppress filters matching pairs in Verify. Nil reports every match.
	Suppress duplicates.Suppressor

	// Expected is the page count Verify checks for. <= 0 skips the check.
	Expected int

	PreviewPages int
}

// document is an opened PDF plus the local file backing it.
type document struct {
	pdfdoc.Doc
	path    string
	cleanup func()
}

func (d *document) Close() error {
	err := d.Doc.Close()
	d.cleanup()
	return err
}

func (r *Runner) open(ctx context.Context, ref string) (*document, error) {
	path, cleanup := ref, func() {}
	if r.Resolver != nil {
		local, err := r.Resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		path, cleanup = local.Path, local.Cleanup
	}
	d, err := pdfdoc.Open(r.Opener, path)
	if err != nil {
		cleanup()
		return nil, err
	}
	log.Debug().Str("ref", ref).Int("pages", d.NumPage()).Msg("opened pdf")
	return &document{Doc: d, path: path, cleanup: cleanup}, nil
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format, args...)
}

func (r *Runner) println(args ...any) {
	fmt.Fprintln(r.Out, args...)
}

// observe records a finished check. A non-nil err wins over result.
func observe(check, result string, start time.Time, err error) {
	if err != nil {
		result = "error"
		log.Warn().Err(err).Str("check", check).Msg("check failed")
	}
	metrics.ObserveCheck(check, result, time.Since(start))
}

// pageTexts extracts the text of the first n pages (all pages when n < 0).
func pageTexts(d pdfdoc.Doc, n int) ([]string, error) {
	total := d.NumPage()
	if n < 0 || n > total {
		n = total
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p, err := d.Page(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		text, err := p.Text()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		out = append(out, text)
	}
	return out, nil
}

// lines splits trimmed text into lines. Empty text is a single empty line.
func lines(text string) []string {
	return strings.Split(strings.TrimSpace(text), "\n")
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// formatPairs renders 1-based pairs as [(1, 2), (3, 4)].
func formatPairs(pairs []duplicates.Pair) string {
	parts := make([]string, len(pairs))
	for k, p := range pairs {
		parts[k] = fmt.Sprintf("(%d, %d)", p.I+1, p.J+1)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
