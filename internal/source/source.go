package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// tempPattern names every temp file created for remote inputs.
const tempPattern = "pdfcheck-*.pdf"

// Local is a PDF available on the local filesystem. Cleanup removes any
// temporary copy and is always safe to call.
type Local struct {
	Path    string
	Ref     string
	Remote  bool
	Cleanup func()
}

// Options configures a Resolver.
type Options struct {
	HTTPClient  *http.Client
	HTTPTimeout time.Duration
	// Password decrypts GCM3NCR0 envelopes of downloaded files. Empty disables it.
	Password string
	S3       S3Options
}

// Resolver turns input references into local files.
// Supports:
// - file://path or absolute/relative filesystem paths
// - http(s):// URLs (downloads to temp)
// - s3://bucket/key (downloads to temp via AWS SDK v2)
type Resolver struct {
	http     *http.Client
	password string
	s3opts   S3Options
	s3       *s3Fetcher
}

// New creates a Resolver. S3 clients are created on first use.
func New(opts Options) *Resolver {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.HTTPTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Resolver{http: client, password: opts.Password, s3opts: opts.S3}
}

// Resolve returns a local file for ref. Remote content is downloaded to a temp file.
func (r *Resolver) Resolve(ctx context.Context, ref string) (Local, error) {
	switch {
	case strings.HasPrefix(ref, "s3://"):
		clean := stripFragment(ref)
		if r.s3 == nil {
			f, err := newS3Fetcher(ctx, r.s3opts)
			if err != nil {
				return Local{}, err
			}
			r.s3 = f
		}
		return r.download(ref, func(w *os.File) error { return r.s3.fetch(ctx, clean, w) })
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		clean := stripFragment(ref)
		return r.download(ref, func(w *os.File) error { return r.fetchHTTP(ctx, clean, w) })
	case strings.HasPrefix(ref, "file://"):
		return Local{Path: strings.TrimPrefix(ref, "file://"), Ref: ref, Cleanup: func() {}}, nil
	default:
		return Local{Path: ref, Ref: ref, Cleanup: func() {}}, nil
	}
}

// stripFragment drops an optional #page fragment from a URL.
func stripFragment(ref string) string {
	if i := strings.Index(ref, "#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

// download writes remote content into a fresh temp file, decrypting it if needed.
func (r *Resolver) download(ref string, fetch func(w *os.File) error) (Local, error) {
	f, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return Local{}, err
	}
	name := f.Name()
	remove := func() { _ = os.Remove(name) }

	if err := fetch(f); err != nil {
		f.Close()
		remove()
		return Local{}, err
	}
	if err := f.Close(); err != nil {
		remove()
		return Local{}, err
	}
	if r.password != "" {
		if err := decryptInPlace(name, r.password); err != nil {
			remove()
			return Local{}, err
		}
	}
	log.Debug().Str("ref", ref).Str("file", filepath.Base(name)).Msg("downloaded input to temp")
	return Local{Path: name, Ref: ref, Remote: true, Cleanup: remove}, nil
}

func (r *Resolver) fetchHTTP(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// CleanupTemps removes temp files created by Resolve that are older than maxAge.
func CleanupTemps(maxAge time.Duration) int {
	matches, _ := filepath.Glob(filepath.Join(os.TempDir(), tempPattern))
	now := time.Now()
	removed := 0
	for _, p := range matches {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if now.Sub(info.ModTime()) >= maxAge {
			if os.Remove(p) == nil {
				removed++
			}
		}
	}
	return removed
}
