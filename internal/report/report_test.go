package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/local/pdfcheck/internal/duplicates"
	"github.com/local/pdfcheck/internal/pdfdoc/memdoc"
)

const emailText = "From: billing@example.com\nTo: ops@example.com\nSubject: Invoice 1042\n\nPlease find the invoice attached."

// onDisk creates a small file at name so file size reporting has something to stat.
func onDisk(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("%PDF-1.4\n%%EOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// mergedDoc registers one text page followed by three blank form pages.
func mergedDoc(t *testing.T, o *memdoc.Opener) (string, *memdoc.Doc) {
	t.Helper()
	path := onDisk(t, "merged.pdf")
	form := memdoc.Letter("", 1)
	return path, o.Add(path, memdoc.Letter(emailText, 0), form, form, form)
}

func newRunner(o *memdoc.Opener) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Runner{Out: &buf, Opener: o, Suppress: duplicates.FormTemplate, Expected: 4}, &buf
}

func TestVerify(t *testing.T) {
	cases := []struct {
		name     string
		suppress duplicates.Suppressor
		expected int
		wantOK   bool
		want     []string
	}{
		{
			name:     "form pages suppressed",
			suppress: duplicates.FormTemplate,
			expected: 4,
			wantOK:   true,
			want: []string{
				"  Total pages: 4",
				"  Page 2: 0 chars, 1 lines, 1 images, 612x792",
				"  SUCCESS: No real duplicate pages found",
				"  SUCCESS: Correct number of pages (4)",
				"✓ VERIFICATION PASSED:",
			},
		},
		{
			name:     "no suppression reports form pages",
			suppress: nil,
			expected: 4,
			wantOK:   true,
			want: []string{
				"  ERROR: Found real duplicates between pages: [(2, 3), (2, 4), (3, 4)]",
				"  SUCCESS: Correct number of pages (4)",
			},
		},
		{
			name:     "wrong page count",
			suppress: duplicates.FormTemplate,
			expected: 5,
			wantOK:   false,
			want: []string{
				"  ERROR: Expected 5 pages, got 4",
				"✗ VERIFICATION FAILED:",
			},
		},
		{
			name:     "no expected count falls back to duplicates",
			suppress: nil,
			expected: 0,
			wantOK:   false,
			want:     []string{"✗ VERIFICATION FAILED:"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := memdoc.New()
			path, doc := mergedDoc(t, o)
			r, buf := newRunner(o)
			r.Suppress = tc.suppress
			r.Expected = tc.expected

			if got := r.Verify(context.Background(), path); got != tc.wantOK {
				t.Fatalf("Verify = %v, want %v\n%s", got, tc.wantOK, buf.String())
			}
			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q\n%s", w, buf.String())
				}
			}
			if !doc.Closed {
				t.Error("document not closed")
			}
		})
	}
}

func TestVerifyPageFailure(t *testing.T) {
	o := memdoc.New()
	path := onDisk(t, "broken.pdf")
	doc := o.Add(path, memdoc.Letter("ok", 0), memdoc.Page{Err: errors.New("bad content stream")})
	r, buf := newRunner(o)

	if r.Verify(context.Background(), path) {
		t.Fatal("Verify passed on unreadable page")
	}
	out := buf.String()
	if !strings.Contains(out, "Error analyzing "+path+": page 2: text: bad content stream") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "✗ VERIFICATION FAILED: "+path+" has issues") {
		t.Fatalf("missing verdict:\n%s", out)
	}
	if !doc.Closed {
		t.Error("document not closed")
	}
}

func TestQuick(t *testing.T) {
	o := memdoc.New()
	o.Add("email.pdf", memdoc.Letter(emailText, 0))
	o.Add("Forms.pdf", memdoc.Letter("", 1), memdoc.Letter("", 1), memdoc.Letter("", 1))
	o.Fail("locked.pdf", errors.New("password required"))
	r, buf := newRunner(o)

	r.Quick(context.Background(), "email.pdf", "Forms.pdf", "locked.pdf", "missing.pdf")

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"email.pdf: 1 pages",
		"Forms.pdf: 3 pages",
		"locked.pdf: Error - failed to open PDF: password required",
		"missing.pdf: Error - failed to open PDF: open missing.pdf: file does not exist",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPreview(t *testing.T) {
	o := memdoc.New()
	long := strings.Repeat("x", 80)
	o.Add("cli_test.pdf",
		memdoc.Letter(emailText, 0),
		memdoc.Letter("  \n"+long+"\nsecond\n", 0),
		memdoc.Letter("", 1),
		memdoc.Letter("never shown", 0),
	)
	r, buf := newRunner(o)

	r.Preview(context.Background(), "CLI test", "cli_test.pdf")

	want := "CLI test result: 4 pages\n" +
		"Page 1: 5 lines of content\n" +
		"  First line: From: billing@example.com\n" +
		"Page 2: 2 lines of content\n" +
		"  First line: " + strings.Repeat("x", 50) + "\n" +
		"Page 3: 1 lines of content\n" +
		"  First line: \n"
	if buf.String() != want {
		t.Fatalf("output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPreviewError(t *testing.T) {
	r, buf := newRunner(memdoc.New())
	r.Preview(context.Background(), "", "gone.pdf")
	if !strings.HasPrefix(buf.String(), "gone.pdf error: failed to open PDF") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestContent(t *testing.T) {
	o := memdoc.New()
	long := strings.Repeat("a", 120)
	o.Add("merged.pdf",
		memdoc.Letter("one\ntwo\nthree\nfour", 0),
		memdoc.Letter(long, 0),
		memdoc.Letter("  one\ntwo\nthree\nfour\n\n", 0),
	)
	r, buf := newRunner(o)

	r.Content(context.Background(), "merged.pdf")

	out := buf.String()
	for _, w := range []string{
		"merged.pdf has 3 pages\n",
		"Page 1: one two three\n",
		"Page 2: " + strings.Repeat("a", 100) + "...\n",
		"Found duplicates between pages: [(1, 3)]\n",
	} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
}

func TestContentNoDuplicates(t *testing.T) {
	o := memdoc.New()
	o.Add("email.pdf", memdoc.Letter("alpha", 0), memdoc.Letter("beta", 0))
	r, buf := newRunner(o)
	r.Content(context.Background(), "email.pdf")
	if !strings.HasSuffix(buf.String(), "No duplicate pages found\n") {
		t.Fatalf("output:\n%s", buf.String())
	}
}

func TestDetailed(t *testing.T) {
	o := memdoc.New()
	path := onDisk(t, "merged.pdf")
	o.Add(path,
		memdoc.Letter("same\ntext", 0),
		memdoc.Letter("same\ntext", 0),
		memdoc.Letter("longer text", 0),
	)
	r, buf := newRunner(o)

	r.Detailed(context.Background(), path)

	out := buf.String()
	for _, w := range []string{
		"  Pages: 3\n",
		"  File size: 15 bytes\n",
		"  Content length: 9 characters\n",
		`  Preview: 'same\ntext'` + "\n",
		"  Pages 1 and 2 are IDENTICAL\n",
		"  Pages 1 and 3 are DIFFERENT\n    Length difference: 2 characters\n",
		"  Pages 2 and 3 are DIFFERENT\n",
	} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
}

func TestDetailedMissingFile(t *testing.T) {
	o := memdoc.New()
	o.Add("nowhere.pdf", memdoc.Letter("x", 0))
	r, buf := newRunner(o)
	r.Detailed(context.Background(), "nowhere.pdf")
	if !strings.HasPrefix(buf.String(), "Error: ") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestFormatPairs(t *testing.T) {
	if got := formatPairs(nil); got != "[]" {
		t.Errorf("formatPairs(nil) = %q", got)
	}
	got := formatPairs([]duplicates.Pair{{I: 0, J: 1}, {I: 2, J: 3}})
	if got != "[(1, 2), (3, 4)]" {
		t.Errorf("formatPairs = %q", got)
	}
}
