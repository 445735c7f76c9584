// Package memdoc provides in-memory pdfdoc documents for exercising reports
// without PDF fixtures.
package memdoc

import (
	"fmt"
	"os"

	"github.com/local/pdfcheck/internal/pdfdoc"
)

// Page is a page whose content is fixed up front. A non-nil Err is returned by
// every accessor.
type Page struct {
	Content string
	Imgs    []pdfdoc.Image
	Width   float64
	Height  float64
	Err     error
}

func (p Page) Text() (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	return p.Content, nil
}

func (p Page) Images() ([]pdfdoc.Image, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Imgs, nil
}

func (p Page) Size() (float64, float64, error) {
	if p.Err != nil {
		return 0, 0, p.Err
	}
	return p.Width, p.Height, nil
}

// Letter returns a US Letter page with the given text and image count.
func Letter(text string, images int) Page {
	p := Page{Content: text, Width: 612, Height: 792}
	for i := 0; i < images; i++ {
		p.Imgs = append(p.Imgs, pdfdoc.Image{Name: fmt.Sprintf("Im%d", i), Width: 100, Height: 100})
	}
	return p
}

// Doc is an in-memory document. Closed reports whether Close was called.
type Doc struct {
	Pages  []Page
	Closed bool
}

func (d *Doc) NumPage() int { return len(d.Pages) }

func (d *Doc) Page(i int) (pdfdoc.Page, error) {
	if i < 0 || i >= len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range", i+1)
	}
	return d.Pages[i], nil
}

func (d *Doc) Close() error {
	d.Closed = true
	return nil
}

// Opener serves documents by path. Unknown paths fail like a missing file.
type Opener struct {
	Docs map[string]*Doc
	Errs map[string]error
}

// New returns an empty Opener.
func New() *Opener {
	return &Opener{Docs: map[string]*Doc{}, Errs: map[string]error{}}
}

// Add registers pages under path and returns the document.
func (o *Opener) Add(path string, pages ...Page) *Doc {
	d := &Doc{Pages: pages}
	o.Docs[path] = d
	return d
}

// Fail makes opening path return err.
func (o *Opener) Fail(path string, err error) {
	o.Errs[path] = err
}

func (o *Opener) Open(path string) (pdfdoc.Doc, error) {
	if err, ok := o.Errs[path]; ok {
		return nil, err
	}
	d, ok := o.Docs[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return d, nil
}
