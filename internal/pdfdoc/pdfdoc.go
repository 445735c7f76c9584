package pdfdoc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/local/pdfcheck/internal/duplicates"
)

// maxImageRefs caps how many image descriptors are recorded per page.
const maxImageRefs = 3

// ErrNoOpener is returned when no backend has been configured.
var ErrNoOpener = errors.New("no PDF opener configured")

// Image describes an image XObject referenced by a page.
type Image struct {
	Name   string
	Width  int
	Height int
}

// Doc abstracts an opened PDF document. Page indices are 0-based.
type Doc interface {
	NumPage() int
	Page(i int) (Page, error)
	Close() error
}

// Page abstracts a single page of a Doc.
type Page interface {
	Text() (string, error)
	Images() ([]Image, error)
	Size() (width, height float64, err error)
}

// Opener abstracts opening a PDF path into a Doc.
type Opener interface {
	Open(path string) (Doc, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Doc, error)

func (f OpenerFunc) Open(path string) (Doc, error) { return f(path) }

// defaultOpener is provided in open_fitz.go.
var defaultOpener Opener

// SetDefaultOpener swaps the backend returned by Default.
func SetDefaultOpener(o Opener) { defaultOpener = o }

// Default returns the configured backend.
func Default() Opener { return defaultOpener }

// Open opens path with o, falling back to the default backend when o is nil.
func Open(o Opener, path string) (Doc, error) {
	if o == nil {
		o = defaultOpener
	}
	if o == nil {
		return nil, ErrNoOpener
	}
	d, err := o.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return d, nil
}

// PageInfo is the per-page result of Collect.
type PageInfo struct {
	Number   int // 1-based
	Text     string
	Metadata duplicates.PageMetadata
}

// Collect reads text, images and geometry for every page of d, in page order.
func Collect(d Doc) ([]PageInfo, error) {
	total := d.NumPage()
	out := make([]PageInfo, 0, total)
	for i := 0; i < total; i++ {
		p, err := d.Page(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		info, err := describe(p)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		info.Number = i + 1
		out = append(out, info)
	}
	return out, nil
}

func describe(p Page) (PageInfo, error) {
	text, err := p.Text()
	if err != nil {
		return PageInfo{}, fmt.Errorf("text: %w", err)
	}
	images, err := p.Images()
	if err != nil {
		return PageInfo{}, fmt.Errorf("images: %w", err)
	}
	w, h, err := p.Size()
	if err != nil {
		return PageInfo{}, fmt.Errorf("size: %w", err)
	}

	trimmed := strings.TrimSpace(text)
	md := duplicates.PageMetadata{
		TextLength: utf8.RuneCountInString(trimmed),
		LineCount:  len(strings.Split(trimmed, "\n")),
		ImageCount: len(images),
		Width:      w,
		Height:     h,
	}
	for k, img := range images {
		if k == maxImageRefs {
			break
		}
		md.Images = append(md.Images, duplicates.ImageRef{Name: img.Name, Width: img.Width, Height: img.Height})
	}
	return PageInfo{Text: text, Metadata: md}, nil
}

// Metadata projects infos onto their page metadata.
func Metadata(infos []PageInfo) []duplicates.PageMetadata {
	out := make([]duplicates.PageMetadata, len(infos))
	for i, info := range infos {
		out[i] = info.Metadata
	}
	return out
}
