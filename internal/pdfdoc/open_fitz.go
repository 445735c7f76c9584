package pdfdoc

import (
	"fmt"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// fitzOpener reads text through go-fitz (MuPDF) and page structure (boxes,
// rotation, image XObjects) through a pageTree. The tree is opened lazily so
// text-only reports never depend on it.
type fitzOpener struct{}

func (fitzOpener) Open(path string) (Doc, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &fitzDoc{doc: doc, path: path}, nil
}

func init() {
	SetDefaultOpener(fitzOpener{})
}

type fitzDoc struct {
	doc  *fitz.Document
	path string

	tree    pageTree
	treeErr error
}

func (d *fitzDoc) NumPage() int { return d.doc.NumPage() }

func (d *fitzDoc) Page(i int) (Page, error) {
	if i < 0 || i >= d.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", i+1, d.doc.NumPage())
	}
	return &fitzPage{doc: d, index: i}, nil
}

func (d *fitzDoc) Close() error {
	if d.tree != nil {
		_ = d.tree.Close()
		d.tree = nil
	}
	return d.doc.Close()
}

// structure opens the page tree on first use. rsc.io/pdf is tried first and
// pdfcpu covers what it cannot read, such as AES-256 encryption.
func (d *fitzDoc) structure() (pageTree, error) {
	if d.tree != nil || d.treeErr != nil {
		return d.tree, d.treeErr
	}
	rt, err := openRSCTree(d.path)
	if err == nil {
		d.tree = rt
		return rt, nil
	}
	log.Debug().Err(err).Str("pdf", d.path).Msg("rsc.io/pdf cannot read page tree, trying pdfcpu")
	ct, cerr := openCPUTree(d.path)
	if cerr != nil {
		d.treeErr = fmt.Errorf("%w (pdfcpu: %v)", err, cerr)
		return nil, d.treeErr
	}
	d.tree = ct
	return ct, nil
}

type fitzPage struct {
	doc   *fitzDoc
	index int
}

func (p *fitzPage) Text() (string, error) {
	return p.doc.doc.Text(p.index)
}

func (p *fitzPage) Images() ([]Image, error) {
	t, err := p.doc.structure()
	if err != nil {
		return nil, err
	}
	return t.images(p.index)
}

func (p *fitzPage) Size() (float64, float64, error) {
	t, err := p.doc.structure()
	if err != nil {
		return 0, 0, err
	}
	box, rotate, err := t.geometry(p.index)
	if err != nil {
		return 0, 0, err
	}
	w, h := boxSize(box, rotate)
	return w, h, nil
}
