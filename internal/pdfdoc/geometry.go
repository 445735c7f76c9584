package pdfdoc

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	rpdf "rsc.io/pdf"
)

// maxTreeDepth bounds the walk up the page tree.
const maxTreeDepth = 32

var errNoBox = errors.New("no MediaBox")

// pageTree reads page boxes and resources. Page indices are 0-based.
type pageTree interface {
	geometry(i int) (box [4]float64, rotate int64, err error)
	images(i int) ([]Image, error)
	Close() error
}

// boxSize returns the displayed width and height of box [llx lly urx ury]
// under a /Rotate of rotate degrees.
func boxSize(box [4]float64, rotate int64) (float64, float64) {
	w := math.Abs(box[2] - box[0])
	h := math.Abs(box[3] - box[1])
	switch ((rotate % 360) + 360) % 360 {
	case 90, 270:
		return h, w
	}
	return w, h
}

// recoverMalformed turns a parser panic into *err.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed page tree: %v", r)
	}
}

// rscTree reads the page tree with rsc.io/pdf, which panics on objects it
// cannot resolve.
type rscTree struct {
	f *os.File
	r *rpdf.Reader
}

func openRSCTree(path string) (t *rscTree, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()
	defer recoverMalformed(&err)

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r, err := rpdf.NewReader(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("read page tree: %w", err)
	}
	return &rscTree{f: f, r: r}, nil
}

func (t *rscTree) Close() error { return t.f.Close() }

func (t *rscTree) page(i int) (rpdf.Value, error) {
	v := t.r.Page(i + 1).V
	if v.IsNull() {
		return rpdf.Value{}, fmt.Errorf("page %d not found in page tree", i+1)
	}
	return v, nil
}

func (t *rscTree) geometry(i int) (box [4]float64, rotate int64, err error) {
	defer recoverMalformed(&err)
	v, err := t.page(i)
	if err != nil {
		return box, 0, err
	}
	box, ok := pageBox(v)
	if !ok {
		return box, 0, errNoBox
	}
	return box, inherited(v, "Rotate").Int64(), nil
}

func (t *rscTree) images(i int) (imgs []Image, err error) {
	defer recoverMalformed(&err)
	v, err := t.page(i)
	if err != nil {
		return nil, err
	}
	return imageXObjects(inherited(v, "Resources")), nil
}

// inherited looks key up on the page and then on its ancestors.
func inherited(v rpdf.Value, key string) rpdf.Value {
	for depth := 0; !v.IsNull() && depth < maxTreeDepth; depth++ {
		if x := v.Key(key); !x.IsNull() {
			return x
		}
		v = v.Key("Parent")
	}
	return rpdf.Value{}
}

// pageBox returns the CropBox, or the MediaBox when no CropBox is set.
func pageBox(v rpdf.Value) ([4]float64, bool) {
	for _, key := range []string{"CropBox", "MediaBox"} {
		b := inherited(v, key)
		if b.Kind() != rpdf.Array || b.Len() != 4 {
			continue
		}
		var box [4]float64
		for i := range box {
			box[i] = b.Index(i).Float64()
		}
		return box, true
	}
	return [4]float64{}, false
}

// imageXObjects lists the image XObjects of a resource dictionary in name order.
func imageXObjects(res rpdf.Value) []Image {
	xobj := res.Key("XObject")
	if xobj.Kind() != rpdf.Dict {
		return nil
	}
	keys := xobj.Keys()
	sort.Strings(keys)
	var out []Image
	for _, name := range keys {
		obj := xobj.Key(name)
		if obj.Key("Subtype").Name() != "Image" {
			continue
		}
		out = append(out, Image{
			Name:   name,
			Width:  int(obj.Key("Width").Int64()),
			Height: int(obj.Key("Height").Int64()),
		})
	}
	return out
}
