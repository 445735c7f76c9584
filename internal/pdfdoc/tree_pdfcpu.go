package pdfdoc

import (
	"fmt"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// cpuTree reads the page tree with pdfcpu. The whole cross reference table is
// loaded up front, so the file is closed once opening returns.
type cpuTree struct {
	ctx *model.Context
}

func openCPUTree(path string) (t *cpuTree, err error) {
	defer recoverMalformed(&err)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("read page tree: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("read page tree: %w", err)
	}
	return &cpuTree{ctx: ctx}, nil
}

func (t *cpuTree) Close() error { return nil }

func (t *cpuTree) attrs(i int) (*model.InheritedPageAttrs, error) {
	d, _, attrs, err := t.ctx.PageDict(i+1, false)
	if err != nil {
		return nil, err
	}
	if d == nil || attrs == nil {
		return nil, fmt.Errorf("page %d not found in page tree", i+1)
	}
	return attrs, nil
}

func (t *cpuTree) geometry(i int) (box [4]float64, rotate int64, err error) {
	defer recoverMalformed(&err)
	attrs, err := t.attrs(i)
	if err != nil {
		return box, 0, err
	}
	r := attrs.CropBox
	if r == nil {
		r = attrs.MediaBox
	}
	if r == nil {
		return box, 0, errNoBox
	}
	return [4]float64{r.LL.X, r.LL.Y, r.UR.X, r.UR.Y}, int64(attrs.Rotate), nil
}

func (t *cpuTree) images(i int) (imgs []Image, err error) {
	defer recoverMalformed(&err)
	attrs, err := t.attrs(i)
	if err != nil {
		return nil, err
	}
	if attrs.Resources == nil {
		return nil, nil
	}
	o, found := attrs.Resources.Find("XObject")
	if !found {
		return nil, nil
	}
	xobj, err := t.ctx.DereferenceDict(o)
	if err != nil || xobj == nil {
		return nil, err
	}

	names := make([]string, 0, len(xobj))
	for name := range xobj {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d, err := t.dict(xobj[name])
		if err != nil {
			return nil, err
		}
		if st := d.Subtype(); st == nil || *st != "Image" {
			continue
		}
		imgs = append(imgs, Image{Name: name, Width: t.intEntry(d, "Width"), Height: t.intEntry(d, "Height")})
	}
	return imgs, nil
}

// dict resolves o to a dictionary, taking the header of streams.
func (t *cpuTree) dict(o types.Object) (types.Dict, error) {
	o, err := t.ctx.Dereference(o)
	if err != nil {
		return nil, err
	}
	switch v := o.(type) {
	case types.StreamDict:
		return v.Dict, nil
	case types.Dict:
		return v, nil
	}
	return nil, nil
}

func (t *cpuTree) intEntry(d types.Dict, key string) int {
	o, found := d.Find(key)
	if !found {
		return 0
	}
	n, err := t.ctx.DereferenceInteger(o)
	if err != nil || n == nil {
		return 0
	}
	return n.Value()
}
