// Package pdftest writes small, uncompressed PDF files for tests that need a
// real document on disk.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// Letter is the US Letter media box.
var Letter = [4]float64{0, 0, 612, 792}

// Page describes one page of a generated document.
type Page struct {
	// Text is drawn in Helvetica, one line per "\n".
	Text string
	// Images is the number of 1x1 image XObjects placed on the page.
	Images int
	// MediaBox and CropBox are written on the page when non-nil. A page
	// without a MediaBox inherits the one on the page tree root.
	MediaBox *[4]float64
	CropBox  *[4]float64
	Rotate   int
	// Inherit omits the page's own /Resources so they come from the root.
	Inherit bool
}

// Doc is a document whose page tree root carries MediaBox and shared
// resources with SharedImages image XObjects.
type Doc struct {
	MediaBox     [4]float64
	SharedImages int
	Pages        []Page
}

const (
	catalogObj = 1
	pagesObj   = 2
	fontObj    = 3
	imageObj   = 4
	firstPage  = 5
)

// Write renders d to path.
func Write(path string, d Doc) error {
	return os.WriteFile(path, Render(d), 0o644)
}

// Render returns d as PDF bytes with a classic xref table.
func Render(d Doc) []byte {
	if d.MediaBox == ([4]float64{}) {
		d.MediaBox = Letter
	}
	objs := map[int]string{
		catalogObj: fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj),
		fontObj:    "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		imageObj:   "<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\n\x80\nendstream",
	}

	kids := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		pageNum := firstPage + 2*i
		contentNum := pageNum + 1
		kids[i] = fmt.Sprintf("%d 0 R", pageNum)

		var b strings.Builder
		fmt.Fprintf(&b, "<< /Type /Page /Parent %d 0 R /Contents %d 0 R", pagesObj, contentNum)
		if p.MediaBox != nil {
			fmt.Fprintf(&b, " /MediaBox %s", box(*p.MediaBox))
		}
		if p.CropBox != nil {
			fmt.Fprintf(&b, " /CropBox %s", box(*p.CropBox))
		}
		if p.Rotate != 0 {
			fmt.Fprintf(&b, " /Rotate %d", p.Rotate)
		}
		if !p.Inherit {
			fmt.Fprintf(&b, " /Resources %s", resources(p.Images))
		}
		b.WriteString(" >>")
		objs[pageNum] = b.String()

		stream := content(p)
		objs[contentNum] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}
	objs[pagesObj] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox %s /Resources %s >>",
		strings.Join(kids, " "), len(d.Pages), box(d.MediaBox), resources(d.SharedImages))

	size := firstPage + 2*len(d.Pages)
	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, size)
	for n := 1; n < size; n++ {
		offsets[n] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", n, objs[n])
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", size)
	for n := 1; n < size; n++ {
		fmt.Fprintf(&out, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, catalogObj, xref)
	return out.Bytes()
}

func box(b [4]float64) string {
	return fmt.Sprintf("[%g %g %g %g]", b[0], b[1], b[2], b[3])
}

func resources(images int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<< /Font << /F1 %d 0 R >>", fontObj)
	if images > 0 {
		b.WriteString(" /XObject <<")
		for i := 0; i < images; i++ {
			fmt.Fprintf(&b, " /Im%d %d 0 R", i, imageObj)
		}
		b.WriteString(" >>")
	}
	b.WriteString(" >>")
	return b.String()
}

// content draws the page text top-down and each image as a 100pt square.
func content(p Page) string {
	var b strings.Builder
	if p.Text != "" {
		b.WriteString("BT /F1 12 Tf 14 TL 72 720 Td")
		for _, line := range strings.Split(p.Text, "\n") {
			fmt.Fprintf(&b, " (%s) Tj T*", escape(line))
		}
		b.WriteString(" ET\n")
	}
	for i := 0; i < p.Images; i++ {
		fmt.Fprintf(&b, "q 100 0 0 100 %d 400 cm /Im%d Do Q\n", 72+110*i, i)
	}
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(s)
}
