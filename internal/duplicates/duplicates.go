package duplicates

// ImageRef identifies an embedded image on a page. Only the first few images of a
// page are recorded and they never take part in duplicate detection.
type ImageRef struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PageMetadata describes one page of a document snapshot.
type PageMetadata struct {
	TextLength int        `json:"text_length"`
	LineCount  int        `json:"line_count"`
	ImageCount int        `json:"image_count"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Images     []ImageRef `json:"images,omitempty"`
}

// Pair is a duplicate candidate: two 0-based page indices with I < J.
type Pair struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Suppressor reports whether an otherwise matching pair must not be flagged.
type Suppressor func(a, b PageMetadata) bool

// FormTemplate suppresses pairs of content-free form pages: no text and a single
// background image on both sides. Blank form layouts legitimately recur in merged
// documents.
func FormTemplate(a, b PageMetadata) bool {
	return isFormTemplate(a) && isFormTemplate(b)
}

func isFormTemplate(p PageMetadata) bool {
	return p.TextLength == 0 && p.ImageCount == 1
}

// Pairs compares every unordered pair of distinct items and returns the (i, j)
// pairs for which match holds, ordered by i then j.
func Pairs[T any](items []T, match func(a, b T) bool) []Pair {
	var out []Pair
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if match(items[i], items[j]) {
				out = append(out, Pair{I: i, J: j})
			}
		}
	}
	return out
}

// Detect returns the pairs of pages whose text length, image count, width and
// height are all equal, minus the pairs rejected by suppress. A nil suppress
// flags every match. Dimensions are compared exactly.
func Detect(pages []PageMetadata, suppress Suppressor) []Pair {
	return Pairs(pages, func(a, b PageMetadata) bool {
		if !sameShape(a, b) {
			return false
		}
		return suppress == nil || !suppress(a, b)
	})
}

func sameShape(a, b PageMetadata) bool {
	return a.TextLength == b.TextLength &&
		a.ImageCount == b.ImageCount &&
		a.Width == b.Width &&
		a.Height == b.Height
}

// Identical returns the pairs of equal strings.
func Identical(texts []string) []Pair {
	return Pairs(texts, func(a, b string) bool { return a == b })
}
