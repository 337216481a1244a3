package invoice

import "time"

// Align is the horizontal alignment of a text op
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// OpKind identifies a drawing primitive
type OpKind int

const (
	OpText OpKind = iota
	OpRect
	OpLine
)

// Font selects the style of a text op. The family is fixed by the encoder.
type Font struct {
	Size   float64
	Bold   bool
	Italic bool
}

// Op is one drawing instruction. Coordinates are points from the top-left corner.
// For lines, W and H are the offsets from (X, Y) to the end point.
type Op struct {
	Kind      OpKind
	X, Y      float64
	W, H      float64
	Text      string
	Font      Font
	Align     Align
	Color     string // text or stroke colour, "#RRGGBB"
	Fill      string // rect fill, "" for none
	LineWidth float64
}

// Page is a fixed-size canvas of ops
type Page struct {
	Number int
	Width  float64
	Height float64
	Ops    []Op
}

// Document is a laid out invoice.
type Document struct {
	Title    string
	Author   string
	Filename string
	Created  time.Time
	Pages    []*Page

	// Fallback is set when layout failed and the document is the error page.
	Fallback error
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}
