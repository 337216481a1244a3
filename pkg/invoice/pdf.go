package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// The core fonts are cp1252; glyphs outside it are spelled out.
var glyphReplacer = strings.NewReplacer("₹", "Rs.")

// EncodePDF serialises doc. Identical documents encode to identical bytes.
func EncodePDF(doc *Document) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, errors.New("invoice: empty document")
	}

	first := doc.Pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(cellPadding)
	pdf.SetCatalogSort(true)

	stamp := doc.Created
	if stamp.IsZero() {
		stamp = time.Unix(0, 0)
	}
	pdf.SetCreationDate(stamp.UTC())
	pdf.SetModificationDate(stamp.UTC())

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(glyphReplacer.Replace(doc.Title)), false)
	pdf.SetAuthor(tr(glyphReplacer.Replace(doc.Author)), false)
	pdf.SetCreator("agrishop-billing", false)

	for _, page := range doc.Pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, op := range page.Ops {
			if err := drawOp(pdf, tr, op); err != nil {
				return nil, fmt.Errorf("invoice: page %d: %w", page.Number, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawOp(pdf *fpdf.Fpdf, tr func(string) string, op Op) error {
	switch op.Kind {
	case OpText:
		r, g, b, err := parseColor(op.Color)
		if err != nil {
			return err
		}
		style := ""
		if op.Font.Bold {
			style += "B"
		}
		if op.Font.Italic {
			style += "I"
		}
		pdf.SetFont(fontFamily, style, op.Font.Size)
		pdf.SetTextColor(r, g, b)
		pdf.SetXY(op.X, op.Y)
		pdf.CellFormat(op.W, op.H, tr(glyphReplacer.Replace(op.Text)), "", 0, alignString(op.Align), false, 0, "")

	case OpRect:
		style := ""
		if op.Fill != "" {
			r, g, b, err := parseColor(op.Fill)
			if err != nil {
				return err
			}
			pdf.SetFillColor(r, g, b)
			style += "F"
		}
		if op.Color != "" {
			r, g, b, err := parseColor(op.Color)
			if err != nil {
				return err
			}
			pdf.SetDrawColor(r, g, b)
			pdf.SetLineWidth(op.LineWidth)
			style += "D"
		}
		if style == "" {
			return nil
		}
		pdf.Rect(op.X, op.Y, op.W, op.H, style)

	case OpLine:
		r, g, b, err := parseColor(op.Color)
		if err != nil {
			return err
		}
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(op.LineWidth)
		pdf.Line(op.X, op.Y, op.X+op.W, op.Y+op.H)

	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
	return pdf.Error()
}

func alignString(a Align) string {
	switch a {
	case AlignCenter:
		return "CM"
	case AlignRight:
		return "RM"
	default:
		return "LM"
	}
}

// parseColor reads "#RRGGBB". Empty means black.
func parseColor(s string) (int, int, int, error) {
	if s == "" {
		return 0, 0, 0, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), nil
}

// Output is an encoded invoice ready to serve
type Output struct {
	Filename string
	Content  []byte
	Pages    int
	Fallback error
}

// RenderPDF lays out src and encodes it. Layout problems produce a fallback
// document; only encoding failures are returned as errors.
func (r *Renderer) RenderPDF(src Source) (*Output, error) {
	doc := r.Render(src)
	content, err := EncodePDF(doc)
	if err != nil {
		return nil, err
	}
	return &Output{
		Filename: doc.Filename,
		Content:  content,
		Pages:    doc.PageCount(),
		Fallback: doc.Fallback,
	}, nil
}

// Disposition controls whether browsers display or download the PDF
type Disposition string

const (
	DispositionInline     Disposition = "inline"
	DispositionAttachment Disposition = "attachment"
)

// ParseDisposition returns the disposition named by s, or fallback when s is
// empty or unknown.
func ParseDisposition(s string, fallback Disposition) Disposition {
	switch Disposition(strings.ToLower(strings.TrimSpace(s))) {
	case DispositionInline:
		return DispositionInline
	case DispositionAttachment:
		return DispositionAttachment
	}
	return fallback
}

// Header returns the Content-Disposition header value for filename
func (d Disposition) Header(filename string) string {
	return fmt.Sprintf("%s; filename=%q", d, filename)
}
