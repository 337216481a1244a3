package invoice

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/shopspring/decimal"
)

// Average Helvetica glyph widths as a fraction of the font size.
const (
	regularGlyphWidth = 0.50
	boldGlyphWidth    = 0.55
	cellPadding       = 4
)

func (r *Renderer) amount(d decimal.Decimal) string {
	return money.Format(r.brand.Currency, d)
}

func percent(d decimal.Decimal) string {
	return d.Round(money.Places).String() + "%"
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format("02/01/2006")
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format("03:04 PM")
}

// maxRunes estimates how many glyphs fit in width at the given font.
func maxRunes(width float64, f Font) int {
	glyph := regularGlyphWidth
	if f.Bold {
		glyph = boldGlyphWidth
	}
	n := int((width - 2*cellPadding) / (f.Size * glyph))
	if n < 1 {
		return 1
	}
	return n
}

// fit truncates s with an ellipsis so it fits in width.
func fit(s string, width float64, f Font) string {
	limit := maxRunes(width, f)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}

// wrap breaks s into lines that fit in width. Words longer than a line are split.
func wrap(s string, width float64, f Font) []string {
	limit := maxRunes(width, f)
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var line []rune
		for _, word := range strings.Fields(para) {
			w := []rune(word)
			for len(w) > limit {
				if len(line) > 0 {
					lines = append(lines, string(line))
					line = nil
				}
				lines = append(lines, string(w[:limit]))
				w = w[limit:]
			}
			switch {
			case len(line) == 0:
				line = w
			case len(line)+1+len(w) <= limit:
				line = append(append(line, ' '), w...)
			default:
				lines = append(lines, string(line))
				line = w
			}
		}
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
	}
	return lines
}
