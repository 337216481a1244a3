package invoice

import (
	"errors"
	"fmt"
)

// A4 portrait in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// Layout is the page geometry and colour theme.
type Layout struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	// FooterReserve is kept free at the bottom of every page for page numbers.
	// A block that would reach into it moves to the next page.
	FooterReserve float64
	RowHeight     float64
	BannerHeight  float64
	Theme         Theme
}

// Theme holds "#RRGGBB" colours
type Theme struct {
	Primary string
	Banner  string
	Text    string
	Muted   string
	Border  string
	AltRow  string
	Panel   string
	Inverse string
}

// Branding is the seller block printed in the header
type Branding struct {
	CompanyName string
	Tagline     string
	Contact     string
	TaxID       string
	Currency    string
}

// DefaultLayout returns A4 portrait with the house colours.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:     A4Width,
		PageHeight:    A4Height,
		Margin:        40,
		FooterReserve: 70,
		RowHeight:     20,
		BannerHeight:  22,
		Theme: Theme{
			Primary: "#2E8B57",
			Banner:  "#1F6B43",
			Text:    "#333333",
			Muted:   "#777777",
			Border:  "#E0E0E0",
			AltRow:  "#F8FFF8",
			Panel:   "#F7F7F7",
			Inverse: "#FFFFFF",
		},
	}
}

// DefaultBranding returns the branding used when none is configured.
func DefaultBranding() Branding {
	return Branding{
		CompanyName: "AgriShop",
		Tagline:     "Fertilizers & Agricultural Products",
		Contact:     "Contact: +91 XXXXX XXXXX | Email: info@agrishop.com",
		TaxID:       "GSTIN: 07AABCU9603R1ZM",
		Currency:    "₹",
	}
}

// ContentWidth is the printable width between the side margins
func (l Layout) ContentWidth() float64 {
	return l.PageWidth - 2*l.Margin
}

var errBadLayout = errors.New("invalid page layout")

func (l Layout) validate() error {
	switch {
	case l.PageWidth <= 0 || l.PageHeight <= 0:
		return fmt.Errorf("%w: page size %.2fx%.2f", errBadLayout, l.PageWidth, l.PageHeight)
	case l.Margin < 0 || l.FooterReserve < 0:
		return fmt.Errorf("%w: negative margin", errBadLayout)
	case l.ContentWidth() < 200:
		return fmt.Errorf("%w: content width %.2f too small", errBadLayout, l.ContentWidth())
	case l.RowHeight <= 0 || l.BannerHeight <= 0:
		return fmt.Errorf("%w: row height must be positive", errBadLayout)
	}
	return nil
}

// column is one column of the item table, width as a fraction of content width
type column struct {
	title string
	width float64
	align Align
}

var itemColumns = []column{
	{"Product", 0.35, AlignLeft},
	{"Qty", 0.10, AlignCenter},
	{"Rate", 0.13, AlignRight},
	{"Comm %", 0.12, AlignCenter},
	{"Comm Amt", 0.15, AlignRight},
	{"Total", 0.15, AlignRight},
}

const (
	colProduct = iota
	colQuantity
	colRate
	colCommPercent
	colCommAmount
	colTotal
)
