package invoice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/agrishop-billing/pkg/logger"
	"github.com/shopspring/decimal"
)

// Renderer lays out invoices. It is stateless and safe for concurrent use.
type Renderer struct {
	brand    Branding
	layout   Layout
	location *time.Location
	log      *logger.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithLayout overrides the page geometry
func WithLayout(l Layout) Option {
	return func(r *Renderer) { r.layout = l }
}

// WithLocation sets the time zone dates are printed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.location = loc
		}
	}
}

// WithLogger reports fallback renders
func WithLogger(l *logger.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// NewRenderer creates a renderer. Empty branding fields take the defaults.
func NewRenderer(brand Branding, opts ...Option) *Renderer {
	def := DefaultBranding()
	brand.CompanyName = orDefault(brand.CompanyName, def.CompanyName)
	brand.Currency = orDefault(brand.Currency, def.Currency)

	r := &Renderer{
		brand:    brand,
		layout:   DefaultLayout(),
		location: time.UTC,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type stage int

const (
	stageHeader stage = iota
	stageSummary
	stageCustomers
	stageTotals
	stageNotes
	stageFooter
	stageDone
)

func (s stage) String() string {
	return [...]string{"header", "summary", "customers", "totals", "notes", "footer", "done"}[s]
}

// Render lays out src. It never fails: layout errors and panics yield a
// one-page document describing the problem, with Fallback set.
func (r *Renderer) Render(src Source) (doc *Document) {
	billID := "unknown"
	defer func() {
		if rec := recover(); rec != nil {
			doc = r.fallback(billID, fmt.Errorf("render panic: %v", rec))
		}
	}()

	if src == nil {
		return r.fallback(billID, errors.New("no bill data"))
	}
	if id := src.BillID(); id != "" {
		billID = id
	}

	inv := Normalize(src)
	doc, err := r.layoutInvoice(inv)
	if err != nil {
		return r.fallback(billID, err)
	}
	return doc
}

func (r *Renderer) layoutInvoice(inv Invoice) (*Document, error) {
	if err := r.layout.validate(); err != nil {
		return nil, err
	}

	w := newPageWriter(r.layout)
	w.doc.Title = "Invoice " + inv.DisplayNumber()
	w.doc.Author = r.brand.CompanyName
	w.doc.Filename = inv.Filename()
	w.doc.Created = inv.Date
	w.onBreak = func() { r.runningHeader(w, inv) }

	for st := stageHeader; st != stageDone; st++ {
		var err error
		switch st {
		case stageHeader:
			err = r.header(w, inv)
		case stageSummary:
			err = r.summary(w, inv)
		case stageCustomers:
			for i := range inv.Customers {
				if err = r.customerBlock(w, inv, i); err != nil {
					break
				}
			}
		case stageTotals:
			err = r.totals(w, inv)
		case stageNotes:
			err = r.notes(w, inv)
		case stageFooter:
			err = r.footer(w)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st, err)
		}
	}

	r.pageNumbers(w, inv)
	return w.doc, nil
}

func (r *Renderer) header(w *pageWriter, inv Invoice) error {
	const height = 96
	if err := w.reserve(height); err != nil {
		return err
	}
	l, t := w.l, w.l.Theme
	x, cw := l.Margin, l.ContentWidth()
	left, right := cw*0.6, cw*0.4
	y := w.y

	w.text(x, y, left, 28, r.brand.CompanyName, Font{Size: 22, Bold: true}, AlignLeft, t.Primary)
	w.text(x+left, y, right, 28, "TAX INVOICE", Font{Size: 18, Bold: true}, AlignRight, t.Text)
	y += 30
	w.text(x, y, left, 14, r.brand.Tagline, Font{Size: 10}, AlignLeft, t.Muted)
	w.text(x+left, y, right, 14, "Invoice No: "+inv.DisplayNumber(), Font{Size: 10, Bold: true}, AlignRight, t.Text)
	y += 14
	w.text(x, y, left, 13, r.brand.Contact, Font{Size: 9}, AlignLeft, t.Muted)
	w.text(x+left, y, right, 13, "Date: "+formatDate(inv.Date, r.location), Font{Size: 9}, AlignRight, t.Text)
	y += 13
	w.text(x, y, left, 13, r.brand.TaxID, Font{Size: 9}, AlignLeft, t.Muted)
	y += 21
	w.line(x, y, cw, 0, t.Primary, 1.5)

	w.y += height
	return nil
}

// runningHeader opens every page after the first.
func (r *Renderer) runningHeader(w *pageWriter, inv Invoice) {
	l, t := w.l, w.l.Theme
	x, cw := l.Margin, l.ContentWidth()
	w.text(x, w.y, cw/2, 14, r.brand.CompanyName, Font{Size: 10, Bold: true}, AlignLeft, t.Primary)
	w.text(x+cw/2, w.y, cw/2, 14, "Invoice "+inv.DisplayNumber()+" (continued)", Font{Size: 9}, AlignRight, t.Muted)
	w.line(x, w.y+18, cw, 0, t.Border, 0.75)
	w.y += 26
}

func (r *Renderer) summary(w *pageWriter, inv Invoice) error {
	const boxHeight = 84
	if err := w.ensure(boxHeight + 16); err != nil {
		return err
	}
	l, t := w.l, w.l.Theme
	x, cw := l.Margin, l.ContentWidth()
	boxW := (cw - 12) / 2

	billTo := []string{
		"Billed By: " + inv.EmployeeName,
		fmt.Sprintf("Customers: %d", len(inv.Customers)),
		fmt.Sprintf("Total Items: %d", inv.TotalItems),
	}
	details := []string{
		"Invoice No: " + inv.DisplayNumber(),
		"Date: " + formatDate(inv.Date, r.location),
		"Time: " + formatTime(inv.Date, r.location),
		"Status: " + strings.ToUpper(inv.Status),
	}

	for i, box := range []struct {
		title string
		lines []string
	}{{"Bill Details:", billTo}, {"Invoice Details:", details}} {
		bx := x + float64(i)*(boxW+12)
		w.rect(bx, w.y, boxW, boxHeight, t.Panel, t.Border)
		w.text(bx+6, w.y+6, boxW-12, 16, box.title, Font{Size: 11, Bold: true}, AlignLeft, t.Primary)
		for j, line := range box.lines {
			w.text(bx+6, w.y+24+float64(j)*14, boxW-12, 14, line, Font{Size: 9.5}, AlignLeft, t.Text)
		}
	}

	w.y += boxHeight + 16
	return nil
}

func (r *Renderer) customerBlock(w *pageWriter, inv Invoice, i int) error {
	l := w.l
	c := inv.Customers[i]
	title := fmt.Sprintf("Customer %d: %s", i+1, c.Name)

	if i > 0 {
		w.newPage()
	}
	// Banner, table header and at least one row stay together.
	if err := w.ensure(l.BannerHeight + 4 + 2*l.RowHeight); err != nil {
		return err
	}
	r.banner(w, title, len(c.Items))
	r.tableHeader(w)

	if len(c.Items) == 0 {
		r.placeholderRow(w)
	}
	for j, it := range c.Items {
		if !w.fits(l.RowHeight) {
			w.newPage()
			if err := w.ensure(l.BannerHeight + 4 + 2*l.RowHeight); err != nil {
				return err
			}
			r.banner(w, title+" (continued)", len(c.Items))
			r.tableHeader(w)
		}
		r.itemRow(w, it, j)
	}

	if err := w.ensure(l.RowHeight + 6); err != nil {
		return err
	}
	r.subtotalBox(w, c.Subtotal)
	return nil
}

func (r *Renderer) banner(w *pageWriter, title string, items int) {
	l, t := w.l, w.l.Theme
	x, cw := l.Margin, l.ContentWidth()
	count := fmt.Sprintf("%d items", items)
	if items == 1 {
		count = "1 item"
	}
	w.rect(x, w.y, cw, l.BannerHeight, t.Banner, "")
	w.text(x+4, w.y, cw*0.75, l.BannerHeight, title, Font{Size: 11, Bold: true}, AlignLeft, t.Inverse)
	w.text(x+cw*0.75, w.y, cw*0.25-4, l.BannerHeight, count, Font{Size: 9}, AlignRight, t.Inverse)
	w.y += l.BannerHeight + 4
}

func (r *Renderer) tableHeader(w *pageWriter) {
	l, t := w.l, w.l.Theme
	w.rect(l.Margin, w.y, l.ContentWidth(), l.RowHeight, t.Primary, "")
	r.cells(w, func(i int, col column) (string, Font, string) {
		return col.title, Font{Size: 9, Bold: true}, t.Inverse
	})
	w.y += l.RowHeight
}

func (r *Renderer) itemRow(w *pageWriter, it Item, index int) {
	l, t := w.l, w.l.Theme
	if index%2 == 1 {
		w.rect(l.Margin, w.y, l.ContentWidth(), l.RowHeight, t.AltRow, "")
	}
	product := it.ProductName
	if it.DealerName != "" && it.DealerName != NoDealer {
		product += " (" + it.DealerName + ")"
	}
	values := [...]string{
		product,
		fmt.Sprintf("%d", it.Quantity),
		r.amount(it.Rate),
		percent(it.CommissionPercent),
		r.amount(it.CommissionAmount),
		r.amount(it.LineTotal),
	}
	r.cells(w, func(i int, col column) (string, Font, string) {
		f := Font{Size: 9}
		if i == colTotal {
			f.Bold = true
		}
		return values[i], f, t.Text
	})
	w.line(l.Margin, w.y+l.RowHeight, l.ContentWidth(), 0, t.Border, 0.5)
	w.y += l.RowHeight
}

func (r *Renderer) placeholderRow(w *pageWriter) {
	l, t := w.l, w.l.Theme
	w.text(l.Margin, w.y, l.ContentWidth(), l.RowHeight, "No items", Font{Size: 9, Italic: true}, AlignCenter, t.Muted)
	w.line(l.Margin, w.y+l.RowHeight, l.ContentWidth(), 0, t.Border, 0.5)
	w.y += l.RowHeight
}

func (r *Renderer) subtotalBox(w *pageWriter, subtotal decimal.Decimal) {
	l, t := w.l, w.l.Theme
	w.y += 6
	labelX, labelW := r.columnSpan(w, colCommAmount)
	valueX, valueW := r.columnSpan(w, colTotal)
	w.rect(labelX, w.y, labelW+valueW, l.RowHeight, t.Panel, t.Border)
	w.text(labelX, w.y, labelW, l.RowHeight, "Subtotal:", Font{Size: 9.5, Bold: true}, AlignRight, t.Text)
	w.text(valueX, w.y, valueW, l.RowHeight, r.amount(subtotal), Font{Size: 9.5, Bold: true}, AlignRight, t.Primary)
	w.y += l.RowHeight + 14
}

func (r *Renderer) cells(w *pageWriter, cell func(i int, col column) (string, Font, string)) {
	for i, col := range itemColumns {
		x, width := r.columnSpan(w, i)
		text, font, color := cell(i, col)
		w.text(x, w.y, width, w.l.RowHeight, fit(text, width, font), font, col.align, color)
	}
}

func (r *Renderer) columnSpan(w *pageWriter, index int) (x, width float64) {
	cw := w.l.ContentWidth()
	x = w.l.Margin
	for i := 0; i < index; i++ {
		x += itemColumns[i].width * cw
	}
	return x, itemColumns[index].width * cw
}

func (r *Renderer) totals(w *pageWriter, inv Invoice) error {
	type row struct{ label, value string }
	rows := []row{
		{"Total Amount:", r.amount(inv.TotalAmount)},
		{"Total Commission:", r.amount(inv.TotalCommission)},
	}
	if inv.DiscountPercent.IsPositive() {
		rows = append(rows, row{"Discount (" + percent(inv.DiscountPercent) + "):", "-" + r.amount(inv.DiscountAmount)})
	}

	const lineH, finalH = 16, 24
	if err := w.ensure(float64(len(rows))*lineH + 8 + finalH + 12); err != nil {
		return err
	}
	l, t := w.l, w.l.Theme
	cw := l.ContentWidth()
	x, width := l.Margin+cw*0.5, cw*0.5

	for _, rw := range rows {
		w.text(x, w.y, width*0.6, lineH, rw.label, Font{Size: 10}, AlignRight, t.Text)
		w.text(x+width*0.6, w.y, width*0.4, lineH, rw.value, Font{Size: 10}, AlignRight, t.Text)
		w.y += lineH
	}
	w.y += 4
	w.line(x, w.y, width, 0, t.Primary, 1)
	w.y += 4
	w.rect(x, w.y, width, finalH, t.Panel, "")
	w.text(x, w.y, width*0.6, finalH, "FINAL AMOUNT:", Font{Size: 12, Bold: true}, AlignRight, t.Primary)
	w.text(x+width*0.6, w.y, width*0.4, finalH, r.amount(inv.FinalAmount), Font{Size: 12, Bold: true}, AlignRight, t.Primary)
	w.y += finalH + 12
	return nil
}

func (r *Renderer) notes(w *pageWriter, inv Invoice) error {
	if inv.Notes == "" {
		return nil
	}
	l, t := w.l, w.l.Theme
	const titleH, lineH = 16, 13
	body := Font{Size: 9.5}
	lines := wrap(inv.Notes, l.ContentWidth(), body)

	if err := w.ensure(titleH + lineH); err != nil {
		return err
	}
	w.text(l.Margin, w.y, l.ContentWidth(), titleH, "Notes:", Font{Size: 10, Bold: true}, AlignLeft, t.Text)
	w.y += titleH
	for _, line := range lines {
		if err := w.ensure(lineH); err != nil {
			return err
		}
		w.text(l.Margin, w.y, l.ContentWidth(), lineH, line, body, AlignLeft, t.Text)
		w.y += lineH
	}
	w.y += 10
	return nil
}

func (r *Renderer) footer(w *pageWriter) error {
	if err := w.ensure(48); err != nil {
		return err
	}
	l, t := w.l, w.l.Theme
	x, cw := l.Margin, l.ContentWidth()
	w.line(x, w.y, cw, 0, t.Border, 0.75)
	w.y += 10
	w.text(x, w.y, cw, 16, "Thank you for your business!", Font{Size: 11, Bold: true}, AlignCenter, t.Primary)
	w.y += 18
	w.text(x, w.y, cw, 12, "This is a computer generated invoice.", Font{Size: 8.5}, AlignCenter, t.Muted)
	w.y += 20
	return nil
}

// pageNumbers stamps every page inside the footer reserve.
func (r *Renderer) pageNumbers(w *pageWriter, inv Invoice) {
	l, t := w.l, w.l.Theme
	x, cw := l.Margin, l.ContentWidth()
	y := l.PageHeight - l.FooterReserve/2
	total := len(w.doc.Pages)
	for _, p := range w.doc.Pages {
		p.Ops = append(p.Ops,
			Op{Kind: OpText, X: x, Y: y, W: cw / 2, H: 12, Text: r.brand.CompanyName + " | " + inv.DisplayNumber(), Font: Font{Size: 8}, Align: AlignLeft, Color: t.Muted},
			Op{Kind: OpText, X: x + cw/2, Y: y, W: cw / 2, H: 12, Text: fmt.Sprintf("Page %d of %d", p.Number, total), Font: Font{Size: 8}, Align: AlignRight, Color: t.Muted},
		)
	}
}

// fallback builds the error page. It must not fail.
func (r *Renderer) fallback(billID string, cause error) *Document {
	r.log.Warnw("invoice render fallback", "bill_id", billID, "error", cause)

	l := DefaultLayout()
	if r.layout.PageWidth > 0 && r.layout.PageHeight > 0 {
		l.PageWidth, l.PageHeight = r.layout.PageWidth, r.layout.PageHeight
	}
	margin := 40.0
	if l.PageWidth < 4*margin {
		margin = l.PageWidth / 8
	}
	width := l.PageWidth - 2*margin
	t := l.Theme

	page := &Page{Number: 1, Width: l.PageWidth, Height: l.PageHeight}
	y := margin
	add := func(text string, f Font, color string, h float64) {
		page.Ops = append(page.Ops, Op{Kind: OpText, X: margin, Y: y, W: width, H: h, Text: text, Font: f, Align: AlignLeft, Color: color})
		y += h
	}
	add(r.brand.CompanyName, Font{Size: 16, Bold: true}, t.Primary, 24)
	add("Invoice could not be rendered", Font{Size: 13, Bold: true}, t.Text, 22)
	add("Bill: "+billID, Font{Size: 10}, t.Text, 16)
	for _, line := range wrap("Error: "+cause.Error(), width, Font{Size: 9.5}) {
		if y+14 > l.PageHeight-margin {
			break
		}
		add(line, Font{Size: 9.5}, t.Muted, 14)
	}

	return &Document{
		Title:    "Invoice " + billID,
		Author:   r.brand.CompanyName,
		Filename: filename(billID),
		Pages:    []*Page{page},
		Fallback: cause,
	}
}

// pageWriter tracks the cursor while ops are appended to pages.
type pageWriter struct {
	l       Layout
	doc     *Document
	page    *Page
	y       float64
	onBreak func()
}

func newPageWriter(l Layout) *pageWriter {
	w := &pageWriter{l: l, doc: &Document{}}
	w.addPage()
	return w
}

func (w *pageWriter) addPage() {
	w.page = &Page{Number: len(w.doc.Pages) + 1, Width: w.l.PageWidth, Height: w.l.PageHeight}
	w.doc.Pages = append(w.doc.Pages, w.page)
	w.y = w.l.Margin
}

// newPage starts a page and draws the running header on it.
func (w *pageWriter) newPage() {
	w.addPage()
	if w.onBreak != nil {
		w.onBreak()
	}
}

func (w *pageWriter) bottom() float64 {
	return w.l.PageHeight - w.l.FooterReserve
}

func (w *pageWriter) fits(h float64) bool {
	return w.y+h <= w.bottom()
}

// ensure moves to a new page unless h more points fit on the current one.
func (w *pageWriter) ensure(h float64) error {
	if w.fits(h) {
		return nil
	}
	w.newPage()
	return w.reserve(h)
}

// reserve fails if h points do not fit on the current page.
func (w *pageWriter) reserve(h float64) error {
	if !w.fits(h) {
		return fmt.Errorf("block of %.1fpt does not fit on page %d (%.1fpt free)", h, w.page.Number, w.bottom()-w.y)
	}
	return nil
}

func (w *pageWriter) text(x, y, width, h float64, s string, f Font, a Align, color string) {
	if s == "" {
		return
	}
	w.page.Ops = append(w.page.Ops, Op{Kind: OpText, X: x, Y: y, W: width, H: h, Text: s, Font: f, Align: a, Color: color})
}

func (w *pageWriter) rect(x, y, width, h float64, fill, stroke string) {
	w.page.Ops = append(w.page.Ops, Op{Kind: OpRect, X: x, Y: y, W: width, H: h, Fill: fill, Color: stroke, LineWidth: 0.5})
}

func (w *pageWriter) line(x, y, dx, dy float64, color string, width float64) {
	w.page.Ops = append(w.page.Ops, Op{Kind: OpLine, X: x, Y: y, W: dx, H: dy, Color: color, LineWidth: width})
}
