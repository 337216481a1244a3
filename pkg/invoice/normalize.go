package invoice

import (
	"regexp"
	"strings"
	"time"

	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/shopspring/decimal"
)

// Defaults substituted for absent fields.
const (
	UnknownEmployee = "Unknown Employee"
	UnknownCustomer = "Unknown Customer"
	UnnamedProduct  = "Unnamed Product"
	NoDealer        = "N/A"
	DefaultStatus   = "completed"
)

// Invoice is a bill with every field present, ready for layout.
type Invoice struct {
	ID              string
	Number          string
	EmployeeName    string
	Date            time.Time // zero when the record carries no date
	Status          string
	Notes           string
	Customers       []Customer
	TotalItems      int // sum of quantities
	TotalAmount     decimal.Decimal
	TotalCommission decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalAmount     decimal.Decimal
}

// Customer is one normalised customer section
type Customer struct {
	Name     string
	Items    []Item
	Subtotal decimal.Decimal
}

// Item is one normalised bill line
type Item struct {
	ProductName       string
	DealerName        string
	Quantity          int
	Rate              decimal.Decimal
	ItemAmount        decimal.Decimal
	CommissionPercent decimal.Decimal
	CommissionAmount  decimal.Decimal
	LineTotal         decimal.Decimal
}

// Normalize converts any Source into an Invoice.
func Normalize(src Source) Invoice {
	return src.normalize()
}

func (b MultiCustomerBill) normalize() Invoice {
	inv := Invoice{
		ID:           b.ID,
		Number:       strings.TrimSpace(b.BillNumber),
		EmployeeName: orDefault(b.EmployeeName, UnknownEmployee),
		Date:         b.CreatedAt.Time,
		Status:       orDefault(b.Status, DefaultStatus),
		Notes:        strings.TrimSpace(b.Notes),
	}

	for _, sc := range b.Customers {
		c := Customer{Name: orDefault(sc.CustomerName, UnknownCustomer)}
		for _, si := range sc.Items {
			c.Items = append(c.Items, normalizeItem(si))
		}
		c.Subtotal = valueOr(sc.Subtotal, sumLines(c.Items))
		inv.Customers = append(inv.Customers, c)
	}

	inv.finish(b.TotalAmount, b.TotalCommission, b.DiscountPercent, b.DiscountAmount, b.FinalAmount)
	return inv
}

func (b LegacySingleCustomerBill) normalize() Invoice {
	date := b.BillDate.Time
	if date.IsZero() {
		date = b.CreatedAt.Time
	}
	inv := Invoice{
		ID:           b.ID,
		EmployeeName: orDefault(b.EmployeeName, UnknownEmployee),
		Date:         date,
		Status:       DefaultStatus,
		Notes:        strings.TrimSpace(b.Notes),
	}

	c := Customer{Name: orDefault(b.CustomerName, UnknownCustomer)}
	for _, si := range b.Items {
		c.Items = append(c.Items, normalizeItem(si))
	}
	c.Subtotal = sumLines(c.Items)
	inv.Customers = []Customer{c}

	// Legacy records store the payable amount as totalAmount.
	inv.finish(nil, b.TotalCommission, b.DiscountPercent, nil, b.TotalAmount)
	return inv
}

func (inv *Invoice) finish(total, commission, discountPct, discountAmt, final *decimal.Decimal) {
	var subtotals, commissions []decimal.Decimal
	for _, c := range inv.Customers {
		subtotals = append(subtotals, c.Subtotal)
		for _, it := range c.Items {
			commissions = append(commissions, it.CommissionAmount)
			inv.TotalItems += it.Quantity
		}
	}

	inv.TotalAmount = valueOr(total, money.Sum(subtotals...))
	inv.TotalCommission = valueOr(commission, money.Sum(commissions...))
	inv.DiscountPercent = valueOr(discountPct, decimal.Zero)
	inv.DiscountAmount = valueOr(discountAmt, money.Round2(money.Percent(inv.TotalAmount, inv.DiscountPercent)))
	inv.FinalAmount = valueOr(final, inv.TotalAmount.Sub(inv.DiscountAmount))
}

func normalizeItem(si SourceItem) Item {
	it := Item{
		ProductName:       orDefault(si.ProductName, UnnamedProduct),
		DealerName:        orDefault(si.DealerName, NoDealer),
		Rate:              valueOr(si.Rate, decimal.Zero),
		CommissionPercent: valueOr(si.CommissionPercent, decimal.Zero),
	}
	if si.Quantity != nil {
		it.Quantity = int(si.Quantity.IntPart())
	}
	it.ItemAmount = valueOr(si.ItemAmount, it.Rate.Mul(decimal.NewFromInt(int64(it.Quantity))))
	it.CommissionAmount = valueOr(si.CommissionAmount, money.Round2(money.Percent(it.ItemAmount, it.CommissionPercent)))
	it.LineTotal = valueOr(si.LineTotal, it.ItemAmount.Add(it.CommissionAmount))
	return it
}

func sumLines(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	return total
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

// DisplayNumber is the bill number, or a short reference derived from the id
// for records that predate bill numbers.
func (inv Invoice) DisplayNumber() string {
	if inv.Number != "" {
		return inv.Number
	}
	id := strings.ToUpper(inv.ID)
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	if id == "" {
		return "-"
	}
	return "#" + id
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename is invoice-{billNumber}.pdf, falling back to the id.
func (inv Invoice) Filename() string {
	ref := inv.Number
	if ref == "" {
		ref = inv.ID
	}
	return filename(ref)
}

func filename(ref string) string {
	ref = unsafeFilename.ReplaceAllString(ref, "_")
	if ref == "" {
		ref = "unknown"
	}
	return "invoice-" + ref + ".pdf"
}
