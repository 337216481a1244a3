// Package invoice lays out bills as paginated invoice documents and encodes them as PDF.
//
// A bill arrives as a Source, either the current multi-customer shape or the
// legacy single-customer shape, and is normalised into an Invoice before layout.
// Rendering never fails: any layout error produces a one-page fallback document.
package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Source is a bill record accepted by the renderer.
type Source interface {
	// BillID identifies the record in fallback documents and filenames.
	BillID() string
	normalize() Invoice
}

// MultiCustomerBill is the current bill shape: one employee, several customer sections.
// Nil numeric fields are recomputed from the line items.
type MultiCustomerBill struct {
	ID              string           `json:"-"`
	BillNumber      string           `json:"billNumber"`
	EmployeeName    string           `json:"employeeName"`
	Customers       []SourceCustomer `json:"customers"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	TotalCommission *decimal.Decimal `json:"totalCommission"`
	DiscountPercent *decimal.Decimal `json:"discountPercent"`
	DiscountAmount  *decimal.Decimal `json:"discountAmount"`
	FinalAmount     *decimal.Decimal `json:"finalAmount"`
	Notes           string           `json:"notes"`
	Status          string           `json:"status"`
	CreatedAt       Timestamp        `json:"createdAt"`
}

// LegacySingleCustomerBill is the older flat shape with one customer and no
// bill number. Its TotalAmount is the amount payable after discount.
type LegacySingleCustomerBill struct {
	ID              string           `json:"-"`
	EmployeeName    string           `json:"employeeName"`
	CustomerName    string           `json:"customerName"`
	Items           []SourceItem     `json:"items"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	TotalCommission *decimal.Decimal `json:"totalCommission"`
	DiscountPercent *decimal.Decimal `json:"discountPercent"`
	Notes           string           `json:"notes"`
	BillDate        Timestamp        `json:"billDate"`
	CreatedAt       Timestamp        `json:"createdAt"`
}

// SourceCustomer is one customer section of a MultiCustomerBill
type SourceCustomer struct {
	CustomerName string           `json:"customerName"`
	Items        []SourceItem     `json:"items"`
	Subtotal     *decimal.Decimal `json:"subtotal"`
}

// SourceItem is a bill line as stored
type SourceItem struct {
	ProductName       string           `json:"productName"`
	DealerName        string           `json:"dealerName"`
	Quantity          *decimal.Decimal `json:"quantity"`
	Rate              *decimal.Decimal `json:"rate"`
	ItemAmount        *decimal.Decimal `json:"itemAmount"`
	CommissionPercent *decimal.Decimal `json:"commissionPercent"`
	CommissionAmount  *decimal.Decimal `json:"commissionAmount"`
	LineTotal         *decimal.Decimal `json:"lineTotal"`
}

func (b MultiCustomerBill) BillID() string        { return b.ID }
func (b LegacySingleCustomerBill) BillID() string { return b.ID }

// DecodeRecord decodes an exported bill document. Records carrying a
// "customers" key are multi-customer bills; all others are legacy bills.
// Both "_id" (plain or {"$oid": ...}) and "id" are accepted as the identifier.
func DecodeRecord(data []byte) (Source, error) {
	var probe struct {
		Customers json.RawMessage `json:"customers"`
		MongoID   recordID        `json:"_id"`
		ID        recordID        `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invoice: decode record: %w", err)
	}
	id := string(probe.MongoID)
	if id == "" {
		id = string(probe.ID)
	}

	if len(probe.Customers) > 0 && !bytes.Equal(probe.Customers, []byte("null")) {
		var bill MultiCustomerBill
		if err := json.Unmarshal(data, &bill); err != nil {
			return nil, fmt.Errorf("invoice: decode multi-customer bill: %w", err)
		}
		bill.ID = id
		return bill, nil
	}

	var bill LegacySingleCustomerBill
	if err := json.Unmarshal(data, &bill); err != nil {
		return nil, fmt.Errorf("invoice: decode legacy bill: %w", err)
	}
	bill.ID = id
	return bill, nil
}

// recordID accepts a plain string or an Extended JSON {"$oid": "..."} object
type recordID string

func (r *recordID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = recordID(s)
		return nil
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &oid); err != nil {
		return fmt.Errorf("invalid record id %s", data)
	}
	*r = recordID(oid.OID)
	return nil
}

// Timestamp accepts RFC 3339 strings and Extended JSON {"$date": ...} values.
// The zero value means the field was absent.
type Timestamp struct {
	time.Time
}

var errInvalidTimestamp = errors.New("invalid timestamp")

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("%w %q", errInvalidTimestamp, s)
		}
		t.Time = parsed
		return nil
	}

	var ext struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(data, &ext); err != nil || len(ext.Date) == 0 {
		return fmt.Errorf("%w %s", errInvalidTimestamp, data)
	}
	var millis int64
	if err := json.Unmarshal(ext.Date, &millis); err == nil {
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}
	return t.UnmarshalJSON(ext.Date)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
