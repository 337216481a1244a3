package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDecodeRecordMultiCustomer(t *testing.T) {
	data := []byte(`{
		"_id": {"$oid": "65a1b2c3d4e5f60718293a4b"},
		"billNumber": "AGR-000042",
		"employeeName": "Ravi",
		"createdAt": {"$date": "2024-01-02T10:30:00Z"},
		"customers": [
			{"customerName": "Alice", "items": [{"productName": "Urea", "quantity": 3, "rate": 100, "commissionPercent": 5}]}
		],
		"discountPercent": "10"
	}`)

	src, err := DecodeRecord(data)
	require.NoError(t, err)

	bill, ok := src.(MultiCustomerBill)
	require.True(t, ok, "expected multi-customer bill, got %T", src)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", bill.BillID())
	assert.Equal(t, "AGR-000042", bill.BillNumber)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC), bill.CreatedAt.Time)
	require.Len(t, bill.Customers, 1)
	assert.Nil(t, bill.TotalAmount)
}

func TestDecodeRecordLegacy(t *testing.T) {
	data := []byte(`{
		"id": "legacy-1",
		"customerName": "Bob",
		"billDate": "2023-06-01T08:00:00Z",
		"items": [{"productName": "DAP", "quantity": 2, "rate": 50, "commissionPercent": 3}],
		"totalAmount": 103
	}`)

	src, err := DecodeRecord(data)
	require.NoError(t, err)

	bill, ok := src.(LegacySingleCustomerBill)
	require.True(t, ok, "expected legacy bill, got %T", src)
	assert.Equal(t, "legacy-1", bill.BillID())
	assert.Equal(t, "Bob", bill.CustomerName)
}

func TestDecodeRecordInvalid(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"createdAt": "yesterday"}`))
	assert.Error(t, err)

	_, err = DecodeRecord([]byte(`not json`))
	assert.Error(t, err)
}

func TestTimestampMillis(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.UnmarshalJSON([]byte(`{"$date": 1704191400000}`)))
	assert.Equal(t, int64(1704191400000), ts.UnixMilli())
}

func TestNormalizeRecomputesAbsentFields(t *testing.T) {
	src := MultiCustomerBill{
		ID:              "b1",
		DiscountPercent: dec("10"),
		Customers: []SourceCustomer{{
			CustomerName: "Alice",
			Items: []SourceItem{{
				ProductName:       "Urea",
				Quantity:          dec("3"),
				Rate:              dec("100"),
				CommissionPercent: dec("5"),
			}},
		}},
	}

	inv := Normalize(src)

	assert.Equal(t, UnknownEmployee, inv.EmployeeName)
	assert.Equal(t, DefaultStatus, inv.Status)
	require.Len(t, inv.Customers, 1)
	item := inv.Customers[0].Items[0]
	assert.Equal(t, NoDealer, item.DealerName)
	assert.Equal(t, "300", item.ItemAmount.String())
	assert.Equal(t, "15", item.CommissionAmount.String())
	assert.Equal(t, "315", item.LineTotal.String())
	assert.Equal(t, "315", inv.Customers[0].Subtotal.String())
	assert.Equal(t, "315", inv.TotalAmount.String())
	assert.Equal(t, "15", inv.TotalCommission.String())
	assert.Equal(t, "31.5", inv.DiscountAmount.String())
	assert.Equal(t, "283.5", inv.FinalAmount.String())
	assert.Equal(t, 3, inv.TotalItems)
}

func TestNormalizeKeepsStoredTotals(t *testing.T) {
	src := MultiCustomerBill{
		Customers:   []SourceCustomer{{CustomerName: "Alice", Subtotal: dec("999")}},
		TotalAmount: dec("999"),
		FinalAmount: dec("900"),
	}

	inv := Normalize(src)

	assert.Equal(t, "999", inv.TotalAmount.String())
	assert.Equal(t, "900", inv.FinalAmount.String())
	assert.Empty(t, inv.Customers[0].Items)
}

func TestNormalizeLegacy(t *testing.T) {
	src := LegacySingleCustomerBill{
		ID:           "64f000000000000000abcdef",
		CustomerName: "Bob",
		Items: []SourceItem{{
			ProductName:       "DAP",
			Quantity:          dec("2"),
			Rate:              dec("50"),
			CommissionPercent: dec("3"),
		}},
		TotalAmount: dec("103"),
	}

	inv := Normalize(src)

	require.Len(t, inv.Customers, 1)
	assert.Equal(t, "Bob", inv.Customers[0].Name)
	assert.Equal(t, "103", inv.TotalAmount.String())
	assert.Equal(t, "103", inv.FinalAmount.String())
	assert.Equal(t, "#00ABCDEF", inv.DisplayNumber())
	assert.Equal(t, "invoice-64f000000000000000abcdef.pdf", inv.Filename())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "invoice-AGR-000001.pdf", Invoice{Number: "AGR-000001", ID: "x"}.Filename())
	assert.Equal(t, "invoice-a_b.pdf", Invoice{ID: "a/b"}.Filename())
	assert.Equal(t, "invoice-unknown.pdf", Invoice{}.Filename())
}
