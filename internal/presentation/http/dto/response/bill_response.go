package response

import (
	"encoding/json"

	"github.com/sangkips/agrishop-billing/internal/domain/entity"
)

// BillResponse is a bill with a link to its PDF invoice
type BillResponse struct {
	Bill            *entity.Bill
	PDFDownloadLink string
}

// MarshalJSON flattens the link into the bill object
func (r BillResponse) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(r.Bill)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	link, err := json.Marshal(r.PDFDownloadLink)
	if err != nil {
		return nil, err
	}
	fields["pdf_download_link"] = link
	return json.Marshal(fields)
}
