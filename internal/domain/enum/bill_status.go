package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// BillStatus represents the lifecycle state of a bill
type BillStatus int

const (
	BillStatusCompleted BillStatus = 0
	BillStatusDraft     BillStatus = 1
	BillStatusCancelled BillStatus = 2
)

var billStatusNames = [...]string{"completed", "draft", "cancelled"}

func (s BillStatus) String() string {
	if s < 0 || int(s) >= len(billStatusNames) {
		return "unknown"
	}
	return billStatusNames[s]
}

// IsValid reports whether s is one of the known statuses
func (s BillStatus) IsValid() bool {
	return s >= BillStatusCompleted && s <= BillStatusCancelled
}

// ParseBillStatus converts a status name to BillStatus. Empty input yields the default.
func ParseBillStatus(str string) (BillStatus, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "", "completed":
		return BillStatusCompleted, nil
	case "draft":
		return BillStatusDraft, nil
	case "cancelled":
		return BillStatusCancelled, nil
	}
	return BillStatusCompleted, fmt.Errorf("unknown bill status %q", str)
}

func (s BillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !BillStatus(i).IsValid() {
			return fmt.Errorf("unknown bill status %d", i)
		}
		*s = BillStatus(i)
		return nil
	}
	parsed, err := ParseBillStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BillStatusCompleted
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = BillStatus(v)
	case int32:
		*s = BillStatus(v)
	case int:
		*s = BillStatus(v)
	}
	return nil
}
