package memory

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type billRepository struct {
	s *Store
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	defer r.s.lockWrite(ctx)()

	for _, existing := range r.s.bills {
		if existing.BillNumber == bill.BillNumber {
			return domainRepo.ErrDuplicate
		}
	}

	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = r.s.now()
	}
	bill.UpdatedAt = r.s.now()
	for i := range bill.Customers {
		c := &bill.Customers[i]
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.BillID = bill.ID
		for j := range c.Items {
			item := &c.Items[j]
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.BillCustomerID = c.ID
		}
	}

	r.s.bills[bill.ID] = cloneBill(*bill)
	return nil
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bills[id]
	if !ok {
		return nil, nil
	}
	b = cloneBill(b)
	return &b, nil
}

func (r *billRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.bills[id]; !ok {
		return false, nil
	}
	delete(r.s.bills, id)
	return true, nil
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	match, err := billMatcher(params)
	if err != nil {
		return nil, 0, err
	}

	r.s.mu.Lock()
	var matched []entity.Bill
	for _, b := range r.s.bills {
		if match(&b) {
			matched = append(matched, cloneBill(b))
		}
	}
	r.s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].BillNumber > matched[j].BillNumber
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	params.Pagination.Validate()
	return paginate(matched, params.Pagination.Offset(), params.Pagination.PerPage), int64(len(matched)), nil
}

func (r *billRepository) DistinctDealers(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	dealers := []string{}
	for _, b := range r.s.bills {
		for _, c := range b.Customers {
			for _, item := range c.Items {
				name := item.DealerName
				if name == "" || name == entity.DefaultDealerName || seen[name] {
					continue
				}
				seen[name] = true
				dealers = append(dealers, name)
			}
		}
	}
	sort.Strings(dealers)
	return dealers, nil
}

func (r *billRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.bills)), nil
}

func (r *billRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, b := range r.s.bills {
		total = total.Add(b.FinalAmount)
	}
	return total, nil
}

func billMatcher(params *domainRepo.BillFilterParams) (func(*entity.Bill) bool, error) {
	var customerRe, dealerRe *regexp.Regexp
	var err error
	if params.Customer != "" {
		if customerRe, err = regexp.Compile("(?i)" + params.Customer); err != nil {
			return nil, err
		}
	}
	if params.Dealer != "" {
		if dealerRe, err = regexp.Compile("(?i)" + params.Dealer); err != nil {
			return nil, err
		}
	}
	search := strings.ToLower(params.Search)
	end := params.EndExclusive()

	return func(b *entity.Bill) bool {
		if params.EmployeeID != nil && b.EmployeeID != *params.EmployeeID {
			return false
		}
		if params.StartDate != nil && b.CreatedAt.Before(*params.StartDate) {
			return false
		}
		if end != nil && !b.CreatedAt.Before(*end) {
			return false
		}
		if customerRe != nil && !anyCustomer(b, func(c *entity.BillCustomer) bool { return customerRe.MatchString(c.CustomerName) }) {
			return false
		}
		if dealerRe != nil && !anyItem(b, func(i *entity.BillItem) bool { return dealerRe.MatchString(i.DealerName) }) {
			return false
		}
		if search != "" {
			contains := func(s string) bool { return strings.Contains(strings.ToLower(s), search) }
			if !contains(b.BillNumber) && !contains(b.EmployeeName) &&
				!anyCustomer(b, func(c *entity.BillCustomer) bool { return contains(c.CustomerName) }) &&
				!anyItem(b, func(i *entity.BillItem) bool { return contains(i.ProductName) }) {
				return false
			}
		}
		return true
	}, nil
}

func anyCustomer(b *entity.Bill, fn func(*entity.BillCustomer) bool) bool {
	for i := range b.Customers {
		if fn(&b.Customers[i]) {
			return true
		}
	}
	return false
}

func anyItem(b *entity.Bill, fn func(*entity.BillItem) bool) bool {
	for i := range b.Customers {
		for j := range b.Customers[i].Items {
			if fn(&b.Customers[i].Items[j]) {
				return true
			}
		}
	}
	return false
}

func cloneBill(b entity.Bill) entity.Bill {
	customers := make([]entity.BillCustomer, len(b.Customers))
	for i, c := range b.Customers {
		c.Items = append([]entity.BillItem(nil), c.Items...)
		customers[i] = c
	}
	b.Customers = customers
	return b
}
