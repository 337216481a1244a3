package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
)

type employeeRepository struct {
	s *Store
}

func (r *employeeRepository) Create(ctx context.Context, employee *entity.Employee) error {
	defer r.s.lockWrite(ctx)()
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	now := r.s.now()
	employee.CreatedAt, employee.UpdatedAt = now, now
	stored := *employee
	stored.Dealers = nil
	r.s.employees[employee.ID] = stored
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *employeeRepository) GetByName(ctx context.Context, name string) (*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if strings.EqualFold(e.Name, name) {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *employeeRepository) Update(ctx context.Context, employee *entity.Employee) error {
	defer r.s.lockWrite(ctx)()
	employee.UpdatedAt = r.s.now()
	stored := *employee
	stored.Dealers = nil
	r.s.employees[employee.ID] = stored
	return nil
}

func (r *employeeRepository) List(ctx context.Context, includeInactive bool) ([]entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	employees := []entity.Employee{}
	for _, e := range r.s.employees {
		if e.IsActive || includeInactive {
			employees = append(employees, e)
		}
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].Name < employees[j].Name })
	return employees, nil
}

type dealerRepository struct {
	s *Store
}

func (r *dealerRepository) Create(ctx context.Context, dealer *entity.Dealer) error {
	defer r.s.lockWrite(ctx)()
	if dealer.ID == uuid.Nil {
		dealer.ID = uuid.New()
	}
	now := r.s.now()
	dealer.CreatedAt, dealer.UpdatedAt = now, now
	stored := *dealer
	stored.Employee = nil
	r.s.dealers[dealer.ID] = stored
	return nil
}

func (r *dealerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Dealer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.dealers[id]
	if !ok {
		return nil, nil
	}
	r.withEmployee(&d)
	return &d, nil
}

func (r *dealerRepository) Update(ctx context.Context, dealer *entity.Dealer) error {
	defer r.s.lockWrite(ctx)()
	dealer.UpdatedAt = r.s.now()
	stored := *dealer
	stored.Employee = nil
	r.s.dealers[dealer.ID] = stored
	return nil
}

func (r *dealerRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.dealers[id]; !ok {
		return false, nil
	}
	delete(r.s.dealers, id)
	return true, nil
}

func (r *dealerRepository) List(ctx context.Context, employeeID *uuid.UUID) ([]entity.Dealer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	dealers := []entity.Dealer{}
	for _, d := range r.s.dealers {
		if employeeID != nil && d.EmployeeID != *employeeID {
			continue
		}
		r.withEmployee(&d)
		dealers = append(dealers, d)
	}
	sort.Slice(dealers, func(i, j int) bool { return dealers[i].Name < dealers[j].Name })
	return dealers, nil
}

// withEmployee must be called with the store lock held.
func (r *dealerRepository) withEmployee(d *entity.Dealer) {
	if e, ok := r.s.employees[d.EmployeeID]; ok {
		d.Employee = &e
	}
}
