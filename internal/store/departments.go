package store

import (
	"context"

	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

// Departments caches the department list.
type Departments struct {
	s     *Store
	items []models.Department
}

// List returns the cached departments.
func (d *Departments) List() []models.Department {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	out := make([]models.Department, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Departments) set(items []models.Department) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.items = items
}

// Fetch reloads departments from the backend.
func (d *Departments) Fetch(ctx context.Context) error {
	return d.s.run(ctx, "departments.fetch", d.fetch)
}

func (d *Departments) fetch(ctx context.Context) error {
	items := []models.Department{}
	if err := d.s.api.Get(ctx, epDepartments, &items); err != nil {
		return err
	}
	d.set(items)
	return nil
}

// Add creates a department, then refetches.
func (d *Departments) Add(ctx context.Context, in models.DepartmentInput) error {
	return d.s.run(ctx, "departments.add", func(ctx context.Context) error {
		if err := utils.Validate(in); err != nil {
			return err
		}
		if err := d.s.api.Post(ctx, epDepartments, in, nil); err != nil {
			return err
		}
		return d.fetch(ctx)
	})
}

// Update changes a department's name and description, then refetches.
func (d *Departments) Update(ctx context.Context, id string, in models.DepartmentInput) error {
	return d.s.run(ctx, "departments.update", func(ctx context.Context) error {
		if err := utils.Validate(in); err != nil {
			return err
		}
		if err := d.s.api.Put(ctx, departmentPath(id), in, nil); err != nil {
			return err
		}
		return d.fetch(ctx)
	})
}

// Delete removes a department, then refetches.
func (d *Departments) Delete(ctx context.Context, id string) error {
	return d.s.run(ctx, "departments.delete", func(ctx context.Context) error {
		if err := d.s.api.Delete(ctx, departmentPath(id), nil); err != nil {
			return err
		}
		return d.fetch(ctx)
	})
}
