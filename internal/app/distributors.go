package app

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bookventory/pkg/domain"
)

// AddDistributor registers a distributor. Names are unique; the return
// window defaults when not given.
func (a *App) AddDistributor(d domain.Distributor) (domain.Distributor, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return domain.Distributor{}, ErrInvalidDistributor
	}
	if _, ok, err := a.store.GetDistributorByName(d.Name); err != nil {
		return domain.Distributor{}, err
	} else if ok {
		return domain.Distributor{}, ErrDuplicateDistributor
	}
	d.ID = uuid.NewString()
	if d.ReturnWindowMonths <= 0 {
		d.ReturnWindowMonths = domain.DefaultReturnWindowMonths
	}
	d.CreatedAt = a.now().UTC()
	if err := a.store.SaveDistributor(d); err != nil {
		return domain.Distributor{}, fmt.Errorf("save distributor: %w", err)
	}
	return d, nil
}

// UpdateDistributor replaces the mutable fields of an existing distributor.
func (a *App) UpdateDistributor(id string, d domain.Distributor) (domain.Distributor, error) {
	existing, ok, err := a.store.GetDistributor(id)
	if err != nil {
		return domain.Distributor{}, err
	}
	if !ok {
		return domain.Distributor{}, ErrDistributorNotFound
	}
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return domain.Distributor{}, ErrInvalidDistributor
	}
	if other, ok, err := a.store.GetDistributorByName(d.Name); err != nil {
		return domain.Distributor{}, err
	} else if ok && other.ID != id {
		return domain.Distributor{}, ErrDuplicateDistributor
	}
	existing.Name = d.Name
	existing.Emails = d.Emails
	existing.CCEmails = d.CCEmails
	if d.ReturnWindowMonths > 0 {
		existing.ReturnWindowMonths = d.ReturnWindowMonths
	}
	if err := a.store.SaveDistributor(existing); err != nil {
		return domain.Distributor{}, fmt.Errorf("save distributor: %w", err)
	}
	return existing, nil
}

// RemoveDistributor deletes a distributor, detaches its books, and drops its
// catalog snapshot.
func (a *App) RemoveDistributor(id string) error {
	if _, ok, err := a.store.GetDistributor(id); err != nil {
		return err
	} else if !ok {
		return ErrDistributorNotFound
	}
	return a.store.DeleteDistributor(id)
}

// GetDistributor retrieves a distributor by ID.
func (a *App) GetDistributor(id string) (domain.Distributor, bool, error) {
	return a.store.GetDistributor(id)
}

// ListDistributors returns all distributors.
func (a *App) ListDistributors() ([]domain.Distributor, error) {
	return a.store.ListDistributors()
}
