package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/report"
	"github.com/iliyamo/fair-rice-portal/internal/repository"
)

var contactPattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

// NormalizeContactNumber strips spaces and the separators - . ( ) from raw
// and checks that what remains looks like a phone number.
func NormalizeContactNumber(raw string) (string, error) {
	n := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '.', '(', ')':
			return -1
		}
		return r
	}, raw)
	if n == "" {
		return "", invalid("contactNumber is required")
	}
	if !contactPattern.MatchString(n) {
		return "", invalid("contactNumber must be 6 to 15 digits with an optional leading +")
	}
	return n, nil
}

// FamilyStore is the subset of the family repository the registry needs.
type FamilyStore interface {
	GetByContactNumber(ctx context.Context, contact string) (model.Family, error)
	GetByID(ctx context.Context, id uint64) (model.Family, error)
	ListPaged(ctx context.Context, page model.PageRequest) ([]model.Family, int64, error)
}

// Registry answers family lookups.  Family creation and update happen in
// the ledger transaction.
type Registry struct {
	families FamilyStore
}

func NewRegistry(families FamilyStore) *Registry { return &Registry{families: families} }

// FindByContactNumber returns the family registered under the normalized
// form of contact.
func (r *Registry) FindByContactNumber(ctx context.Context, contact string) (model.Family, error) {
	n, err := NormalizeContactNumber(contact)
	if err != nil {
		return model.Family{}, err
	}
	f, err := r.families.GetByContactNumber(ctx, n)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Family{}, withKind(ErrNotFound, "Family not found for this contact number: %s", n)
	}
	return f, err
}

// ListPaged returns one page of families, newest first.
func (r *Registry) ListPaged(ctx context.Context, page model.PageRequest) (model.Page[model.Family], error) {
	rows, total, err := r.families.ListPaged(ctx, page)
	if err != nil {
		return model.Page[model.Family]{}, err
	}
	return model.NewPage(rows, total, page), nil
}

// QRCode renders a PNG QR code identifying family id.
func (r *Registry) QRCode(ctx context.Context, id uint64) ([]byte, error) {
	f, err := r.families.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, withKind(ErrNotFound, "Family not found with id: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return report.FamilyQRCode(f)
}
