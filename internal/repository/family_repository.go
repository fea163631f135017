package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// maxLabelAttempts bounds retries when a freshly generated family label
// collides with an existing one.
const maxLabelAttempts = 5

// FamilyRepo reads and upserts rows of the families table.  Families are
// keyed by their normalized contact number.
type FamilyRepo struct {
	db *sql.DB
	// NewLabel generates the public FAM-XXXXXXXX label for new families.
	NewLabel func() string
}

// NewFamilyRepo returns a FamilyRepo bound to db using newLabel for labels.
func NewFamilyRepo(db *sql.DB, newLabel func() string) *FamilyRepo {
	return &FamilyRepo{db: db, NewLabel: newLabel}
}

const familyColumns = `id, family_head_name, contact_number, num_members, village_name, unique_family_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFamily(row rowScanner) (model.Family, error) {
	var f model.Family
	err := row.Scan(&f.ID, &f.HeadName, &f.ContactNumber, &f.NumMembers, &f.VillageName, &f.UniqueFamilyID, &f.CreatedAt)
	return f, err
}

// GetByContactNumber returns the family registered under contact or
// ErrNotFound.
func (r *FamilyRepo) GetByContactNumber(ctx context.Context, contact string) (model.Family, error) {
	f, err := scanFamily(r.db.QueryRowContext(ctx,
		`SELECT `+familyColumns+` FROM families WHERE contact_number = ? LIMIT 1`, contact))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Family{}, ErrNotFound
	}
	return f, err
}

// GetByID returns family id or ErrNotFound.
func (r *FamilyRepo) GetByID(ctx context.Context, id uint64) (model.Family, error) {
	f, err := scanFamily(r.db.QueryRowContext(ctx,
		`SELECT `+familyColumns+` FROM families WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Family{}, ErrNotFound
	}
	return f, err
}

// ListPaged returns one page of families ordered by id descending together
// with the total number of families.
func (r *FamilyRepo) ListPaged(ctx context.Context, page model.PageRequest) ([]model.Family, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM families`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+familyColumns+` FROM families ORDER BY id DESC LIMIT ? OFFSET ?`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []model.Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

// UpsertTx finds the family for in.ContactNumber with a row lock and
// updates its mutable attributes, or inserts a new family when none
// exists.  A concurrent insert of the same contact number surfaces as a
// duplicate-key error, which is resolved by re-reading and updating the
// winner's row.  The caller owns the transaction.
func (r *FamilyRepo) UpsertTx(ctx context.Context, tx *sql.Tx, in model.FamilyInput, now time.Time) (model.Family, error) {
	for attempt := 0; attempt < maxLabelAttempts; attempt++ {
		f, err := r.lockByContactTx(ctx, tx, in.ContactNumber)
		switch {
		case err == nil:
			return r.updateTx(ctx, tx, f, in)
		case !errors.Is(err, ErrNotFound):
			return model.Family{}, err
		}

		f, err = r.insertTx(ctx, tx, in, now)
		if err == nil {
			return f, nil
		}
		if !isDuplicate(err) {
			return model.Family{}, err
		}
		// Either another request registered this contact number first or
		// the label collided; the next iteration tells them apart.
	}
	return model.Family{}, fmt.Errorf("upsert family %s: %w", in.ContactNumber, ErrDuplicate)
}

func (r *FamilyRepo) lockByContactTx(ctx context.Context, tx *sql.Tx, contact string) (model.Family, error) {
	f, err := scanFamily(tx.QueryRowContext(ctx,
		`SELECT `+familyColumns+` FROM families WHERE contact_number = ? FOR UPDATE`, contact))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Family{}, ErrNotFound
	}
	return f, err
}

func (r *FamilyRepo) updateTx(ctx context.Context, tx *sql.Tx, f model.Family, in model.FamilyInput) (model.Family, error) {
	_, err := tx.ExecContext(ctx,
		`UPDATE families SET family_head_name = ?, num_members = ?, village_name = ? WHERE id = ?`,
		in.HeadName, in.NumMembers, in.VillageName, f.ID)
	if err != nil {
		return model.Family{}, err
	}
	f.HeadName = in.HeadName
	f.NumMembers = in.NumMembers
	f.VillageName = in.VillageName
	return f, nil
}

func (r *FamilyRepo) insertTx(ctx context.Context, tx *sql.Tx, in model.FamilyInput, now time.Time) (model.Family, error) {
	f := model.Family{
		HeadName:       in.HeadName,
		ContactNumber:  in.ContactNumber,
		NumMembers:     in.NumMembers,
		VillageName:    in.VillageName,
		UniqueFamilyID: r.NewLabel(),
		CreatedAt:      now,
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO families (family_head_name, contact_number, num_members, village_name, unique_family_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.HeadName, f.ContactNumber, f.NumMembers, f.VillageName, f.UniqueFamilyID, f.CreatedAt)
	if err != nil {
		return model.Family{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Family{}, err
	}
	f.ID = uint64(id)
	return f, nil
}
