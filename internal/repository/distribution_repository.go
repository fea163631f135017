package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// DistributionRepo stores distribution records and answers the ledger
// queries.  Every query joins the owning family so callers can compute
// entitlement without a second round trip.
type DistributionRepo struct {
	db       *sql.DB
	families *FamilyRepo
}

// NewDistributionRepo returns a DistributionRepo that upserts families
// through families.
func NewDistributionRepo(db *sql.DB, families *FamilyRepo) *DistributionRepo {
	return &DistributionRepo{db: db, families: families}
}

// recordSortColumns whitelists the fields clients may sort records by.
var recordSortColumns = map[string]string{
	"id":               "r.id",
	"distributionDate": "r.distribution_date",
	"createdAt":        "r.created_at",
	"riceReceivedKg":   "r.rice_received_kg",
}

// IsRecordSortField reports whether field can be used to sort records.
func IsRecordSortField(field string) bool {
	_, ok := recordSortColumns[field]
	return ok
}

const recordSelect = `SELECT r.id, r.family_id, r.rice_received_kg, r.distribution_date, r.notes, r.created_at,
    f.id, f.family_head_name, f.contact_number, f.num_members, f.village_name, f.unique_family_id, f.created_at
FROM distribution_records r
JOIN families f ON f.id = r.family_id`

func scanDistributionRow(row rowScanner) (model.DistributionRow, error) {
	var (
		d     model.DistributionRow
		notes sql.NullString
	)
	err := row.Scan(
		&d.Record.ID, &d.Record.FamilyID, &d.Record.RiceReceivedKg, &d.Record.DistributionDate, &notes, &d.Record.CreatedAt,
		&d.Family.ID, &d.Family.HeadName, &d.Family.ContactNumber, &d.Family.NumMembers, &d.Family.VillageName, &d.Family.UniqueFamilyID, &d.Family.CreatedAt,
	)
	if notes.Valid {
		d.Record.Notes = notes.String
	}
	return d, err
}

// maxTxAttempts bounds how often a transaction chosen as a deadlock victim
// is started again.
const maxTxAttempts = 3

// RecordWithFamily upserts the family described by in and appends a
// distribution record for it in a single transaction.  Either both writes
// are visible or neither is.  The transaction runs at READ COMMITTED so a
// lookup of a contact number that does not exist yet takes no gap lock;
// two first submissions for the same number then race on the unique key
// rather than deadlock.  A deadlock that still happens restarts the whole
// transaction.
func (r *DistributionRepo) RecordWithFamily(ctx context.Context, in model.DistributionInput, now time.Time) (model.DistributionRow, error) {
	var (
		row model.DistributionRow
		err error
	)
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		row, err = r.recordOnce(ctx, in, now)
		if !isDeadlock(err) {
			return row, err
		}
	}
	return model.DistributionRow{}, err
}

func (r *DistributionRepo) recordOnce(ctx context.Context, in model.DistributionInput, now time.Time) (model.DistributionRow, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return model.DistributionRow{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	fam, err := r.families.UpsertTx(ctx, tx, in.Family, now)
	if err != nil {
		return model.DistributionRow{}, err
	}
	rec := model.DistributionRecord{
		FamilyID:         fam.ID,
		RiceReceivedKg:   in.RiceReceivedKg,
		DistributionDate: in.DistributionDate,
		Notes:            in.Notes,
		CreatedAt:        now,
	}
	if err := r.insertTx(ctx, tx, &rec); err != nil {
		return model.DistributionRow{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.DistributionRow{}, err
	}
	committed = true
	return model.DistributionRow{Record: rec, Family: fam}, nil
}

func (r *DistributionRepo) insertTx(ctx context.Context, tx *sql.Tx, rec *model.DistributionRecord) error {
	var notes any
	if rec.Notes != "" {
		notes = rec.Notes
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO distribution_records (family_id, rice_received_kg, distribution_date, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.FamilyID, rec.RiceReceivedKg, rec.DistributionDate, notes, rec.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// rangeClause renders an optional inclusive date filter.
func rangeClause(rng *model.DateRange) (string, []any) {
	if rng == nil {
		return "", nil
	}
	return ` WHERE r.distribution_date BETWEEN ? AND ?`, []any{rng.From, rng.To}
}

func orderClause(s model.Sort) string {
	col, ok := recordSortColumns[s.Field]
	if !ok {
		col = "r.id"
		s.Desc = true
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	if col == "r.id" {
		return " ORDER BY r.id " + dir
	}
	return " ORDER BY " + col + " " + dir + ", r.id " + dir
}

// ListPaged returns one page of records within rng (nil means all time)
// ordered by page.Sort, together with the number of matching records.  An
// unknown sort field falls back to id descending.
func (r *DistributionRepo) ListPaged(ctx context.Context, rng *model.DateRange, page model.PageRequest) ([]model.DistributionRow, int64, error) {
	where, args := rangeClause(rng)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM distribution_records r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	var sb strings.Builder
	sb.WriteString(recordSelect)
	sb.WriteString(where)
	sb.WriteString(orderClause(page.Sort))
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, page.Size, page.Offset())
	out, err := r.query(ctx, sb.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByFamily returns every record of familyID, newest id first.
func (r *DistributionRepo) ListByFamily(ctx context.Context, familyID uint64) ([]model.DistributionRow, error) {
	return r.query(ctx, recordSelect+` WHERE r.family_id = ? ORDER BY r.id DESC`, familyID)
}

// ListAll returns every record within rng in chronological order for
// report export.
func (r *DistributionRepo) ListAll(ctx context.Context, rng *model.DateRange) ([]model.DistributionRow, error) {
	where, args := rangeClause(rng)
	return r.query(ctx, recordSelect+where+` ORDER BY r.distribution_date ASC, r.id ASC`, args...)
}

func (r *DistributionRepo) query(ctx context.Context, q string, args ...any) ([]model.DistributionRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.DistributionRow
	for rows.Next() {
		d, err := scanDistributionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
