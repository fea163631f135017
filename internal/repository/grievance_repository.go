package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// GrievanceRepo persists grievances and their comments.
type GrievanceRepo struct {
	db *sql.DB
}

// NewGrievanceRepo returns a GrievanceRepo bound to db.
func NewGrievanceRepo(db *sql.DB) *GrievanceRepo { return &GrievanceRepo{db: db} }

const grievanceColumns = `id, tracking_id, subject, content, contact_info, image_filename, status, created_at`

func scanGrievance(row rowScanner) (model.Grievance, error) {
	var (
		g       model.Grievance
		contact sql.NullString
		image   sql.NullString
	)
	err := row.Scan(&g.ID, &g.TrackingID, &g.Subject, &g.Content, &contact, &image, &g.Status, &g.CreatedAt)
	g.ContactInfo = contact.String
	g.ImageName = image.String
	return g, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts g and sets its ID.  A tracking id collision is reported
// as ErrDuplicate so the caller can retry with a fresh token.
func (r *GrievanceRepo) Create(ctx context.Context, g *model.Grievance) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO grievances (tracking_id, subject, content, contact_info, image_filename, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.TrackingID, g.Subject, g.Content, nullable(g.ContactInfo), nullable(g.ImageName), g.Status, g.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID returns the grievance with id or ErrNotFound.
func (r *GrievanceRepo) GetByID(ctx context.Context, id uint64) (model.Grievance, error) {
	g, err := scanGrievance(r.db.QueryRowContext(ctx,
		`SELECT `+grievanceColumns+` FROM grievances WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Grievance{}, ErrNotFound
	}
	return g, err
}

// GetByTrackingID returns the grievance carrying token or ErrNotFound.
func (r *GrievanceRepo) GetByTrackingID(ctx context.Context, token string) (model.Grievance, error) {
	g, err := scanGrievance(r.db.QueryRowContext(ctx,
		`SELECT `+grievanceColumns+` FROM grievances WHERE tracking_id = ? LIMIT 1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Grievance{}, ErrNotFound
	}
	return g, err
}

// ListPaged returns one page of grievances by creation time, newest first
// unless page.Sort asks for ascending order.
func (r *GrievanceRepo) ListPaged(ctx context.Context, page model.PageRequest) ([]model.Grievance, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grievances`).Scan(&total); err != nil {
		return nil, 0, err
	}
	dir := "DESC"
	if !page.Sort.Desc {
		dir = "ASC"
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+grievanceColumns+` FROM grievances ORDER BY created_at `+dir+`, id `+dir+` LIMIT ? OFFSET ?`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []model.Grievance
	for rows.Next() {
		g, err := scanGrievance(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

// UpdateStatus overwrites the status of grievance id.  Callers check
// existence first: MySQL reports zero affected rows for an unchanged value.
func (r *GrievanceRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE grievances SET status = ? WHERE id = ?`, status, id)
	return err
}

// AddComment inserts c and sets its ID.  A missing grievance surfaces as
// ErrNotFound through the foreign key.
func (r *GrievanceRepo) AddComment(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO grievance_comments (grievance_id, content, created_at) VALUES (?, ?, ?)`,
		c.GrievanceID, c.Content, c.CreatedAt)
	if err != nil {
		if isMissingParent(err) {
			return ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// CommentsFor returns the comments of every grievance in ids, oldest first,
// keyed by grievance id.  Grievances without comments are absent from the
// map.
func (r *GrievanceRepo) CommentsFor(ctx context.Context, ids []uint64) (map[uint64][]model.Comment, error) {
	out := make(map[uint64][]model.Comment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, grievance_id, content, created_at FROM grievance_comments WHERE grievance_id IN (`+placeholders+`) ORDER BY created_at ASC, id ASC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.GrievanceID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out[c.GrievanceID] = append(out[c.GrievanceID], c)
	}
	return out, rows.Err()
}
