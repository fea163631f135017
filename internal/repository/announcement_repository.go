package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// AnnouncementRepo persists public announcements.
type AnnouncementRepo struct{ DB *sql.DB }

func NewAnnouncementRepo(db *sql.DB) *AnnouncementRepo { return &AnnouncementRepo{DB: db} }

const announcementColumns = `id, title, content, created_at`

func scanAnnouncement(row rowScanner) (model.Announcement, error) {
	var a model.Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.CreatedAt)
	return a, err
}

// ListPaged returns one page of announcements, newest first.
func (r *AnnouncementRepo) ListPaged(ctx context.Context, page model.PageRequest) ([]model.Announcement, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []model.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Latest returns the newest announcement or ErrNotFound when there is none.
func (r *AnnouncementRepo) Latest(ctx context.Context) (model.Announcement, error) {
	a, err := scanAnnouncement(r.DB.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements ORDER BY created_at DESC, id DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Announcement{}, ErrNotFound
	}
	return a, err
}

// GetByID returns announcement id or ErrNotFound.
func (r *AnnouncementRepo) GetByID(ctx context.Context, id uint64) (model.Announcement, error) {
	a, err := scanAnnouncement(r.DB.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Announcement{}, ErrNotFound
	}
	return a, err
}

// Create inserts a and sets its ID.
func (r *AnnouncementRepo) Create(ctx context.Context, a *model.Announcement) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO announcements (title, content, created_at) VALUES (?, ?, ?)`, a.Title, a.Content, a.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// Update overwrites title and content of announcement id.
func (r *AnnouncementRepo) Update(ctx context.Context, id uint64, title, content string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE announcements SET title = ?, content = ? WHERE id = ?`, title, content, id)
	return err
}

// Delete removes announcement id or returns ErrNotFound.
func (r *AnnouncementRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
