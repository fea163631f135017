package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/repository"
)

// AnnouncementStore is the subset of the announcement repository the board
// needs.
type AnnouncementStore interface {
	ListPaged(ctx context.Context, page model.PageRequest) ([]model.Announcement, int64, error)
	Latest(ctx context.Context) (model.Announcement, error)
	GetByID(ctx context.Context, id uint64) (model.Announcement, error)
	Create(ctx context.Context, a *model.Announcement) error
	Update(ctx context.Context, id uint64, title, content string) error
	Delete(ctx context.Context, id uint64) error
}

// Announcements is the public notice board.
type Announcements struct {
	store AnnouncementStore
	Now   func() time.Time
}

func NewAnnouncements(store AnnouncementStore) *Announcements {
	return &Announcements{store: store, Now: func() time.Time { return time.Now().UTC() }}
}

func validateAnnouncement(title, content string) (string, string, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" {
		return "", "", invalid("title is required")
	}
	if tooLong(title) {
		return "", "", invalid("title must be at most %d characters", maxShortText)
	}
	if content == "" {
		return "", "", invalid("content is required")
	}
	if tooLongText(content) {
		return "", "", invalid("content must be at most %d bytes", maxLongText)
	}
	return title, content, nil
}

func announcementNotFound(id uint64) error {
	return withKind(ErrNotFound, "Announcement not found with id: %d", id)
}

// ListPaged returns one page of announcements, newest first.
func (s *Announcements) ListPaged(ctx context.Context, page model.PageRequest) (model.Page[model.Announcement], error) {
	rows, total, err := s.store.ListPaged(ctx, page)
	if err != nil {
		return model.Page[model.Announcement]{}, err
	}
	return model.NewPage(rows, total, page), nil
}

// Latest returns the newest announcement; ok is false when there is none.
func (s *Announcements) Latest(ctx context.Context) (a model.Announcement, ok bool, err error) {
	a, err = s.store.Latest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Announcement{}, false, nil
	}
	if err != nil {
		return model.Announcement{}, false, err
	}
	return a, true, nil
}

// Create posts a new announcement.
func (s *Announcements) Create(ctx context.Context, title, content string) (model.Announcement, error) {
	title, content, err := validateAnnouncement(title, content)
	if err != nil {
		return model.Announcement{}, err
	}
	a := model.Announcement{Title: title, Content: content, CreatedAt: s.Now()}
	if err := s.store.Create(ctx, &a); err != nil {
		return model.Announcement{}, err
	}
	return a, nil
}

// Update replaces title and content of announcement id.
func (s *Announcements) Update(ctx context.Context, id uint64, title, content string) (model.Announcement, error) {
	title, content, err := validateAnnouncement(title, content)
	if err != nil {
		return model.Announcement{}, err
	}
	a, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Announcement{}, announcementNotFound(id)
	}
	if err != nil {
		return model.Announcement{}, err
	}
	if err := s.store.Update(ctx, id, title, content); err != nil {
		return model.Announcement{}, err
	}
	a.Title, a.Content = title, content
	return a, nil
}

// Delete removes announcement id.
func (s *Announcements) Delete(ctx context.Context, id uint64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return announcementNotFound(id)
	}
	return err
}
