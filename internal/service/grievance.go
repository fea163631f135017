package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/queue"
	"github.com/iliyamo/fair-rice-portal/internal/repository"
	"github.com/iliyamo/fair-rice-portal/internal/utils"
)

// maxTokenAttempts bounds inserts retried on tracking id collisions.
const maxTokenAttempts = 5

// GrievanceStore is the subset of the grievance repository the tracker
// needs.
type GrievanceStore interface {
	Create(ctx context.Context, g *model.Grievance) error
	GetByID(ctx context.Context, id uint64) (model.Grievance, error)
	GetByTrackingID(ctx context.Context, token string) (model.Grievance, error)
	ListPaged(ctx context.Context, page model.PageRequest) ([]model.Grievance, int64, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	AddComment(ctx context.Context, c *model.Comment) error
	CommentsFor(ctx context.Context, ids []uint64) (map[uint64][]model.Comment, error)
}

// ImageStore persists grievance images.
type ImageStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
}

// Grievances implements the grievance lifecycle.
type Grievances struct {
	store  GrievanceStore
	images ImageStore
	events EventPublisher
	log    *zap.Logger

	Now      func() time.Time
	NewToken func() string
}

func NewGrievances(store GrievanceStore, images ImageStore, events EventPublisher, log *zap.Logger) *Grievances {
	return &Grievances{
		store:    store,
		images:   images,
		events:   events,
		log:      log.Named("grievances"),
		Now:      func() time.Time { return time.Now().UTC() },
		NewToken: utils.NewTrackingID,
	}
}

// File stores an optional image, assigns a fresh tracking id and saves the
// grievance with status "New".
func (s *Grievances) File(ctx context.Context, in model.GrievanceInput) (model.GrievanceView, error) {
	g := model.Grievance{
		Subject:     strings.TrimSpace(in.Subject),
		Content:     strings.TrimSpace(in.Content),
		ContactInfo: strings.TrimSpace(in.ContactInfo),
		Status:      model.StatusNew,
		CreatedAt:   s.Now(),
	}
	if g.Subject == "" {
		return model.GrievanceView{}, invalid("subject is required")
	}
	if tooLong(g.Subject) {
		return model.GrievanceView{}, invalid("subject must be at most %d characters", maxShortText)
	}
	if g.Content == "" {
		return model.GrievanceView{}, invalid("content is required")
	}
	if tooLongText(g.Content) {
		return model.GrievanceView{}, invalid("content must be at most %d bytes", maxLongText)
	}
	if tooLong(g.ContactInfo) {
		return model.GrievanceView{}, invalid("contactInfo must be at most %d characters", maxShortText)
	}
	if in.Image != nil && len(in.Image.Data) > 0 {
		name, err := s.storeImage(ctx, *in.Image)
		if err != nil {
			return model.GrievanceView{}, err
		}
		g.ImageName = name
	}

	var err error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		g.TrackingID = s.NewToken()
		if err = s.store.Create(ctx, &g); !errors.Is(err, repository.ErrDuplicate) {
			break
		}
		s.log.Info("tracking id collision; retrying", zap.String("tracking_id", g.TrackingID))
	}
	if err != nil {
		return model.GrievanceView{}, fmt.Errorf("save grievance: %w", err)
	}

	ev := queue.GrievanceFiledEvent{
		GrievanceID: g.ID,
		TrackingID:  g.TrackingID,
		Subject:     g.Subject,
		HasImage:    g.ImageName != "",
		FiledAt:     g.CreatedAt.Format(time.RFC3339),
	}
	if err := s.events.PublishGrievanceFiled(ctx, ev); err != nil {
		s.log.Warn("publish grievance.filed failed", zap.String("tracking_id", g.TrackingID), zap.Error(err))
	}
	return model.NewGrievanceView(g, nil), nil
}

func (s *Grievances) storeImage(ctx context.Context, img model.Upload) (string, error) {
	original := filepath.Base(strings.TrimSpace(img.Filename))
	if strings.Contains(img.Filename, "..") {
		return "", invalid("Filename contains invalid path sequence %s", img.Filename)
	}
	ext := strings.ToLower(filepath.Ext(original))
	if tooLong(ext) {
		return "", invalid("Filename extension is too long")
	}
	name := uuid.NewString() + ext
	if err := s.images.Put(ctx, name, img.Data, mime.TypeByExtension(ext)); err != nil {
		return "", withKind(ErrStorage, "Could not store file %s: %v", original, err)
	}
	return name, nil
}

// GetByTrackingID looks a grievance up by its public token.  The token is
// trimmed and upper-cased first.
func (s *Grievances) GetByTrackingID(ctx context.Context, token string) (model.GrievanceView, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	g, err := s.store.GetByTrackingID(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return model.GrievanceView{}, withKind(ErrNotFound, "Grievance not found with tracking id: %s", token)
	}
	if err != nil {
		return model.GrievanceView{}, err
	}
	return s.withComments(ctx, g)
}

// ListPaged returns one page of grievances by creation time.
func (s *Grievances) ListPaged(ctx context.Context, page model.PageRequest, newestFirst bool) (model.Page[model.GrievanceView], error) {
	page.Sort = model.Sort{Field: "createdAt", Desc: newestFirst}
	rows, total, err := s.store.ListPaged(ctx, page)
	if err != nil {
		return model.Page[model.GrievanceView]{}, err
	}
	ids := make([]uint64, 0, len(rows))
	for _, g := range rows {
		ids = append(ids, g.ID)
	}
	comments, err := s.store.CommentsFor(ctx, ids)
	if err != nil {
		return model.Page[model.GrievanceView]{}, err
	}
	return model.MapPage(model.NewPage(rows, total, page), func(g model.Grievance) model.GrievanceView {
		return model.NewGrievanceView(g, comments[g.ID])
	}), nil
}

// SetStatus overwrites the status of grievance id.
func (s *Grievances) SetStatus(ctx context.Context, id uint64, status string) (model.GrievanceView, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return model.GrievanceView{}, invalid("status is required")
	}
	if tooLong(status) {
		return model.GrievanceView{}, invalid("status must be at most %d characters", maxShortText)
	}
	g, err := s.get(ctx, id)
	if err != nil {
		return model.GrievanceView{}, err
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return model.GrievanceView{}, err
	}
	g.Status = status
	return s.withComments(ctx, g)
}

// AddComment appends a comment to grievance id.
func (s *Grievances) AddComment(ctx context.Context, id uint64, content string) (model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Comment{}, invalid("content is required")
	}
	if tooLongText(content) {
		return model.Comment{}, invalid("content must be at most %d bytes", maxLongText)
	}
	if _, err := s.get(ctx, id); err != nil {
		return model.Comment{}, err
	}
	c := model.Comment{GrievanceID: id, Content: content, CreatedAt: s.Now()}
	if err := s.store.AddComment(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Comment{}, withKind(ErrNotFound, "Grievance not found with id: %d", id)
		}
		return model.Comment{}, err
	}
	return c, nil
}

func (s *Grievances) get(ctx context.Context, id uint64) (model.Grievance, error) {
	g, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Grievance{}, withKind(ErrNotFound, "Grievance not found with id: %d", id)
	}
	return g, err
}

func (s *Grievances) withComments(ctx context.Context, g model.Grievance) (model.GrievanceView, error) {
	comments, err := s.store.CommentsFor(ctx, []uint64{g.ID})
	if err != nil {
		return model.GrievanceView{}, err
	}
	return model.NewGrievanceView(g, comments[g.ID]), nil
}
