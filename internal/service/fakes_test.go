package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/queue"
	"github.com/iliyamo/fair-rice-portal/internal/repository"
)

type fakePublisher struct {
	mu        sync.Mutex
	recorded  []queue.DistributionRecordedEvent
	filed     []queue.GrievanceFiledEvent
	failWith  error
}

func (p *fakePublisher) PublishDistributionRecorded(_ context.Context, ev queue.DistributionRecordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recorded = append(p.recorded, ev)
	return p.failWith
}

func (p *fakePublisher) PublishGrievanceFiled(_ context.Context, ev queue.GrievanceFiledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filed = append(p.filed, ev)
	return p.failWith
}

// fakeLedgerStore keeps families and records in memory with the same
// upsert semantics as the SQL repository.
type fakeLedgerStore struct {
	families map[string]*model.Family
	records  []model.DistributionRecord
	nextID   uint64
	lastIn   model.DistributionInput
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{families: map[string]*model.Family{}}
}

func (s *fakeLedgerStore) id() uint64 { s.nextID++; return s.nextID }

func (s *fakeLedgerStore) RecordWithFamily(_ context.Context, in model.DistributionInput, now time.Time) (model.DistributionRow, error) {
	s.lastIn = in
	f, ok := s.families[in.Family.ContactNumber]
	if !ok {
		f = &model.Family{ID: s.id(), ContactNumber: in.Family.ContactNumber, UniqueFamilyID: "FAM-TEST0001", CreatedAt: now}
		s.families[in.Family.ContactNumber] = f
	}
	f.HeadName, f.NumMembers, f.VillageName = in.Family.HeadName, in.Family.NumMembers, in.Family.VillageName
	rec := model.DistributionRecord{
		ID: s.id(), FamilyID: f.ID, RiceReceivedKg: in.RiceReceivedKg,
		DistributionDate: in.DistributionDate, Notes: in.Notes, CreatedAt: now,
	}
	s.records = append(s.records, rec)
	return model.DistributionRow{Record: rec, Family: *f}, nil
}

func (s *fakeLedgerStore) family(id uint64) model.Family {
	for _, f := range s.families {
		if f.ID == id {
			return *f
		}
	}
	return model.Family{}
}

func (s *fakeLedgerStore) rows(keep func(model.DistributionRecord) bool) []model.DistributionRow {
	var out []model.DistributionRow
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if keep(r) {
			out = append(out, model.DistributionRow{Record: r, Family: s.family(r.FamilyID)})
		}
	}
	return out
}

func inRange(rng *model.DateRange, d model.Date) bool {
	return rng == nil || (!d.Before(rng.From.Time) && !d.After(rng.To.Time))
}

func (s *fakeLedgerStore) ListPaged(_ context.Context, rng *model.DateRange, page model.PageRequest) ([]model.DistributionRow, int64, error) {
	all := s.rows(func(r model.DistributionRecord) bool { return inRange(rng, r.DistributionDate) })
	lo := page.Offset()
	if lo > len(all) {
		lo = len(all)
	}
	hi := lo + page.Size
	if hi > len(all) {
		hi = len(all)
	}
	return all[lo:hi], int64(len(all)), nil
}

func (s *fakeLedgerStore) ListByFamily(_ context.Context, familyID uint64) ([]model.DistributionRow, error) {
	return s.rows(func(r model.DistributionRecord) bool { return r.FamilyID == familyID }), nil
}

func (s *fakeLedgerStore) ListAll(_ context.Context, rng *model.DateRange) ([]model.DistributionRow, error) {
	out := s.rows(func(r model.DistributionRecord) bool { return inRange(rng, r.DistributionDate) })
	sort.Slice(out, func(i, j int) bool { return out[i].Record.ID < out[j].Record.ID })
	return out, nil
}

type fakeFamilyStore struct {
	byContact map[string]model.Family
}

func (s *fakeFamilyStore) GetByContactNumber(_ context.Context, contact string) (model.Family, error) {
	f, ok := s.byContact[contact]
	if !ok {
		return model.Family{}, repository.ErrNotFound
	}
	return f, nil
}

func (s *fakeFamilyStore) GetByID(_ context.Context, id uint64) (model.Family, error) {
	for _, f := range s.byContact {
		if f.ID == id {
			return f, nil
		}
	}
	return model.Family{}, repository.ErrNotFound
}

func (s *fakeFamilyStore) ListPaged(_ context.Context, page model.PageRequest) ([]model.Family, int64, error) {
	var out []model.Family
	for _, f := range s.byContact {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

type fakeGrievanceStore struct {
	byID       map[uint64]*model.Grievance
	comments   []model.Comment
	taken      map[string]bool
	createCall int
	nextID     uint64
}

func newFakeGrievanceStore() *fakeGrievanceStore {
	return &fakeGrievanceStore{byID: map[uint64]*model.Grievance{}, taken: map[string]bool{}}
}

func (s *fakeGrievanceStore) Create(_ context.Context, g *model.Grievance) error {
	s.createCall++
	if s.taken[g.TrackingID] {
		return repository.ErrDuplicate
	}
	s.nextID++
	g.ID = s.nextID
	cp := *g
	s.byID[g.ID] = &cp
	s.taken[g.TrackingID] = true
	return nil
}

func (s *fakeGrievanceStore) GetByID(_ context.Context, id uint64) (model.Grievance, error) {
	g, ok := s.byID[id]
	if !ok {
		return model.Grievance{}, repository.ErrNotFound
	}
	return *g, nil
}

func (s *fakeGrievanceStore) GetByTrackingID(_ context.Context, token string) (model.Grievance, error) {
	for _, g := range s.byID {
		if g.TrackingID == token {
			return *g, nil
		}
	}
	return model.Grievance{}, repository.ErrNotFound
}

func (s *fakeGrievanceStore) ListPaged(_ context.Context, page model.PageRequest) ([]model.Grievance, int64, error) {
	var out []model.Grievance
	for _, g := range s.byID {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if page.Sort.Desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, int64(len(out)), nil
}

func (s *fakeGrievanceStore) UpdateStatus(_ context.Context, id uint64, status string) error {
	s.byID[id].Status = status
	return nil
}

func (s *fakeGrievanceStore) AddComment(_ context.Context, c *model.Comment) error {
	if _, ok := s.byID[c.GrievanceID]; !ok {
		return repository.ErrNotFound
	}
	c.ID = uint64(len(s.comments) + 1)
	s.comments = append(s.comments, *c)
	return nil
}

func (s *fakeGrievanceStore) CommentsFor(_ context.Context, ids []uint64) (map[uint64][]model.Comment, error) {
	want := map[uint64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[uint64][]model.Comment{}
	for _, c := range s.comments {
		if want[c.GrievanceID] {
			out[c.GrievanceID] = append(out[c.GrievanceID], c)
		}
	}
	return out, nil
}

type fakeImageStore struct {
	puts map[string][]byte
	err  error
}

func (s *fakeImageStore) Put(_ context.Context, name string, data []byte, _ string) error {
	if s.err != nil {
		return s.err
	}
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[name] = data
	return nil
}

// fakeAccountStore mirrors the SQL repository's reset-token semantics.
type fakeAccountStore struct {
	accounts map[string]*model.Account
	nextID   uint64
	countErr error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]*model.Account{}}
}

func (s *fakeAccountStore) Count(context.Context) (int64, error) {
	return int64(len(s.accounts)), s.countErr
}

func (s *fakeAccountStore) Create(_ context.Context, username, hash string) (uint64, error) {
	if _, ok := s.accounts[username]; ok {
		return 0, repository.ErrDuplicate
	}
	s.nextID++
	s.accounts[username] = &model.Account{ID: s.nextID, Username: username, PasswordHash: hash}
	return s.nextID, nil
}

func (s *fakeAccountStore) GetByUsername(_ context.Context, username string) (model.Account, error) {
	a, ok := s.accounts[username]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return *a, nil
}

func (s *fakeAccountStore) byID(id uint64) *model.Account {
	for _, a := range s.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *fakeAccountStore) UpdatePassword(_ context.Context, id uint64, hash string) error {
	a := s.byID(id)
	if a == nil {
		return errors.New("no such account")
	}
	a.PasswordHash = hash
	return nil
}

func (s *fakeAccountStore) SetResetToken(_ context.Context, id uint64, token string, expiry time.Time) error {
	a := s.byID(id)
	if a == nil {
		return errors.New("no such account")
	}
	a.ResetToken, a.ResetTokenExpiry = &token, &expiry
	return nil
}

func (s *fakeAccountStore) RedeemResetToken(_ context.Context, token, newHash string, now time.Time) error {
	for _, a := range s.accounts {
		if a.ResetToken == nil || *a.ResetToken != token {
			continue
		}
		expired := a.ResetTokenExpired(now)
		a.ResetToken, a.ResetTokenExpiry = nil, nil
		if expired {
			return repository.ErrTokenExpired
		}
		a.PasswordHash = newHash
		return nil
	}
	return repository.ErrInvalidToken
}

type fakeAnnouncementStore struct {
	items  []model.Announcement
	nextID uint64
}

func (s *fakeAnnouncementStore) ListPaged(_ context.Context, page model.PageRequest) ([]model.Announcement, int64, error) {
	out := append([]model.Announcement(nil), s.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (s *fakeAnnouncementStore) Latest(ctx context.Context) (model.Announcement, error) {
	out, _, _ := s.ListPaged(ctx, model.NewPageRequest(0, 1))
	if len(out) == 0 {
		return model.Announcement{}, repository.ErrNotFound
	}
	return out[0], nil
}

func (s *fakeAnnouncementStore) GetByID(_ context.Context, id uint64) (model.Announcement, error) {
	for _, a := range s.items {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Announcement{}, repository.ErrNotFound
}

func (s *fakeAnnouncementStore) Create(_ context.Context, a *model.Announcement) error {
	s.nextID++
	a.ID = s.nextID
	s.items = append(s.items, *a)
	return nil
}

func (s *fakeAnnouncementStore) Update(_ context.Context, id uint64, title, content string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Title, s.items[i].Content = title, content
		}
	}
	return nil
}

func (s *fakeAnnouncementStore) Delete(_ context.Context, id uint64) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
