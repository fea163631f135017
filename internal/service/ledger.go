package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/queue"
	"github.com/iliyamo/fair-rice-portal/internal/repository"
)

// maxAmountKg is the largest value a DECIMAL(10,2) column holds.
var maxAmountKg = decimal.RequireFromString("99999999.99")

// RiceRules holds the entitlement rate per family member.
type RiceRules struct {
	PerPersonKg decimal.Decimal
}

// Entitlement is members × rate.
func Entitlement(members int, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(members)).Mul(rate)
}

// Deficit is max(0, entitlement − received).
func Deficit(entitlement, received decimal.Decimal) decimal.Decimal {
	d := entitlement.Sub(received)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// PeriodBounds turns an optional year and month into an inclusive date
// range.  Year and month give that calendar month, year alone gives the
// whole year and neither gives nil (no restriction).  A month without a
// year or outside 1..12 is rejected.
func PeriodBounds(year, month *int) (*model.DateRange, error) {
	if month != nil && (*month < 1 || *month > 12) {
		return nil, invalid("month must be between 1 and 12")
	}
	if year == nil {
		if month != nil {
			return nil, invalid("month requires year")
		}
		return nil, nil
	}
	if *year < 1 || *year > 9999 {
		return nil, invalid("year must be between 1 and 9999")
	}
	if month == nil {
		return &model.DateRange{
			From: model.NewDate(*year, time.January, 1),
			To:   model.NewDate(*year, time.December, 31),
		}, nil
	}
	first := model.NewDate(*year, time.Month(*month), 1)
	return &model.DateRange{
		From: first,
		To:   model.Date{Time: first.AddDate(0, 1, -1)},
	}, nil
}

// DistributionStore is the subset of the distribution repository the
// ledger needs.
type DistributionStore interface {
	RecordWithFamily(ctx context.Context, in model.DistributionInput, now time.Time) (model.DistributionRow, error)
	ListPaged(ctx context.Context, rng *model.DateRange, page model.PageRequest) ([]model.DistributionRow, int64, error)
	ListByFamily(ctx context.Context, familyID uint64) ([]model.DistributionRow, error)
	ListAll(ctx context.Context, rng *model.DateRange) ([]model.DistributionRow, error)
}

// EventPublisher delivers domain events after the owning transaction has
// committed.
type EventPublisher interface {
	PublishDistributionRecorded(ctx context.Context, ev queue.DistributionRecordedEvent) error
	PublishGrievanceFiled(ctx context.Context, ev queue.GrievanceFiledEvent) error
}

// Ledger records distributions and derives entitlement and deficit when
// they are read.
type Ledger struct {
	records DistributionStore
	rules   RiceRules
	events  EventPublisher
	log     *zap.Logger
	Now     func() time.Time
}

func NewLedger(records DistributionStore, rules RiceRules, events EventPublisher, log *zap.Logger) *Ledger {
	return &Ledger{
		records: records,
		rules:   rules,
		events:  events,
		log:     log.Named("ledger"),
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// RecordQuery selects records for listing.
type RecordQuery struct {
	Year  *int
	Month *int
	Page  model.PageRequest
}

// View builds the client view of a record, computing entitlement from the
// family's current member count.
func (l *Ledger) View(row model.DistributionRow) model.DistributionRecordView {
	ent := Entitlement(row.Family.NumMembers, l.rules.PerPersonKg)
	return model.DistributionRecordView{
		ID:               row.Record.ID,
		RiceReceivedKg:   row.Record.RiceReceivedKg,
		DistributionDate: row.Record.DistributionDate,
		Notes:            row.Record.Notes,
		CreatedAt:        row.Record.CreatedAt,
		UniqueFamilyID:   row.Family.UniqueFamilyID,
		Family:           row.Family,
		EntitlementKg:    ent,
		DeficitKg:        Deficit(ent, row.Record.RiceReceivedKg),
	}
}

func (l *Ledger) views(rows []model.DistributionRow) []model.DistributionRecordView {
	out := make([]model.DistributionRecordView, 0, len(rows))
	for _, r := range rows {
		out = append(out, l.View(r))
	}
	return out
}

func validateSubmission(in model.DistributionInput) (model.DistributionInput, error) {
	contact, err := NormalizeContactNumber(in.Family.ContactNumber)
	if err != nil {
		return in, err
	}
	in.Family.ContactNumber = contact
	in.Family.HeadName = strings.TrimSpace(in.Family.HeadName)
	in.Family.VillageName = strings.TrimSpace(in.Family.VillageName)
	in.Notes = strings.TrimSpace(in.Notes)

	switch {
	case in.Family.HeadName == "":
		return in, invalid("familyHeadName is required")
	case tooLong(in.Family.HeadName):
		return in, invalid("familyHeadName must be at most %d characters", maxShortText)
	case in.Family.VillageName == "":
		return in, invalid("villageName is required")
	case tooLong(in.Family.VillageName):
		return in, invalid("villageName must be at most %d characters", maxShortText)
	case in.Family.NumMembers < 1:
		return in, invalid("numMembers must be at least 1")
	case in.Family.NumMembers > maxMembers:
		return in, invalid("numMembers must be at most %d", maxMembers)
	case !in.RiceReceivedKg.IsPositive():
		return in, invalid("riceReceivedKg must be greater than 0")
	case !in.RiceReceivedKg.Equal(in.RiceReceivedKg.Truncate(2)):
		return in, invalid("riceReceivedKg allows at most 2 decimal places")
	case in.RiceReceivedKg.GreaterThan(maxAmountKg):
		return in, invalid("riceReceivedKg is too large")
	case in.DistributionDate.IsZero():
		return in, invalid("distributionDate is required")
	case in.DistributionDate.Year() < minDateYear || in.DistributionDate.Year() > maxDateYear:
		return in, invalid("distributionDate year must be between %d and %d", minDateYear, maxDateYear)
	case tooLongText(in.Notes):
		return in, invalid("notes must be at most %d bytes", maxLongText)
	}
	return in, nil
}

// RecordPublicDistribution validates a public submission, upserts the
// family and appends the record in one transaction.  The
// distribution.recorded event is published after commit; a publish failure
// is logged and does not fail the call.
func (l *Ledger) RecordPublicDistribution(ctx context.Context, in model.DistributionInput) (model.DistributionRecordView, error) {
	in, err := validateSubmission(in)
	if err != nil {
		return model.DistributionRecordView{}, err
	}
	row, err := l.records.RecordWithFamily(ctx, in, l.Now())
	if err != nil {
		return model.DistributionRecordView{}, err
	}
	view := l.View(row)

	ev := queue.DistributionRecordedEvent{
		RecordID:         view.ID,
		FamilyID:         view.Family.ID,
		UniqueFamilyID:   view.UniqueFamilyID,
		VillageName:      view.Family.VillageName,
		NumMembers:       view.Family.NumMembers,
		RiceReceivedKg:   view.RiceReceivedKg.String(),
		EntitlementKg:    view.EntitlementKg.String(),
		DeficitKg:        view.DeficitKg.String(),
		DistributionDate: view.DistributionDate.String(),
		RecordedAt:       view.CreatedAt.Format(time.RFC3339),
	}
	if err := l.events.PublishDistributionRecorded(ctx, ev); err != nil {
		l.log.Warn("publish distribution.recorded failed", zap.Uint64("record_id", view.ID), zap.Error(err))
	}
	return view, nil
}

// ListPaged returns one page of record views within the requested period.
func (l *Ledger) ListPaged(ctx context.Context, q RecordQuery) (model.Page[model.DistributionRecordView], error) {
	rng, err := PeriodBounds(q.Year, q.Month)
	if err != nil {
		return model.Page[model.DistributionRecordView]{}, err
	}
	if q.Page.Sort.Field == "" {
		q.Page.Sort = model.Sort{Field: "id", Desc: true}
	}
	if !repository.IsRecordSortField(q.Page.Sort.Field) {
		return model.Page[model.DistributionRecordView]{}, invalid("cannot sort by %q", q.Page.Sort.Field)
	}
	rows, total, err := l.records.ListPaged(ctx, rng, q.Page)
	if err != nil {
		return model.Page[model.DistributionRecordView]{}, err
	}
	return model.MapPage(model.NewPage(rows, total, q.Page), l.View), nil
}

// ListForFamily returns every record of familyID, newest first.  An
// unknown family yields an empty slice.
func (l *Ledger) ListForFamily(ctx context.Context, familyID uint64) ([]model.DistributionRecordView, error) {
	rows, err := l.records.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	return l.views(rows), nil
}

// ListForExport returns every record within the requested period in
// chronological order.
func (l *Ledger) ListForExport(ctx context.Context, year, month *int) ([]model.DistributionRecordView, error) {
	rng, err := PeriodBounds(year, month)
	if err != nil {
		return nil, err
	}
	rows, err := l.records.ListAll(ctx, rng)
	if err != nil {
		return nil, err
	}
	return l.views(rows), nil
}
