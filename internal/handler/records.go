package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/report"
	"github.com/iliyamo/fair-rice-portal/internal/service"
)

// LedgerService is implemented by *service.Ledger.
type LedgerService interface {
	RecordPublicDistribution(ctx context.Context, in model.DistributionInput) (model.DistributionRecordView, error)
	ListPaged(ctx context.Context, q service.RecordQuery) (model.Page[model.DistributionRecordView], error)
	ListForFamily(ctx context.Context, familyID uint64) ([]model.DistributionRecordView, error)
	ListForExport(ctx context.Context, year, month *int) ([]model.DistributionRecordView, error)
}

// RecordHandler serves the distribution ledger.
type RecordHandler struct {
	ledger LedgerService
	log    *zap.Logger
}

func NewRecordHandler(ledger LedgerService, log *zap.Logger) *RecordHandler {
	return &RecordHandler{ledger: ledger, log: log.Named("records")}
}

// recordReq is the public submission form: family details and the
// distribution itself in one flat object.
type recordReq struct {
	FamilyHeadName   string          `json:"familyHeadName"`
	ContactNumber    string          `json:"contactNumber"`
	NumMembers       int             `json:"numMembers"`
	VillageName      string          `json:"villageName"`
	RiceReceivedKg   decimal.Decimal `json:"riceReceivedKg"`
	DistributionDate model.Date      `json:"distributionDate"`
	Notes            string          `json:"notes"`
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SubmitPublic records a distribution reported by a beneficiary.
func (h *RecordHandler) SubmitPublic(c echo.Context) error {
	var req recordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.ledger.RecordPublicDistribution(ctx, model.DistributionInput{
		Family: model.FamilyInput{
			ContactNumber: req.ContactNumber,
			HeadName:      req.FamilyHeadName,
			NumMembers:    req.NumMembers,
			VillageName:   req.VillageName,
		},
		RiceReceivedKg:   req.RiceReceivedKg,
		DistributionDate: req.DistributionDate,
		Notes:            req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// List returns one page of records, optionally limited to ?year and ?month.
func (h *RecordHandler) List(c echo.Context) error {
	page, err := pageFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	year, err := optionalInt(c, "year")
	if err != nil {
		return writeError(c, h.log, err)
	}
	month, err := optionalInt(c, "month")
	if err != nil {
		return writeError(c, h.log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.ledger.ListPaged(ctx, service.RecordQuery{Year: year, Month: month, Page: page})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Export streams every record of the period as an XLSX workbook.
func (h *RecordHandler) Export(c echo.Context) error {
	year, err := optionalInt(c, "year")
	if err != nil {
		return writeError(c, h.log, err)
	}
	month, err := optionalInt(c, "month")
	if err != nil {
		return writeError(c, h.log, err)
	}
	// Large periods take longer than a single lookup.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	rows, err := h.ledger.ListForExport(ctx, year, month)
	if err != nil {
		return writeError(c, h.log, err)
	}
	body, err := report.Export(rows)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+report.FileName(year, month)+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, body)
}

// FamilyHistory lists every record of one family, newest first.
func (h *RecordHandler) FamilyHistory(c echo.Context) error {
	id, err := pathID(c, "familyId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.ledger.ListForFamily(ctx, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
