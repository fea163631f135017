package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// MaxImageBytes caps an uploaded grievance image.
const MaxImageBytes = 5 << 20

// GrievanceService is implemented by *service.Grievances.
type GrievanceService interface {
	File(ctx context.Context, in model.GrievanceInput) (model.GrievanceView, error)
	GetByTrackingID(ctx context.Context, token string) (model.GrievanceView, error)
	ListPaged(ctx context.Context, page model.PageRequest, newestFirst bool) (model.Page[model.GrievanceView], error)
	SetStatus(ctx context.Context, id uint64, status string) (model.GrievanceView, error)
	AddComment(ctx context.Context, id uint64, content string) (model.Comment, error)
}

// GrievanceHandler serves the grievance tracker.
type GrievanceHandler struct {
	grievances GrievanceService
	log        *zap.Logger
}

func NewGrievanceHandler(grievances GrievanceService, log *zap.Logger) *GrievanceHandler {
	return &GrievanceHandler{grievances: grievances, log: log.Named("grievances")}
}

// ----- DTOs -----

type grievanceReq struct {
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	ContactInfo string `json:"contactInfo"`
}

type statusReq struct {
	Status string `json:"status"`
}

type commentReq struct {
	Content string `json:"content"`
}

// imageURL turns a stored image name into an absolute URL served by the
// uploads endpoint of this host.
func imageURL(c echo.Context, name string) string {
	return c.Scheme() + "://" + c.Request().Host + "/uploads/" + name
}

func (h *GrievanceHandler) present(c echo.Context, v model.GrievanceView) model.GrievanceView {
	if v.ImageName != "" {
		v.ImageURL = imageURL(c, v.ImageName)
	}
	return v
}

// FilePublic accepts a multipart form with a "grievance" JSON part and an
// optional "image" file part.
func (h *GrievanceHandler) FilePublic(c echo.Context) error {
	raw, err := grievancePart(c)
	if err != nil {
		return badRequest(c, "grievance part is required")
	}
	var req grievanceReq
	if err := json.Unmarshal(raw, &req); err != nil {
		return badRequest(c, "grievance part must be JSON")
	}

	in := model.GrievanceInput{Subject: req.Subject, Content: req.Content, ContactInfo: req.ContactInfo}
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		up, err := readUpload(fh)
		if err != nil {
			return badRequest(c, err.Error())
		}
		in.Image = up
	case !errors.Is(err, http.ErrMissingFile):
		return badRequest(c, "invalid image part")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.grievances.File(ctx, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, h.present(c, view))
}

// grievancePart reads the JSON part either as a plain form value or, for
// clients that attach it as a blob, as a file.
func grievancePart(c echo.Context) ([]byte, error) {
	if v := c.FormValue("grievance"); strings.TrimSpace(v) != "" {
		return []byte(v), nil
	}
	fh, err := c.FormFile("grievance")
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, 64<<10))
}

func readUpload(fh *multipart.FileHeader) (*model.Upload, error) {
	if fh.Size > MaxImageBytes {
		return nil, errors.New("image is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("invalid image part")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, errors.New("invalid image part")
	}
	if len(data) > MaxImageBytes {
		return nil, errors.New("image is too large")
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &model.Upload{Filename: fh.Filename, Data: data}, nil
}

// Status returns a grievance and its comments by tracking id.
func (h *GrievanceHandler) Status(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.grievances.GetByTrackingID(ctx, c.Param("trackingId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, h.present(c, view))
}

// List pages through grievances by creation time.  Only ?sort=createdAt
// is accepted; the default is newest first.
func (h *GrievanceHandler) List(c echo.Context) error {
	page, err := pageFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	newestFirst := true
	if page.Sort.Field != "" {
		if page.Sort.Field != "createdAt" {
			return badRequest(c, "cannot sort by \""+page.Sort.Field+"\"")
		}
		newestFirst = page.Sort.Desc
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.grievances.ListPaged(ctx, page, newestFirst)
	if err != nil {
		return writeError(c, h.log, err)
	}
	for i := range out.Content {
		out.Content[i] = h.present(c, out.Content[i])
	}
	return c.JSON(http.StatusOK, out)
}

// SetStatus overwrites the status of a grievance.
func (h *GrievanceHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.grievances.SetStatus(ctx, id, req.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, h.present(c, view))
}

// AddComment appends an admin comment to a grievance.
func (h *GrievanceHandler) AddComment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cm, err := h.grievances.AddComment(ctx, id, req.Content)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, cm)
}
