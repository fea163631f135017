package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/service"
	"github.com/iliyamo/fair-rice-portal/internal/storage"
	"github.com/iliyamo/fair-rice-portal/internal/utils"
)

// ----- stubs -----

type stubCreds struct {
	loginErr  error
	changeErr error
	issueErr  error
	redeemErr error
	changed   string
}

func (s *stubCreds) Login(_ context.Context, username, _ string) (utils.AccessToken, error) {
	if s.loginErr != nil {
		return utils.AccessToken{}, s.loginErr
	}
	return utils.AccessToken{Token: "tok-" + username, Exp: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (s *stubCreds) ChangePassword(_ context.Context, username, _, _, _ string) error {
	s.changed = username
	return s.changeErr
}

func (s *stubCreds) IssueResetToken(context.Context, string) (string, error) {
	return "reset-token", s.issueErr
}

func (s *stubCreds) RedeemResetToken(context.Context, string, string, string) error {
	return s.redeemErr
}

type stubLedger struct {
	got      model.DistributionInput
	query    service.RecordQuery
	family   uint64
	err      error
	exported []model.DistributionRecordView
}

func (s *stubLedger) RecordPublicDistribution(_ context.Context, in model.DistributionInput) (model.DistributionRecordView, error) {
	s.got = in
	if s.err != nil {
		return model.DistributionRecordView{}, s.err
	}
	return model.DistributionRecordView{ID: 7, RiceReceivedKg: in.RiceReceivedKg, DistributionDate: in.DistributionDate}, nil
}

func (s *stubLedger) ListPaged(_ context.Context, q service.RecordQuery) (model.Page[model.DistributionRecordView], error) {
	s.query = q
	if s.err != nil {
		return model.Page[model.DistributionRecordView]{}, s.err
	}
	return model.NewPage([]model.DistributionRecordView{{ID: 1}}, 1, q.Page), nil
}

func (s *stubLedger) ListForFamily(_ context.Context, id uint64) ([]model.DistributionRecordView, error) {
	s.family = id
	return []model.DistributionRecordView{}, s.err
}

func (s *stubLedger) ListForExport(context.Context, *int, *int) ([]model.DistributionRecordView, error) {
	return s.exported, s.err
}

type stubRegistry struct {
	families map[string]model.Family
}

func (s stubRegistry) FindByContactNumber(_ context.Context, contact string) (model.Family, error) {
	f, ok := s.families[contact]
	if !ok {
		return model.Family{}, fmt.Errorf("Family not found for this contact number: %s: %w", contact, service.ErrNotFound)
	}
	return f, nil
}

func (s stubRegistry) ListPaged(_ context.Context, page model.PageRequest) (model.Page[model.Family], error) {
	return model.NewPage([]model.Family{}, 0, page), nil
}

func (s stubRegistry) QRCode(_ context.Context, id uint64) ([]byte, error) {
	for _, f := range s.families {
		if f.ID == id {
			return []byte("\x89PNG " + f.UniqueFamilyID), nil
		}
	}
	return nil, fmt.Errorf("Family not found with id: %d: %w", id, service.ErrNotFound)
}

type stubGrievances struct {
	filed       model.GrievanceInput
	newestFirst bool
	status      string
}

func (s *stubGrievances) File(_ context.Context, in model.GrievanceInput) (model.GrievanceView, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return model.GrievanceView{}, &service.ValidationError{Msg: "subject is required"}
	}
	s.filed = in
	v := model.GrievanceView{ID: 1, TrackingID: "GRV-ABCD1234", Subject: in.Subject, Status: model.StatusNew, Comments: []model.Comment{}}
	if in.Image != nil {
		v.ImageName = "stored.png"
	}
	return v, nil
}

func (s *stubGrievances) GetByTrackingID(_ context.Context, token string) (model.GrievanceView, error) {
	if token != "GRV-ABCD1234" {
		return model.GrievanceView{}, fmt.Errorf("Grievance not found with tracking id: %s: %w", token, service.ErrNotFound)
	}
	return model.GrievanceView{ID: 1, TrackingID: token, ImageName: "a.jpg", Comments: []model.Comment{}}, nil
}

func (s *stubGrievances) ListPaged(_ context.Context, page model.PageRequest, newestFirst bool) (model.Page[model.GrievanceView], error) {
	s.newestFirst = newestFirst
	return model.NewPage([]model.GrievanceView{{ID: 1, ImageName: "b.png"}}, 1, page), nil
}

func (s *stubGrievances) SetStatus(_ context.Context, id uint64, status string) (model.GrievanceView, error) {
	s.status = status
	return model.GrievanceView{ID: id, Status: status}, nil
}

func (s *stubGrievances) AddComment(_ context.Context, _ uint64, content string) (model.Comment, error) {
	return model.Comment{ID: 3, Content: content}, nil
}

type stubAnnouncements struct{}

func (stubAnnouncements) ListPaged(_ context.Context, page model.PageRequest) (model.Page[model.Announcement], error) {
	return model.NewPage([]model.Announcement{{ID: 1, Title: "t"}}, 1, page), nil
}

func (stubAnnouncements) Create(_ context.Context, title, content string) (model.Announcement, error) {
	return model.Announcement{ID: 9, Title: title, Content: content}, nil
}

func (stubAnnouncements) Update(_ context.Context, id uint64, title, content string) (model.Announcement, error) {
	if id != 9 {
		return model.Announcement{}, fmt.Errorf("Announcement not found with id: %d: %w", id, service.ErrNotFound)
	}
	return model.Announcement{ID: id, Title: title, Content: content}, nil
}

func (stubAnnouncements) Delete(context.Context, uint64) error { return nil }

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

type stubBot struct{}

func (stubBot) Answer(_ context.Context, q string) (string, error) { return "echo: " + q, nil }

// ----- helpers -----

func jsonRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func asUser(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("username", name)
			return next(c)
		}
	}
}

// ----- tests -----

func TestLogin(t *testing.T) {
	creds := &stubCreds{}
	h := NewAuthHandler(creds, zap.NewNop())
	e := echo.New()
	e.POST("/login", h.Login)

	rec := jsonRequest(e, http.MethodPost, "/login", `{"username":"admin","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-admin", decode(t, rec)["token"])

	creds.loginErr = fmt.Errorf("invalid credentials: %w", service.ErrAuthMismatch)
	rec = jsonRequest(e, http.MethodPost, "/login", `{"username":"admin","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = jsonRequest(e, http.MethodPost, "/login", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword(t *testing.T) {
	creds := &stubCreds{}
	h := NewAuthHandler(creds, zap.NewNop())
	e := echo.New()
	e.POST("/anon", h.ChangePassword)
	e.POST("/change", h.ChangePassword, asUser("admin"))

	body := `{"oldPassword":"a","newPassword":"b","confirmPassword":"b"}`
	assert.Equal(t, http.StatusUnauthorized, jsonRequest(e, http.MethodPost, "/anon", body).Code)

	rec := jsonRequest(e, http.MethodPost, "/change", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", creds.changed)

	creds.changeErr = fmt.Errorf("Incorrect old password.: %w", service.ErrAuthMismatch)
	rec = jsonRequest(e, http.MethodPost, "/change", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPasswordAlwaysSucceeds(t *testing.T) {
	for _, issueErr := range []error{nil, fmt.Errorf("missing: %w", service.ErrNotFound), errors.New("db down")} {
		h := NewAuthHandler(&stubCreds{issueErr: issueErr}, zap.NewNop())
		e := echo.New()
		e.POST("/forgot", h.ForgotPassword)

		rec := jsonRequest(e, http.MethodPost, "/forgot", `{"username":"admin"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, forgotPasswordReply, decode(t, rec)["message"])
	}
}

func TestResetPassword(t *testing.T) {
	creds := &stubCreds{}
	h := NewAuthHandler(creds, zap.NewNop())
	e := echo.New()
	e.POST("/reset", h.ResetPassword)
	body := `{"token":"t","newPassword":"x","confirmPassword":"x"}`

	assert.Equal(t, http.StatusOK, jsonRequest(e, http.MethodPost, "/reset", body).Code)

	creds.redeemErr = fmt.Errorf("Password reset token has expired.: %w", service.ErrTokenExpired)
	rec := jsonRequest(e, http.MethodPost, "/reset", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	creds.redeemErr = &service.ValidationError{Msg: "New passwords do not match."}
	rec = jsonRequest(e, http.MethodPost, "/reset", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "New passwords do not match.", decode(t, rec)["error"])
}

func TestSubmitPublicRecord(t *testing.T) {
	ledger := &stubLedger{}
	h := NewRecordHandler(ledger, zap.NewNop())
	e := echo.New()
	e.POST("/records", h.SubmitPublic)

	rec := jsonRequest(e, http.MethodPost, "/records", `{
        "familyHeadName":"Asha","contactNumber":"98765 43210","numMembers":4,
        "villageName":"Rampur","riceReceivedKg":18.5,"distributionDate":"2024-03-05","notes":"late"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Asha", ledger.got.Family.HeadName)
	assert.Equal(t, "98765 43210", ledger.got.Family.ContactNumber)
	assert.Equal(t, 4, ledger.got.Family.NumMembers)
	assert.True(t, ledger.got.RiceReceivedKg.Equal(decimal.RequireFromString("18.5")))
	assert.Equal(t, "2024-03-05", ledger.got.DistributionDate.String())

	ledger.err = &service.ValidationError{Msg: "numMembers must be at least 1"}
	rec = jsonRequest(e, http.MethodPost, "/records", `{"numMembers":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "numMembers must be at least 1", decode(t, rec)["error"])

	rec = jsonRequest(e, http.MethodPost, "/records", `{"distributionDate":"05/03/2024"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRecordsParsesQuery(t *testing.T) {
	ledger := &stubLedger{}
	h := NewRecordHandler(ledger, zap.NewNop())
	e := echo.New()
	e.GET("/records", h.List)

	rec := jsonRequest(e, http.MethodGet, "/records?year=2024&month=3&page=-2&size=500&sort=distributionDate,desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ledger.query.Year)
	require.NotNil(t, ledger.query.Month)
	assert.Equal(t, 2024, *ledger.query.Year)
	assert.Equal(t, 3, *ledger.query.Month)
	assert.Equal(t, 0, ledger.query.Page.Index)
	assert.Equal(t, model.MaxPageSize, ledger.query.Page.Size)
	assert.Equal(t, model.Sort{Field: "distributionDate", Desc: true}, ledger.query.Page.Sort)

	rec = jsonRequest(e, http.MethodGet, "/records", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, ledger.query.Year)
	assert.Equal(t, model.DefaultPageSize, ledger.query.Page.Size)

	assert.Equal(t, http.StatusBadRequest, jsonRequest(e, http.MethodGet, "/records?year=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, jsonRequest(e, http.MethodGet, "/records?sort=id,sideways", "").Code)

	ledger.err = errors.New("boom")
	rec = jsonRequest(e, http.MethodGet, "/records", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode(t, rec)["error"])
}

func TestExportRecords(t *testing.T) {
	ledger := &stubLedger{exported: []model.DistributionRecordView{{
		ID:               1,
		RiceReceivedKg:   decimal.RequireFromString("10"),
		DistributionDate: model.NewDate(2024, time.March, 1),
		Family:           model.Family{HeadName: "Asha", NumMembers: 2},
		EntitlementKg:    decimal.RequireFromString("10"),
		DeficitKg:        decimal.Zero,
	}}}
	h := NewRecordHandler(ledger, zap.NewNop())
	e := echo.New()
	e.GET("/export", h.Export)

	rec := jsonRequest(e, http.MethodGet, "/export?year=2024&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "rice_report_2024_3.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestFamilyHistory(t *testing.T) {
	ledger := &stubLedger{}
	h := NewRecordHandler(ledger, zap.NewNop())
	e := echo.New()
	e.GET("/families/:familyId/history", h.FamilyHistory)

	rec := jsonRequest(e, http.MethodGet, "/families/12/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(12), ledger.family)
	assert.Equal(t, "[]\n", rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, jsonRequest(e, http.MethodGet, "/families/x/history", "").Code)
}

func TestFamilyByContact(t *testing.T) {
	h := NewFamilyHandler(stubRegistry{families: map[string]model.Family{
		"9876543210": {ID: 1, HeadName: "Asha", UniqueFamilyID: "FAM-00000001"},
	}}, zap.NewNop())
	e := echo.New()
	e.GET("/by-contact/:contactNumber", h.ByContact)
	e.GET("/families", h.List)

	rec := jsonRequest(e, http.MethodGet, "/by-contact/9876543210", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FAM-00000001", decode(t, rec)["uniqueFamilyId"])

	rec = jsonRequest(e, http.MethodGet, "/by-contact/1111111111", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "Family not found for this contact number: 1111111111")

	rec = jsonRequest(e, http.MethodGet, "/families?page=0&size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(5), body["size"])
	assert.Equal(t, true, body["empty"])
}

func TestFamilyQRCode(t *testing.T) {
	h := NewFamilyHandler(stubRegistry{families: map[string]model.Family{
		"9876543210": {ID: 4, UniqueFamilyID: "FAM-00000004"},
	}}, zap.NewNop())
	e := echo.New()
	e.GET("/families/:familyId/qrcode", h.QRCode)

	rec := jsonRequest(e, http.MethodGet, "/families/4/qrcode", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "family_4_qrcode.png")
	assert.Equal(t, "\x89PNG FAM-00000004", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, jsonRequest(e, http.MethodGet, "/families/5/qrcode", "").Code)
	assert.Equal(t, http.StatusBadRequest, jsonRequest(e, http.MethodGet, "/families/0/qrcode", "").Code)
}

func grievanceForm(t *testing.T, grievance string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if grievance != "" {
		require.NoError(t, w.WriteField("grievance", grievance))
	}
	if image != nil {
		fw, err := w.CreateFormFile("image", "photo.PNG")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestFileGrievance(t *testing.T) {
	svc := &stubGrievances{}
	h := NewGrievanceHandler(svc, zap.NewNop())
	e := echo.New()
	e.POST("/grievances", h.FilePublic)

	post := func(body *bytes.Buffer, ct string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/grievances", body)
		req.Header.Set(echo.HeaderContentType, ct)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	body, ct := grievanceForm(t, `{"subject":"Short weight","content":"got 8kg","contactInfo":"98765"}`, []byte("\x89PNG data"))
	rec := post(body, ct)
	require.Equal(t, http.StatusCreated, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "GRV-ABCD1234", out["trackingId"])
	assert.Equal(t, "http://example.com/uploads/stored.png", out["imageUrl"])
	require.NotNil(t, svc.filed.Image)
	assert.Equal(t, "photo.PNG", svc.filed.Image.Filename)
	assert.Equal(t, "98765", svc.filed.ContactInfo)

	body, ct = grievanceForm(t, `{"subject":"No image","content":"x"}`, nil)
	rec = post(body, ct)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, hasURL := decode(t, rec)["imageUrl"]
	assert.False(t, hasURL)

	body, ct = grievanceForm(t, "", nil)
	assert.Equal(t, http.StatusBadRequest, post(body, ct).Code)

	body, ct = grievanceForm(t, `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, post(body, ct).Code)

	body, ct = grievanceForm(t, `{"subject":" ","content":"x"}`, nil)
	rec = post(body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "subject is required", decode(t, rec)["error"])
}

func TestGrievanceStatusAndAdmin(t *testing.T) {
	svc := &stubGrievances{}
	h := NewGrievanceHandler(svc, zap.NewNop())
	e := echo.New()
	e.GET("/status/:trackingId", h.Status)
	e.GET("/admin", h.List)
	e.PUT("/admin/:id/status", h.SetStatus)
	e.POST("/admin/:id/comments", h.AddComment)

	rec := jsonRequest(e, http.MethodGet, "/status/GRV-ABCD1234", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://example.com/uploads/a.jpg", decode(t, rec)["imageUrl"])

	assert.Equal(t, http.StatusNotFound, jsonRequest(e, http.MethodGet, "/status/GRV-00000000", "").Code)

	rec = jsonRequest(e, http.MethodGet, "/admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.newestFirst)
	content := decode(t, rec)["content"].([]any)
	assert.Equal(t, "http://example.com/uploads/b.png", content[0].(map[string]any)["imageUrl"])

	rec = jsonRequest(e, http.MethodGet, "/admin?sort=createdAt,asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.newestFirst)

	assert.Equal(t, http.StatusBadRequest, jsonRequest(e, http.MethodGet, "/admin?sort=subject", "").Code)

	rec = jsonRequest(e, http.MethodPut, "/admin/4/status", `{"status":"Resolved"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Resolved", svc.status)

	rec = jsonRequest(e, http.MethodPost, "/admin/4/comments", `{"content":"checked"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "checked", decode(t, rec)["content"])
}

func TestAnnouncementsInvalidateCache(t *testing.T) {
	cache := &countingCache{}
	h := NewAnnouncementHandler(stubAnnouncements{}, cache, zap.NewNop())
	e := echo.New()
	e.GET("/public", h.ListPublic)
	e.POST("/admin", h.Create)
	e.PUT("/admin/:id", h.Update)
	e.DELETE("/admin/:id", h.Delete)

	rec := jsonRequest(e, http.MethodGet, "/public?size=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["size"])
	assert.Equal(t, 0, cache.n)

	rec = jsonRequest(e, http.MethodPost, "/admin", `{"title":"Next date","content":"5th"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, cache.n)

	assert.Equal(t, http.StatusOK, jsonRequest(e, http.MethodPut, "/admin/9", `{"title":"a","content":"b"}`).Code)
	assert.Equal(t, 2, cache.n)

	assert.Equal(t, http.StatusNotFound, jsonRequest(e, http.MethodPut, "/admin/8", `{"title":"a","content":"b"}`).Code)
	assert.Equal(t, 2, cache.n)

	assert.Equal(t, http.StatusNoContent, jsonRequest(e, http.MethodDelete, "/admin/9", "").Code)
	assert.Equal(t, 3, cache.n)
}

func TestChatbotAsk(t *testing.T) {
	h := NewChatbotHandler(stubBot{}, zap.NewNop())
	e := echo.New()
	e.POST("/ask", h.Ask)

	rec := jsonRequest(e, http.MethodPost, "/ask", `{"question":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "echo: hello", decode(t, rec)["answer"])

	assert.Equal(t, http.StatusBadRequest, jsonRequest(e, http.MethodPost, "/ask", `{"question":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, jsonRequest(e, http.MethodPost, "/ask", `{}`).Code)
}

func TestUploads(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "pic.png", []byte("png-bytes"), "image/png"))

	h := NewUploadHandler(store, zap.NewNop())
	e := echo.New()
	e.GET("/uploads/:name", h.Get)

	rec := jsonRequest(e, http.MethodGet, "/uploads/pic.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "png-bytes", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, jsonRequest(e, http.MethodGet, "/uploads/missing.png", "").Code)
	assert.Equal(t, http.StatusNotFound, jsonRequest(e, http.MethodGet, "/uploads/..pic.png", "").Code)
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/ok", Health(failingPinger{}))
	e.GET("/down", Health(failingPinger{err: errors.New("down")}))

	assert.Equal(t, http.StatusOK, jsonRequest(e, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, jsonRequest(e, http.MethodGet, "/down", "").Code)
}
