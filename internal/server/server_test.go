package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/goenhance/internal/app"
	"github.com/hyperifyio/goenhance/internal/enhance"
	"github.com/hyperifyio/goenhance/internal/render"
)

type fakeService struct {
	lastReq  app.EnhanceRequest
	lastMeta render.Meta
	lastOut  enhance.Result
	resp     app.EnhanceResponse
	pdf      []byte
	err      error
}

func (f *fakeService) Enhance(ctx context.Context, req app.EnhanceRequest) (app.EnhanceResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeService) RenderPDF(meta render.Meta, out enhance.Result) ([]byte, error) {
	f.lastMeta, f.lastOut = meta, out
	return f.pdf, f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var eb errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eb))
	return eb
}

func TestHealth(t *testing.T) {
	rec := do(t, New(&fakeService{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestID_ReusesValidIncomingID(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	New(&fakeService{}).ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestEnhance_DefaultsAndResponse(t *testing.T) {
	svc := &fakeService{resp: app.EnhanceResponse{
		Meta:   render.Meta{URL: "https://example.com", Title: "T", Timestamp: "1700000000000"},
		Output: enhance.Result{Summary: "S"},
	}}
	rec := do(t, New(svc), http.MethodPost, "/api/enhance", `{"url":"https://example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, app.EnhanceRequest{URL: "https://example.com", Mode: enhance.ModeBoth, Level: enhance.LevelDetailed, Validate: true}, svc.lastReq)
	assert.JSONEq(t, `{"meta":{"url":"https://example.com","title":"T","timestamp":1700000000000},"output":{"summary":"S","expanded":"","validation":""}}`, rec.Body.String())
}

func TestEnhance_ExplicitParameters(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, New(svc), http.MethodPost, "/api/enhance", `{"url":"https://example.com","mode":"summarize","level":"brief","validate":false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, app.EnhanceRequest{URL: "https://example.com", Mode: enhance.ModeSummarize, Level: enhance.LevelBrief, Validate: false}, svc.lastReq)
}

func TestEnhance_RejectsInvalidRequests(t *testing.T) {
	cases := map[string]string{
		"missing url": `{}`,
		"bad url":     `{"url":"not a url"}`,
		"bad mode":    `{"url":"https://example.com","mode":"rewrite"}`,
		"bad level":   `{"url":"https://example.com","level":"huge"}`,
		"not json":    `{"url":`,
	}
	for name, body := range cases {
		svc := &fakeService{}
		rec := do(t, New(svc), http.MethodPost, "/api/enhance", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Empty(t, svc.lastReq.URL, name)
	}
}

func TestEnhance_BodyTooLarge(t *testing.T) {
	body := `{"url":"https://example.com/` + strings.Repeat("a", maxEnhanceBody) + `"}`
	rec := do(t, New(&fakeService{}), http.MethodPost, "/api/enhance", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestEnhance_ErrorMapping(t *testing.T) {
	cause := errors.New("cause")
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&app.FetchError{URL: "u", Err: cause}, http.StatusBadRequest, "could not retrieve or parse the source page"},
		{&app.EnhancementError{Err: cause}, http.StatusBadGateway, "enhancement service failed"},
		{errors.New("other"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		rec := do(t, New(&fakeService{err: tc.err}), http.MethodPost, "/api/enhance", `{"url":"https://example.com"}`)
		assert.Equal(t, tc.status, rec.Code)
		eb := decodeError(t, rec)
		assert.Equal(t, tc.msg, eb.Error)
		assert.Equal(t, tc.err.Error(), eb.Detail)
	}
}

func TestPDF_Attachment(t *testing.T) {
	svc := &fakeService{pdf: []byte("%PDF-1.3 fake")}
	payload := `{"meta":{"url":"https://example.com","title":"News/Today","timestamp":"not-a-number"},"output":{"summary":"S","validation":["a","b"]}}`
	rec := do(t, New(svc), http.MethodPost, "/api/pdf", payload)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	disp, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disp)
	assert.Equal(t, "News_Today.pdf", params["filename"])
	assert.True(t, bytes.Equal(svc.pdf, rec.Body.Bytes()))

	assert.Equal(t, render.Timestamp("not-a-number"), svc.lastMeta.Timestamp)
	assert.Equal(t, enhance.Result{Summary: "S", Validation: "a\nb"}, svc.lastOut)
}

func TestPDF_DefaultFilenameAndRenderError(t *testing.T) {
	svc := &fakeService{pdf: []byte("%PDF")}
	rec := do(t, New(svc), http.MethodPost, "/api/pdf", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "enhanced.pdf", params["filename"])

	svc = &fakeService{err: &app.RenderError{Err: errors.New("boom")}}
	rec = do(t, New(svc), http.MethodPost, "/api/pdf", `{"meta":{},"output":{}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "could not generate the document", decodeError(t, rec).Error)
}

func TestPDF_WithRealRenderer(t *testing.T) {
	a := &realRenderService{r: render.New()}
	payload := `{"meta":{"url":"https://example.com","title":"Report","timestamp":1700000000000},"output":{"summary":"` + strings.Repeat("Hello world. ", 400) + `"}}`
	rec := do(t, New(a), http.MethodPost, "/api/pdf", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

type realRenderService struct{ r *render.Renderer }

func (s *realRenderService) Enhance(ctx context.Context, req app.EnhanceRequest) (app.EnhanceResponse, error) {
	return app.EnhanceResponse{}, nil
}

func (s *realRenderService) RenderPDF(meta render.Meta, out enhance.Result) ([]byte, error) {
	return s.r.Render(meta, out)
}

func TestRecoverer(t *testing.T) {
	rec := do(t, New(panicService{}), http.MethodPost, "/api/enhance", `{"url":"https://example.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type panicService struct{}

func (panicService) Enhance(ctx context.Context, req app.EnhanceRequest) (app.EnhanceResponse, error) {
	panic("boom")
}

func (panicService) RenderPDF(meta render.Meta, out enhance.Result) ([]byte, error) {
	panic("boom")
}
