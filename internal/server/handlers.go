package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/goenhance/internal/app"
	"github.com/hyperifyio/goenhance/internal/enhance"
	"github.com/hyperifyio/goenhance/internal/render"
)

type enhanceBody struct {
	URL   string `json:"url" validate:"required,url"`
	Mode  string `json:"mode" validate:"omitempty,oneof=summarize expand both"`
	Level string `json:"level" validate:"omitempty,oneof=brief detailed"`
	// Validate defaults to true when omitted.
	Validate *bool `json:"validate"`
}

type pdfBody struct {
	Meta   render.Meta    `json:"meta"`
	Output enhance.Result `json:"output"`
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": app.BuildVersion})
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEnhanceBody)
	var body enhanceBody
	if !s.decode(w, r, &body) {
		return
	}
	mode, _ := enhance.ParseMode(body.Mode)
	level, _ := enhance.ParseLevel(body.Level)
	validate := true
	if body.Validate != nil {
		validate = *body.Validate
	}

	resp, err := s.svc.Enhance(r.Context(), app.EnhanceRequest{
		URL:      body.URL,
		Mode:     mode,
		Level:    level,
		Validate: validate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPDFBody)
	var body pdfBody
	if !s.decode(w, r, &body) {
		return
	}
	doc, err := s.svc.RenderPDF(body.Meta, body.Output)
	if err != nil {
		writeError(w, r, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": render.Filename(body.Meta.Title)})
	if disposition == "" {
		disposition = `attachment; filename="enhanced.pdf"`
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// decode reads and validates a JSON body, answering the request itself on
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Detail: err.Error()})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request", Detail: validationDetail(err)})
		return false
	}
	return true
}

func validationDetail(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err.Error()
	}
	fe := ve[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: must satisfy %s", fe.Field(), fe.Tag())
}

type userMessager interface {
	UserMessage() string
}

// writeError maps pipeline failures to status codes. The user message is
// fixed per kind; the cause goes to detail and the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var (
		fe *app.FetchError
		ee *app.EnhancementError
		re *app.RenderError
	)
	switch {
	case errors.As(err, &fe):
		status = http.StatusBadRequest
	case errors.As(err, &ee):
		status = http.StatusBadGateway
	case errors.As(err, &re):
		status = http.StatusInternalServerError
	}
	msg := "internal error"
	var um userMessager
	if errors.As(err, &um) {
		msg = um.UserMessage()
	}
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg(msg)
	writeJSON(w, status, errorBody{Error: msg, Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
