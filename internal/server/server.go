// Package server exposes the conversion pipeline over HTTP.
//
// The API is deliberately small: one conversion endpoint, one page-listing
// endpoint, and a health check. Requests carry the source file content
// inline; the server never touches the filesystem.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/flowmaid/pkg/buildinfo"
	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/mxgraph"
	"github.com/matzehuels/flowmaid/pkg/pipeline"
)

// maxBodySize bounds request bodies. Diagram files are small; anything
// larger is almost certainly not one.
const maxBodySize = 16 << 20

// Server handles HTTP conversion requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server around a runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Post("/pages", s.handlePages)
	})
	return r
}

// ConvertRequest is the body of POST /v1/convert.
type ConvertRequest struct {
	// Content is the source file content, exactly as stored on disk.
	Content string `json:"content"`

	// Options configures the conversion.
	Options pipeline.Options `json:"options"`
}

// PagesRequest is the body of POST /v1/pages.
type PagesRequest struct {
	Content string `json:"content"`
}

// PagesResponse lists the page names of a document.
type PagesResponse struct {
	Pages []string `json:"pages"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Content == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "content is required"))
		return
	}

	result, err := s.runner.Convert(r.Context(), req.Content, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	var req PagesRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Content == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "content is required"))
		return
	}

	names, err := mxgraph.ListPages(req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PagesResponse{Pages: names})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding request body"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	s.writeJSON(w, statusForCode(code), errorResponse{Error: errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

// statusForCode maps error codes to HTTP statuses: client mistakes are 400,
// documents we cannot convert are 422, everything else is 500.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidOption,
		errors.ErrCodeInvalidConfig, errors.ErrCodePageOutOfRange:
		return http.StatusBadRequest
	case errors.ErrCodeDecodeFailed, errors.ErrCodeParseFailed,
		errors.ErrCodeCyclicHierarchy, errors.ErrCodeDanglingEdge,
		errors.ErrCodeUnsupportedElement, errors.ErrCodeReservedWord,
		errors.ErrCodeUnrecognizedStyle:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestIDHeader carries the request ID in both directions.
const requestIDHeader = "X-Request-ID"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", w.Header().Get(requestIDHeader),
			"duration", time.Since(start))
	})
}
