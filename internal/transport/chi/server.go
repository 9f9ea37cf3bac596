package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex/internal/domain"
	dombatch "github.com/kailas-cloud/termdex/internal/domain/batch"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/query"
	logpkg "github.com/kailas-cloud/termdex/internal/logger"
	"github.com/kailas-cloud/termdex/internal/transport/httpquery"
	dictionaryuc "github.com/kailas-cloud/termdex/internal/usecase/dictionary"
	healthuc "github.com/kailas-cloud/termdex/internal/usecase/health"
)

const maxBatchSize = 100

// Error codes.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeAlreadyExists    = "already_exists"
	CodeConflict         = "conflict"
	CodeReadOnly         = "read_only"
	CodeNotImplemented   = "not_implemented"
	CodeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListResponse wraps one page of results.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// BatchItem reports one item of a bulk write.
type BatchItem struct {
	Key    string         `json:"key"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse reports a bulk write.
type BatchResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// FixedTermsRequest preloads fixed terms.
type FixedTermsRequest struct {
	IDTs []query.IDT `json:"idts"`
	Z    query.ZSpec `json:"z"`
}

// FixedTermsResponse reports the cache size after a preload.
type FixedTermsResponse struct {
	Cached int `json:"cached"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type itemsRequest[T any] struct {
	Items []T `json:"items"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// Server serves the dictionary over HTTP.
type Server struct {
	dict          *dictionaryuc.Service
	writer        dictionaryuc.Writer
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. writer may be nil for a read-only
// backend; write routes then answer 405.
func NewServer(
	dict *dictionaryuc.Service,
	writer dictionaryuc.Writer,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		dict:   dict,
		writer: writer,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrDictNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists),
		sentinelHandler(domain.ErrHasEntries, http.StatusConflict, CodeConflict),
		sentinelHandler(domain.ErrMissingField, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidTerm, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNoTerms, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrDictMismatch, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrReadOnly, http.StatusMethodNotAllowed, CodeReadOnly),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented),
	}
	return s
}

// Register mounts the routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/dictinfos", s.ListDictInfos)
		r.Post("/dictinfos", s.AddDictInfos)
		r.Patch("/dictinfos", s.UpdateDictInfos)
		r.Delete("/dictinfos", s.DeleteDictInfos)

		r.Get("/entries", s.ListEntries)
		r.Post("/entries", s.AddEntries)
		r.Patch("/entries", s.UpdateEntries)
		r.Delete("/entries", s.DeleteEntries)

		r.Get("/refterms", s.ListRefTerms)
		r.Post("/refterms", s.AddRefTerms)
		r.Delete("/refterms", s.DeleteRefTerms)

		r.Get("/matches", s.GetMatches)
		r.Get("/store/matches", s.FindMatches)
		r.Post("/fixed-terms", s.LoadFixedTerms)
		r.Delete("/fixed-terms", s.ResetFixedTerms)
		r.Post("/data", s.AddData)
	})
}

// Handler returns a router serving only the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// ListDictInfos handles GET /v1/dictinfos.
func (s *Server) ListDictInfos(w http.ResponseWriter, r *http.Request) {
	q, err := httpquery.DecodeDictInfoQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items, err := s.dict.GetDictInfos(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(items))
}

// ListEntries handles GET /v1/entries.
func (s *Server) ListEntries(w http.ResponseWriter, r *http.Request) {
	q, err := httpquery.DecodeEntryQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items, err := s.dict.GetEntries(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(items))
}

// ListRefTerms handles GET /v1/refterms.
func (s *Server) ListRefTerms(w http.ResponseWriter, r *http.Request) {
	q, err := httpquery.DecodeRefTermQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items, err := s.dict.GetRefTerms(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(items))
}

// GetMatches handles GET /v1/matches: normal matches plus fixed-term and
// number matches.
func (s *Server) GetMatches(w http.ResponseWriter, r *http.Request) {
	str, q, err := httpquery.DecodeMatchQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items, err := s.dict.GetMatchesForString(r.Context(), str, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(items))
}

// FindMatches handles GET /v1/store/matches: the backend's normal matches only.
func (s *Server) FindMatches(w http.ResponseWriter, r *http.Request) {
	str, q, err := httpquery.DecodeMatchQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items, err := s.dict.FindMatches(r.Context(), str, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(items))
}

// LoadFixedTerms handles POST /v1/fixed-terms.
func (s *Server) LoadFixedTerms(w http.ResponseWriter, r *http.Request) {
	var req FixedTermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.dict.LoadFixedTerms(r.Context(), req.IDTs, query.EntryQuery{Z: req.Z}); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FixedTermsResponse{Cached: s.dict.FixedTerms().Len()})
}

// ResetFixedTerms handles DELETE /v1/fixed-terms.
func (s *Server) ResetFixedTerms(w http.ResponseWriter, _ *http.Request) {
	s.dict.ResetFixedTerms()
	writeJSON(w, http.StatusOK, FixedTermsResponse{Cached: s.dict.FixedTerms().Len()})
}

// AddDictInfos handles POST /v1/dictinfos.
func (s *Server) AddDictInfos(w http.ResponseWriter, r *http.Request) {
	items, ok := decodeItems[entry.DictInfo](s, w, r)
	if !ok {
		return
	}
	s.writeBatch(w, r, func(ctx context.Context) []dombatch.Result {
		return s.writer.AddDictInfos(ctx, items)
	})
}

// UpdateDictInfos handles PATCH /v1/dictinfos.
func (s *Server) UpdateDictInfos(w http.ResponseWriter, r *http.Request) {
	items, ok := decodeItems[entry.DictInfo](s, w, r)
	if !ok {
		return
	}
	s.writeBatch(w, r, func(ctx context.Context) []dombatch.Result {
		return s.writer.UpdateDictInfos(ctx, items)
	})
}

// DeleteDictInfos handles DELETE /v1/dictinfos.
func (s *Server) DeleteDictInfos(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.decodeIDs(w, r)
	if !ok {
		return
	}
	s.writeBatch(w, r, func(ctx context.Context) []dombatch.Result {
		return s.writer.DeleteDictInfos(ctx, ids)
	})
}

// AddEntries handles POST /v1/entries.
func (s *Server) AddEntries(w http.ResponseWriter, r *http.Request) {
	items, ok := decodeItems[entry.Input](s, w, r)
	if !ok {
		return
	}
	s.writeBatch(w, r, func(ctx context.Context) []dombatch.Result {
		return s.writer.AddEntries(ctx, items)
	})
}

// UpdateEntries handles PATCH /v1/entries.
func (s *Server) UpdateEntries(w http.ResponseWriter, r *http.Request) {
	items, ok := decodeItems[entry.Update](s, w, r)
	if !ok {
		return
	}
	s.writeBatch(w, r, func(ctx context.Context) []dombatch.Result {
		return s.writer.UpdateEntries(ctx, items)
	})
}

// DeleteEntries handles DELETE /v1/entries.
func (s *Server) DeleteEntries(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.decodeIDs(w, r)
	if !ok {
		return
	}
	s.writeBatch(w, r, func(ctx context.Context) []dombatch.Result {
		return s.writer.DeleteEntries(ctx, ids)
	})
}

// AddRefTerms handles POST /v1/refterms.
func (s *Server) AddRefTerms(w http.ResponseWriter, r *http.Request) {
	items, ok := decodeItems[string](s, w, r)
	if !ok {
		return
	}
	s.writeBatch(w, r, func(ctx context.Context) []dombatch.Result {
		return s.writer.AddRefTerms(ctx, items)
	})
}

// DeleteRefTerms handles DELETE /v1/refterms.
func (s *Server) DeleteRefTerms(w http.ResponseWriter, r *http.Request) {
	items, ok := decodeItems[string](s, w, r)
	if !ok {
		return
	}
	s.writeBatch(w, r, func(ctx context.Context) []dombatch.Result {
		return s.writer.DeleteRefTerms(ctx, items)
	})
}

// AddData handles POST /v1/data: dictionaries with nested entries and
// referring terms in one document.
func (s *Server) AddData(w http.ResponseWriter, r *http.Request) {
	if s.writer == nil {
		s.handleDomainError(w, r, domain.ErrReadOnly)
		return
	}
	var data entry.Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.writer.AddDictionaryData(r.Context(), data); err != nil {
		logpkg.FromContextOr(r.Context(), s.logger).Warn("dictionary data rejected", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, CodeValidationFailed, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeItems[T any](s *Server, w http.ResponseWriter, r *http.Request) ([]T, bool) {
	if s.writer == nil {
		s.handleDomainError(w, r, domain.ErrReadOnly)
		return nil, false
	}
	var req itemsRequest[T]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if len(req.Items) == 0 || len(req.Items) > maxBatchSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("items count must be between 1 and %d", maxBatchSize))
		return nil, false
	}
	return req.Items, true
}

func (s *Server) decodeIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	if s.writer == nil {
		s.handleDomainError(w, r, domain.ErrReadOnly)
		return nil, false
	}
	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if len(req.IDs) == 0 || len(req.IDs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("ids count must be between 1 and %d", maxBatchSize))
		return nil, false
	}
	return req.IDs, true
}

func (s *Server) writeBatch(w http.ResponseWriter, r *http.Request, run func(context.Context) []dombatch.Result) {
	results := run(r.Context())

	resp := BatchResponse{Items: make([]BatchItem, len(results))}
	for i, res := range results {
		resp.Items[i] = batchResultToResponse(res)
		if res.Status() == dombatch.StatusOK {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func list[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrNotFound,
		domain.ErrDictNotFound,
		domain.ErrAlreadyExists,
		domain.ErrHasEntries,
		domain.ErrMissingField,
		domain.ErrInvalidTerm,
		domain.ErrNoTerms,
		domain.ErrDictMismatch,
		domain.ErrReadOnly,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// batchResultToResponse keeps the full item message for validation
// failures; anything else is reported as an internal error.
func batchResultToResponse(r dombatch.Result) BatchItem {
	item := BatchItem{
		Key:    r.Key(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		code := batchErrorCode(r.Err())
		msg := r.Err().Error()
		if code == CodeInternalError {
			msg = "internal error"
		}
		item.Error = &ErrorResponse{Code: code, Message: msg}
	}
	return item
}

func batchErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDictNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, domain.ErrHasEntries):
		return CodeConflict
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrInvalidTerm),
		errors.Is(err, domain.ErrNoTerms), errors.Is(err, domain.ErrDictMismatch):
		return CodeValidationFailed
	default:
		return CodeInternalError
	}
}
