package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/otakulab/anirec/internal/domain"
	discoveruc "github.com/otakulab/anirec/internal/usecase/discover"
	healthuc "github.com/otakulab/anirec/internal/usecase/health"
)

const maxDiscoverLimit = 100

// Response error codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeCatalogNotReady  = "catalog_not_ready"
	codeInternalError    = "internal_error"
)

// Suggester completes partial titles.
type Suggester interface {
	Suggest(ctx context.Context, query string) []string
}

// Recommender ranks catalog entries against an exact title.
type Recommender interface {
	Recommend(ctx context.Context, title string) ([]domain.Recommendation, error)
}

// Discoverer matches catalog entries to user-chosen filters.
type Discoverer interface {
	Discover(ctx context.Context, f discoveruc.Filters) ([]domain.DiscoveryResult, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server exposes the search API and the embedded UI over chi.
type Server struct {
	suggest       Suggester
	recommend     Recommender
	discover      Discoverer
	health        HealthChecker
	ui            http.Handler
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. ui serves the browser client and its
// static assets; it receives every request the API routes do not claim.
func NewServer(
	suggest Suggester,
	recommend Recommender,
	discover Discoverer,
	health HealthChecker,
	ui http.Handler,
	logger *zap.Logger,
) *Server {
	s := &Server{
		suggest:   suggest,
		recommend: recommend,
		discover:  discover,
		health:    health,
		ui:        ui,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrCatalogNotLoaded, http.StatusServiceUnavailable, codeCatalogNotReady),
	}
	return s
}

// Register mounts the server's routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/suggestions", s.Suggestions)
	r.Get("/recommendations", s.Recommendations)
	r.Get("/discover", s.Discover)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	if s.ui != nil {
		r.Handle("/*", s.ui)
	}
}

// Suggestions handles GET /suggestions. The response is always a JSON array
// of titles; an absent or empty query yields an empty array.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	titles := s.suggest.Suggest(r.Context(), query)
	writeJSON(w, http.StatusOK, titles)
}

// Recommendations handles GET /recommendations. Unknown titles produce an
// empty array rather than an error so the client renders its own no-results
// message.
func (s *Server) Recommendations(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		writeJSON(w, http.StatusOK, []domain.Recommendation{})
		return
	}

	recs, err := s.recommend.Recommend(r.Context(), title)
	if err != nil {
		if errors.Is(err, domain.ErrTitleNotFound) {
			s.logger.Info("Recommendation title not in catalog", zap.String("title", title))
			writeJSON(w, http.StatusOK, []domain.Recommendation{})
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recs)
}

// Discover handles GET /discover. Filter parameters repeat
// (?genres=Action&genres=Comedy); limit must be a positive integer.
func (s *Server) Discover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxDiscoverLimit {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				"limit must be an integer between 1 and "+strconv.Itoa(maxDiscoverLimit))
			return
		}
		limit = n
	}

	results, err := s.discover.Discover(r.Context(), discoveruc.Filters{
		Genres:      q["genres"],
		Episodes:    q["episodes"],
		Studios:     q["studios"],
		Ratings:     q["ratings"],
		Description: strings.TrimSpace(q.Get("description")),
		Limit:       limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCatalogNotLoaded,
		domain.ErrTitleNotFound,
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
