package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
	articleuc "github.com/kbase-cloud/kbsearch/internal/usecase/article"
	healthuc "github.com/kbase-cloud/kbsearch/internal/usecase/health"
	intakeuc "github.com/kbase-cloud/kbsearch/internal/usecase/intake"
)

// Service contracts consumed by the façade. Narrow interfaces keep the
// handlers testable with struct fakes.
type articleService interface {
	Create(ctx context.Context, in articleuc.CreateInput) (domain.Article, error)
	Update(ctx context.Context, id string, in articleuc.UpdateInput) (domain.Article, error)
	ReplaceTags(ctx context.Context, id string, names []string) (domain.Article, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string, editor bool) (domain.Article, error)
	List(ctx context.Context, page, limit int, editor bool) ([]domain.Article, error)
}

type tagService interface {
	Create(ctx context.Context, name string) (domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
}

type searchService interface {
	Search(ctx context.Context, query string, limit int, threshold float64) ([]domain.SearchResult, error)
}

type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

type intakeService interface {
	DraftReply(ctx context.Context, ticketText string) (intakeuc.Draft, error)
}

// SearchDefaults are applied when the dispatch body omits search parameters.
type SearchDefaults struct {
	Limit     int
	Threshold float64
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server is the dispatch façade: a single envelope-RPC endpoint in front of
// the article, tag, and search services, plus health and metrics routes.
type Server struct {
	articles      articleService
	tags          tagService
	search        searchService
	intake        intakeService
	health        healthService
	auth          *Authenticator
	defaults      SearchDefaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the façade.
func NewServer(
	articles articleService,
	tags tagService,
	search searchService,
	intake intakeService,
	health healthService,
	auth *Authenticator,
	defaults SearchDefaults,
	logger *zap.Logger,
) *Server {
	if defaults.Limit <= 0 {
		defaults.Limit = 10
	}
	if defaults.Threshold == 0 {
		defaults.Threshold = 0.5
	}
	s := &Server{
		articles: articles,
		tags:     tags,
		search:   search,
		intake:   intake,
		health:   health,
		auth:     auth,
		defaults: defaults,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrArticleNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrTagNotFound, http.StatusNotFound),
		invalidArgumentHandler,
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrPersistenceFailure, http.StatusInternalServerError),
	}
	return s
}

// Routes mounts the façade on a router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/dispatch", s.Dispatch)
	r.Post("/api/v1/intake/draft-reply", s.DraftReply)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// HealthCheck handles GET /health.
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

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrArticleNotFound,
		domain.ErrTagNotFound,
		domain.ErrUnauthorized,
		domain.ErrEmbeddingProviderError,
		domain.ErrPersistenceFailure,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, safeDomainMessage(err))
		return true
	}
}

// invalidArgumentHandler surfaces the full validation message. These errors
// are constructed in the use case layer and safe to show.
func invalidArgumentHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidArgument) {
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
