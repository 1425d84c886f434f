package rest

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigin string
	AuthRateLimit float64 // sign-in and sign-up requests per second per IP, 0 disables
	AuthRateBurst int

	// Location sets the day and month boundaries of /api/stats. UTC when nil.
	Location *time.Location
}

type Handler struct {
	auth     AuthService
	catalog  CatalogService
	progress ProgressService
	reset    ResetService
	metrics  Metrics
	exporter http.Handler
	logger   *zap.Logger
	limiter  *ipLimiter
	opts     Options

	now func() time.Time
}

// NewHandler wires the services. metrics and exporter may be nil.
func NewHandler(
	auth AuthService,
	catalog CatalogService,
	progress ProgressService,
	reset ResetService,
	metrics Metrics,
	exporter http.Handler,
	logger *zap.Logger,
	opts Options,
) *Handler {
	h := &Handler{
		auth:     auth,
		catalog:  catalog,
		progress: progress,
		reset:    reset,
		metrics:  metrics,
		exporter: exporter,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
	if h.opts.Location == nil {
		h.opts.Location = time.UTC
	}
	if opts.AuthRateLimit > 0 {
		h.limiter = newIPLimiter(opts.AuthRateLimit, max(1, opts.AuthRateBurst))
	}
	return h
}

// Router builds the HTTP handler with every route and middleware applied.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(h.requestID, h.logRequests)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if h.exporter != nil {
		r.Handle("/metrics", h.exporter).Methods(http.MethodGet)
	}

	r.HandleFunc("/functions/v1/simple-monthly-reset", h.MonthlyReset).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", h.rateLimited(h.SignUp)).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", h.rateLimited(h.SignIn)).Methods(http.MethodPost)
	api.HandleFunc("/users/count", h.UserCount).Methods(http.MethodGet)
	api.HandleFunc("/boulders", h.ListBoulders).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(h.requireAuth)
	authed.HandleFunc("/auth/signout", h.SignOut).Methods(http.MethodPost)
	authed.HandleFunc("/auth/session", h.Session).Methods(http.MethodGet)
	authed.HandleFunc("/progress", h.Ledger).Methods(http.MethodGet)
	authed.HandleFunc("/progress/{boulderID}", h.SetCount).Methods(http.MethodPut)
	authed.HandleFunc("/progress/{boulderID}/increment", h.Increment).Methods(http.MethodPost)
	authed.HandleFunc("/progress/{boulderID}/decrement", h.Decrement).Methods(http.MethodPost)
	authed.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)

	return cors(h.opts.AllowedOrigin, r)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"reset_state": string(h.reset.State()),
	})
}
