package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bantuankita/bantuankita/config"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/inbound"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const maxBodySize = 64 << 10

// LevelController changes the log level at runtime
type LevelController interface {
	UpdateLevel(level string) error
	Level() string
}

// Handler serves the REST API
type Handler struct {
	offers    inbound.OfferService
	removals  inbound.RemovalService
	callbacks inbound.CallbackService
	stats     inbound.StatsService
	notifier  outbound.ChatNotifier
	store     outbound.DocumentStore
	config    *config.Config
	logger    outbound.Logger

	levels     LevelController
	liveFeed   http.Handler
	configPath string
}

func NewHandler(
	offers inbound.OfferService,
	removals inbound.RemovalService,
	callbacks inbound.CallbackService,
	stats inbound.StatsService,
	notifier outbound.ChatNotifier,
	store outbound.DocumentStore,
	cfg *config.Config,
	logger outbound.Logger,
) *Handler {
	return &Handler{
		offers:    offers,
		removals:  removals,
		callbacks: callbacks,
		stats:     stats,
		notifier:  notifier,
		store:     store,
		config:    cfg,
		logger:    logger,
	}
}

// SetLevelController enables the runtime log level route
func (h *Handler) SetLevelController(levels LevelController) {
	h.levels = levels
}

// SetLiveFeed mounts the admin event stream
func (h *Handler) SetLiveFeed(feed http.Handler) {
	h.liveFeed = feed
}

// SetConfigPath is reported by the settings route
func (h *Handler) SetConfigPath(path string) {
	h.configPath = path
}

// SetupRoutes registers the public, webhook and admin routes on router.
// Admin routes pass through auth before the moderator check.
func (h *Handler) SetupRoutes(router *mux.Router, authHandler *AuthHandler, auth *AuthMiddleware) {
	api := router.PathPrefix("/api").Subrouter()

	// public
	api.HandleFunc("/health", h.health).Methods(http.MethodGet)
	api.HandleFunc("/submit-offer", h.submitOffer).Methods(http.MethodPost)
	api.HandleFunc("/offers", h.listOffers).Methods(http.MethodGet)
	api.HandleFunc("/request-removal", h.requestRemoval).Methods(http.MethodPost)

	// telegram
	api.HandleFunc("/telegram-webhook", h.telegramWebhookStatus).Methods(http.MethodGet)
	api.HandleFunc("/telegram-webhook", h.telegramWebhook).Methods(http.MethodPost)

	// auth
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/bootstrap", authHandler.Bootstrap).Methods(http.MethodPost)
	api.Handle("/auth/profile", auth.Middleware(http.HandlerFunc(authHandler.GetProfile))).Methods(http.MethodGet)

	protected := func(fn http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireModerator(fn))
	}
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireRole(model.RoleAdmin)(fn))
	}

	api.Handle("/setup-webhook", adminOnly(h.setWebhook)).Methods(http.MethodPost)
	api.Handle("/setup-webhook", protected(h.getWebhookInfo)).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware, auth.RequireModerator)

	admin.HandleFunc("/offers", h.adminListOffers).Methods(http.MethodGet)
	admin.HandleFunc("/offers/{id}", h.adminGetOffer).Methods(http.MethodGet)
	admin.HandleFunc("/offers/{id}", h.adminDeleteOffer).Methods(http.MethodDelete)
	admin.HandleFunc("/approve", h.approveOffer).Methods(http.MethodPost)
	admin.HandleFunc("/reject", h.rejectOffer).Methods(http.MethodPost)
	admin.HandleFunc("/stats", h.offerStats).Methods(http.MethodGet)

	admin.HandleFunc("/removal-requests", h.listRemovalRequests).Methods(http.MethodGet)
	admin.HandleFunc("/removal-requests/approve", h.approveRemoval).Methods(http.MethodPost)
	admin.HandleFunc("/removal-requests/reject", h.rejectRemoval).Methods(http.MethodPost)
	admin.HandleFunc("/removal-requests/reconcile", h.reconcileRemovals).Methods(http.MethodPost)

	admin.HandleFunc("/dashboard/current", h.currentStats).Methods(http.MethodGet)
	admin.HandleFunc("/dashboard/history", h.statsHistory).Methods(http.MethodGet)

	admin.HandleFunc("/settings", h.getSettings).Methods(http.MethodGet)
	admin.Handle("/settings/log-level", auth.RequireRole(model.RoleAdmin)(http.HandlerFunc(h.updateLogLevel))).Methods(http.MethodPut)

	admin.Handle("/users", auth.RequireRole(model.RoleAdmin)(http.HandlerFunc(authHandler.ListUsers))).Methods(http.MethodGet)
	admin.Handle("/users", auth.RequireRole(model.RoleAdmin)(http.HandlerFunc(authHandler.CreateUser))).Methods(http.MethodPost)

	if h.liveFeed != nil {
		admin.Handle("/ws", h.liveFeed)
	}
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeBody decodes a JSON request body. An empty body leaves dest untouched.
func decodeBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
