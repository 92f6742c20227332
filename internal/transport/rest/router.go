package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tripdesk/backoffice/internal/transport/middleware"
)

// RouterDeps are the handlers and cross-cutting middleware the router mounts.
type RouterDeps struct {
	Health  *HealthHandler
	Import  *ImportHandler
	Export  *ExportHandler
	Admin   *AdminHandler
	Metrics http.Handler

	// Global wraps every route (request id, logging, recovery, CORS, auth).
	Global middleware.Middleware
	// UploadLimit throttles import uploads. Nil disables it.
	UploadLimit middleware.Middleware
}

// NewRouter builds the HTTP handler tree.
func NewRouter(d RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/live", d.Health.Live).Methods(http.MethodGet)
	r.HandleFunc("/ready", d.Health.Ready).Methods(http.MethodGet)
	r.HandleFunc("/health", d.Health.Health).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	read := api.NewRoute().Subrouter()
	read.Use(mux.MiddlewareFunc(middleware.Authenticated()))
	read.HandleFunc("/import/templates/{entity}", d.Export.Template).Methods(http.MethodGet)
	read.HandleFunc("/export/{entity}", d.Export.Export).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(mux.MiddlewareFunc(middleware.AdminOnly()))
	if d.UploadLimit != nil {
		admin.Handle("/import/{entity}", d.UploadLimit(http.HandlerFunc(d.Import.Import))).Methods(http.MethodPost)
	} else {
		admin.HandleFunc("/import/{entity}", d.Import.Import).Methods(http.MethodPost)
	}
	admin.HandleFunc("/admin/audit", d.Admin.AuditLog).Methods(http.MethodGet)

	var h http.Handler = r
	if d.Global != nil {
		h = d.Global(h)
	}
	return h
}
