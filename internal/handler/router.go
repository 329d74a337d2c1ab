package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/mock-interview/backend/internal/handler/admin"
	"github.com/zhouzirui/mock-interview/backend/internal/handler/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/handler/live"
	"github.com/zhouzirui/mock-interview/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/mock-interview/backend/internal/middleware"
	"github.com/zhouzirui/mock-interview/backend/internal/service/generator"
	interviewService "github.com/zhouzirui/mock-interview/backend/internal/service/interview"
	"github.com/zhouzirui/mock-interview/backend/pkg/utils"
)

// RouterOptions carries the values fixed at startup.
type RouterOptions struct {
	AllowedOrigins []string
	Info           admin.Info
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svc *interviewService.Service, gen *generator.Generator, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middlewarePkg.Recoverer)
	r.Use(middlewarePkg.CORS(opts.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	interview.New(svc).RegisterRoutes(r)
	admin.New(gen, opts.Info).RegisterRoutes(r)
	live.NewWebSocketHandler(svc).RegisterRoutes(r)

	r.Handle("/metrics", metrics.Handler())

	return r
}
