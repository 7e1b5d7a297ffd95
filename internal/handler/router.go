package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/service"
	"github.com/lewismosage/acna-sub000/internal/upload"
)

// Deps bundles everything the router needs.
type Deps struct {
	Workshops *service.WorkshopService
	Payments  *service.PaymentService
	News      *service.NewsService
	Auth      *service.AuthService
	Uploads   *upload.Service
	Metrics   *Metrics
	Logger    *zap.Logger
}

// NewRouter builds the full API router. Read endpoints and the registration
// intake are public; everything that mutates content requires a bearer
// token. The webhook authenticates itself through its signature instead.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(d.Logger))
	r.Use(CORS)
	r.Use(d.Metrics.Middleware)

	r.Get("/health", HealthCheck)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	wh := NewWorkshopHandler(d.Workshops, d.Metrics, d.Logger)
	ph := NewPaymentHandler(d.Payments, d.Metrics, d.Logger)
	nh := NewNewsHandler(d.News, d.Logger)
	ah := NewAuthHandler(d.Auth, d.Logger)
	uh := NewUploadHandler(d.Uploads, d.Logger)
	requireAuth := RequireAuth(d.Auth)

	r.Route("/workshops", func(r chi.Router) {
		r.Get("/", wh.List)
		r.Get("/{id}", wh.Get)
		r.Post("/{id}/register", wh.Register)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", wh.Create)
			r.Patch("/{id}/status", wh.UpdateStatus)
			r.Post("/{id}/featured", wh.ToggleFeatured)
			r.Get("/{id}/registrations", wh.ListRegistrations)
		})
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/checkout", ph.CreateCheckout)
		r.Post("/webhook", ph.Webhook)
		r.Get("/{sessionID}/invoice", ph.Invoice)
	})

	r.Route("/news", func(r chi.Router) {
		r.Get("/", nh.List)
		r.Get("/{id}", nh.Get)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/all", nh.ListAll)
			r.Post("/", nh.Create)
			r.Put("/{id}", nh.Update)
			r.Patch("/{id}/status", nh.UpdateStatus)
			r.Post("/{id}/featured", nh.ToggleFeatured)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", ah.Register)
		r.Post("/login", ah.Login)
	})

	r.With(requireAuth).Post("/uploads", uh.Upload)

	return r
}
