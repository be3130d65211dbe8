package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ceramicarte/preventivi-backend/api/controllers"
	"github.com/ceramicarte/preventivi-backend/api/middleware"
	"github.com/ceramicarte/preventivi-backend/internal/catalog"
	"github.com/ceramicarte/preventivi-backend/internal/quotes"
	"github.com/ceramicarte/preventivi-backend/pkg/config"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
	"github.com/ceramicarte/preventivi-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	reg *metrics.Registry,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	catalogService catalog.Service,
	quoteService quotes.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, reg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if reg != nil {
		r.Method(http.MethodGet, "/metrics", reg.Handler())
	}

	r.Route("/api/v1/preventivi", func(r chi.Router) {
		r.Get("/products", controllers.PublicProducts(catalogService, logg))
		r.Get("/packages", controllers.PublicPackages(catalogService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/auth/token", controllers.DevToken(cfg, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(catalogService, logg))
				r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
				r.Get("/{productId}", controllers.AdminGetProduct(catalogService, logg))
				r.Patch("/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(catalogService, logg))
			})

			r.Route("/packages", func(r chi.Router) {
				r.Get("/", controllers.AdminListPackages(catalogService, logg))
				r.Post("/", controllers.AdminCreatePackage(catalogService, logg))
				r.Get("/{packageId}", controllers.AdminGetPackage(catalogService, logg))
				r.Patch("/{packageId}", controllers.AdminUpdatePackage(catalogService, logg))
				r.Delete("/{packageId}", controllers.AdminDeletePackage(catalogService, logg))
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", controllers.AdminListQuotes(quoteService, logg))
				r.Get("/{quoteId}", controllers.AdminGetQuote(quoteService, logg))
				r.Delete("/{quoteId}", controllers.AdminDeleteQuote(quoteService, logg))
				r.Post("/{quoteId}/status", controllers.AdminSetQuoteStatus(quoteService, logg))
				r.Post("/{quoteId}/duplicate", controllers.AdminDuplicateQuote(quoteService, logg))
				r.Post("/{quoteId}/open", controllers.AdminOpenQuote(quoteService, logg))
			})

			r.Route("/drafts", func(r chi.Router) {
				r.Post("/", controllers.CreateDraft(quoteService, logg))
				r.Route("/{draftId}", func(r chi.Router) {
					r.Get("/", controllers.GetDraft(quoteService, logg))
					r.Delete("/", controllers.CloseDraft(quoteService, logg))

					r.Post("/items", controllers.AddDraftItem(quoteService, logg))
					r.Patch("/items/{itemId}", controllers.UpdateDraftItem(quoteService, logg))
					r.Put("/items/{itemId}/product", controllers.SetDraftItemProduct(quoteService, logg))
					r.Delete("/items/{itemId}", controllers.RemoveDraftItem(quoteService, logg))

					r.Put("/package", controllers.ApplyDraftPackage(quoteService, logg))
					r.Delete("/package", controllers.ClearDraftPackage(quoteService, logg))

					r.Put("/language", controllers.SetDraftLanguage(quoteService, logg))
					r.Put("/details", controllers.UpdateDraftDetails(quoteService, logg))

					r.Post("/save", controllers.SaveDraft(quoteService, logg))
					r.Post("/finalize", controllers.FinalizeDraft(quoteService, logg))
					r.Post("/export", controllers.ExportDraft(quoteService, logg))
				})
			})
		})
	})

	return r
}
