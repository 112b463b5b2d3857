// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"newsradar/internal/config"
	"newsradar/internal/domain/article"
	"newsradar/internal/domain/trend"
	"newsradar/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	store article.Store,
	analyzer article.Analyzer,
	batch article.BatchAnalyzer,
	aggregator trend.Aggregator,
	log *logrus.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	articleHandler := handlers.NewArticleHandler(store)
	analysisHandler := handlers.NewAnalysisHandler(store, analyzer, batch, log)
	trendHandler := handlers.NewTrendHandler(aggregator)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Articles API
			r.Route("/articles", func(r chi.Router) {
				r.Get("/", articleHandler.ListArticles)
				r.Get("/stats", articleHandler.GetStats)
				r.Get("/{id}", articleHandler.GetArticle)
				r.Post("/{id}/analyze", analysisHandler.AnalyzeArticle)
			})

			// Batch analysis
			r.Post("/analyze-all", analysisHandler.AnalyzeAll)

			// Ad-hoc trend lookups
			r.Get("/trends", trendHandler.GetTrends)

			// Category taxonomy
			r.Get("/categories", articleHandler.GetCategories)
		})
	})

	// WebSocket endpoint for the live analysis feed
	router.Get("/ws/analysis", handlers.AnalysisFeedHandler(natsConn, log))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
