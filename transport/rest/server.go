package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 10 * time.Second

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	server *http.Server
}

// NewServer builds the router with the game API mounted under /api. Other
// transports can register their own routes through Router before Start.
func NewServer(logger *slog.Logger, port string, handlers Handlers) *Server {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)

	router.Get("/ping", handlers.PingHandler)

	router.Route("/api", func(api chi.Router) {
		api.Use(chimw.Timeout(requestTimeout))
		api.Use(jsonContentType)

		api.Post("/sessions", handlers.CreateSession)

		api.Group(func(authorized chi.Router) {
			authorized.Use(handlers.RequireSession)

			authorized.Delete("/sessions", handlers.EndSession)
			authorized.Get("/game", handlers.GetGame)
			authorized.Post("/game/moves/{cell}", handlers.MakeMove)
			authorized.Post("/game/reset", handlers.Reset)
			authorized.Get("/score", handlers.GetScore)
		})
	})

	return &Server{
		logger: logger.With("component", "rest_server"),
		router: router,
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       30 * time.Second,
		},
	}
}

func (that *Server) Router() chi.Router {
	return that.router
}

// Start serves until Shutdown is called.
func (that *Server) Start() error {
	that.logger.Info("server started", "addr", that.server.Addr)

	if err := that.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	that.logger.Info("server stopped")

	return nil
}

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}
