package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anemo-backend/internal/analysis"
	"anemo-backend/internal/chat"
	"anemo-backend/internal/clinic"
	"anemo-backend/internal/interview"
	"anemo-backend/internal/platform/web"
	anemomw "anemo-backend/internal/server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

type Dependencies struct {
	Analysis  analysis.Service
	Interview interview.Service
	Chat      chat.Service
	Clinic    clinic.Service
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := chi.NewRouter()

	router.Use(anemomw.Logger(&logger))
	router.Use(middleware.Recoverer)
	router.Use(anemomw.CORS)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		web.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	deps := config.Dependencies
	router.Route("/api", func(r chi.Router) {
		analysis.RegisterRoutes(r, analysis.NewHandler(deps.Analysis))
		interview.RegisterRoutes(r, interview.NewHandler(deps.Interview))
		chat.RegisterRoutes(r, chat.NewHandler(deps.Chat))
		clinic.RegisterRoutes(r, clinic.NewHandler(deps.Clinic))
	})

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(ctx); err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			return w.server.Close()
		}
	}
	return nil
}
