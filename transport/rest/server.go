package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// NewRouter - mounts the websocket gateway on /ws and the liveness probe on /ping.
func NewRouter(logger *slog.Logger, gateway http.Handler, allowedOrigin string) http.Handler {
	router := mux.NewRouter()

	router.Handle("/ping", &pingHandler{logger: logger}).Methods(http.MethodGet)
	router.Handle("/ws", gateway).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{allowedOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Authorization"}),
		handlers.AllowCredentials(),
	)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)

	return recovery(cors(router))
}

func New(logger *slog.Logger, port string, handler http.Handler) *Server {
	return &Server{
		logger: logger.With("component", "http"),
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       30 * time.Second,
		},
	}
}

// Start - blocks until the server fails or is shut down.
func (that *Server) Start() error {
	that.logger.Info("starting http server", "method", "Start", "addr", that.httpServer.Addr)

	if err := that.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	that.logger.Info("http server stopped", "method", "Shutdown")

	return nil
}
