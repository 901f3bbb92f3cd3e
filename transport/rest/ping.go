package rest

import (
	"log/slog"
	"net/http"
)

type pingHandler struct {
	logger *slog.Logger
}

// ServeHTTP - liveness probe, replies "pong".
func (that *pingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write ping response", "method", "ServeHTTP", "error", err)
	}
}
