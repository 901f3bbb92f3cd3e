package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/service"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/rest"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

// RunApp - runs the application until a signal arrives or the HTTP server fails.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	roomRepo, closeStore, err := newRoomRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeStore()

	auth, err := service.NewAuthService(conf.JWTSecretKey, conf.IdentityClaim)
	if err != nil {
		return fmt.Errorf("could not create auth service: %w", err)
	}

	roomManager := usecase.NewRoomManager(logger, roomRepo)
	gateway := websocket.New(logger, auth, roomManager, conf.AllowedOrigin)

	gatewayDone := make(chan struct{})
	go func() {
		defer close(gatewayDone)
		gateway.Run(ctx)
	}()

	httpServer := rest.New(logger, conf.Port, rest.NewRouter(logger, gateway, conf.AllowedOrigin))

	httpErrCh := make(chan error, 1)
	go func() {
		httpErrCh <- httpServer.Start()
	}()

	select {
	case err = <-httpErrCh:
		cancel()
		<-gatewayDone
		return fmt.Errorf("HTTP server error: %w", err)
	case sig := <-sigs:
		log.Info("Received signal, shutting down", "signal", sig)
	}

	// closing the sessions first lets Shutdown return without waiting on hijacked connections
	cancel()
	<-gatewayDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	return httpServer.Shutdown(shutdownCtx)
}

func newRoomRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.RoomRepository, func(), error) {
	if conf.Storage.Driver != config.StorageRedis {
		log.Info("using in-memory room storage")
		return repository.NewMemoryRoomRepository(), func() {}, nil
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("using redis room storage", "addr", conf.Redis.GetRedisAddr(), "roomTTL", conf.Redis.RoomTTL)

	closeStore := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewRoomRepository(redisStorage, conf.Redis.RoomTTL), closeStore, nil
}
