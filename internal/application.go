package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/config"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/service"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/terminal"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/rest"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/websocket"
)

const shutdownTimeout = 5 * time.Second

var ErrAddrNotFound = errors.New("redis host is empty")

// RunApp - runs the application in the configured mode until it is stopped.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch conf.Mode {
	case config.ModeTerminal:
		return runTerminal(ctx, logger, conf)
	case config.ModeServer:
		return runServer(ctx, logger, conf)
	default:
		log.Error("unknown mode", "mode", conf.Mode)
		return fmt.Errorf("%w: %q", config.ErrUnknownMode, conf.Mode)
	}
}

func runTerminal(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	bell := terminal.NewBell(nil)
	if conf.Terminal.Sound {
		bell = terminal.NewBell(os.Stdout)
	}

	if err := terminal.New(logger, bell).Run(ctx); err != nil {
		return fmt.Errorf("terminal ui error: %w", err)
	}

	return nil
}

func runServer(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	sessionRepo, closeRepo, err := newSessionRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeRepo(); err != nil {
			log.Error("could not close session storage", "error", err)
		}
	}()

	gameUseCase := usecase.NewGameManager(logger, sessionRepo)
	authService := service.NewAuthService(conf.JWTSecretKey, conf.Session.TTL)

	handlers := rest.NewHandlers(logger, gameUseCase, authService, conf.Session.TTL)
	server := rest.NewServer(logger, conf.HTTPPort, handlers)
	server.Router().Get("/ws", websocket.New(ctx, logger, gameUseCase, authService, conf.WebSocket.AllowedOrigin).ServeHTTP)

	httpErrCh := make(chan error, 1)
	go func() {
		httpErrCh <- server.Start()
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func newSessionRepository(ctx context.Context, conf *config.Config) (repository.SessionRepository, func() error, error) {
	if conf.Session.Store == config.StoreMemory {
		return repository.NewMemorySessionRepository(conf.Session.TTL), func() error { return nil }, nil
	}

	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewSessionRepository(redisStorage, conf.Session.TTL), redisStorage.Close, nil
}
