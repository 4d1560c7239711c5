package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/sandbox"
	"github.com/okian/podium/internal/adapters/storage"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration first so logging honors log_json.
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogJSON); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	tasks := storage.NewMemoryTaskStore()
	blobs := storage.NewMemoryBlobStore()

	var subs storage.SubmissionStore
	switch cfg.Storage {
	case "postgres":
		pg, err := storage.NewPostgresSubmissionStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error(ctx, "failed to open postgres submission store", logger.Error(err))
			os.Exit(1)
		}
		defer pg.Close()
		subs = pg
	default:
		subs = storage.NewMemorySubmissionStore()
	}

	if cfg.TaskSeedFile != "" {
		n, err := storage.SeedTasks(ctx, cfg.TaskSeedFile, tasks, blobs)
		if err != nil {
			log.Error(ctx, "failed to seed tasks", logger.String("file", cfg.TaskSeedFile), logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "seeded tasks", logger.Int("count", n))
	}

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithTaskStore(tasks),
		service.WithBlobStore(blobs),
		service.WithSubmissionStore(subs),
		service.WithDefaultMaxPerDay(cfg.DefaultMaxPerDay),
	}

	// Custom scoring degrades gracefully when no container runtime is
	// reachable: built-in metrics keep working, custom tasks fail fast.
	runner, err := sandbox.NewDockerRunner(
		sandbox.WithImage(cfg.SandboxImage),
		sandbox.WithTimeout(time.Duration(cfg.SandboxTimeoutMS)*time.Millisecond),
		sandbox.WithMemoryLimit(int64(cfg.SandboxMemoryMB)<<20),
		sandbox.WithLogger(log.Named("sandbox")),
	)
	if err != nil {
		log.Warn(ctx, "sandbox unavailable; custom scoring disabled", logger.Error(err))
	} else {
		opts = append(opts, service.WithSandbox(runner))
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	mux := http.NewServeMux()
	api.NewServer(svc, svc, cfg.MaxUploadBytes).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "http server listening", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "server stopped")
}
