package server

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AlibekovAA/no-tion/internal/common/constants"
	"github.com/AlibekovAA/no-tion/internal/common/logger"
)

// Service is a long-running listener managed by Run.
type Service interface {
	Name() string
	Serve(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type ShutdownHook func(ctx context.Context) error

type RunConfig struct {
	ShutdownTimeout time.Duration
	DrainTimeout    time.Duration
	Hooks           []ShutdownHook
}

// Run serves every service until SIGINT/SIGTERM, parent cancellation or the
// first service failure, then runs the hooks and shuts all services down.
// It returns the first service error, if any.
func Run(ctx context.Context, log *logger.Logger, cfg RunConfig, services ...Service) error {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = constants.DefaultShutdownTimeout
	}
	if cfg.DrainTimeout <= 0 || cfg.DrainTimeout > cfg.ShutdownTimeout {
		cfg.DrainTimeout = min(constants.DrainTimeout, cfg.ShutdownTimeout)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	for _, svc := range services {
		g.Go(func() error {
			log.Infof("starting %s service", svc.Name())
			if err := svc.Serve(gctx); err != nil {
				log.Errorf("%s service failed: %v", svc.Name(), err)
				return fmt.Errorf("%s service: %w", svc.Name(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdown(log, cfg, services)
		return nil
	})

	return g.Wait()
}

func shutdown(log *logger.Logger, cfg RunConfig, services []Service) {
	log.Infof("shutting down (timeout %v)", cfg.ShutdownTimeout)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if len(cfg.Hooks) > 0 {
		drainCtx, drainCancel := context.WithTimeout(shutdownCtx, cfg.DrainTimeout)
		log.Infof("executing %d shutdown hooks (drain period: %v)", len(cfg.Hooks), cfg.DrainTimeout)
		for i, hook := range cfg.Hooks {
			if err := hook(drainCtx); err != nil {
				log.Errorf("shutdown hook %d failed: %v", i, err)
			}
		}
		drainCancel()
	}

	for _, svc := range services {
		if err := svc.Shutdown(shutdownCtx); err != nil {
			log.Errorf("%s service forced to shutdown: %v", svc.Name(), err)
		} else {
			log.Infof("%s service stopped gracefully", svc.Name())
		}
	}
}
