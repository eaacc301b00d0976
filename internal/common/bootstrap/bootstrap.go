package bootstrap

import (
	"context"
	"fmt"

	"github.com/AlibekovAA/no-tion/internal/common/config"
	"github.com/AlibekovAA/no-tion/internal/common/constants"
	commonhttp "github.com/AlibekovAA/no-tion/internal/common/http"
	"github.com/AlibekovAA/no-tion/internal/common/ids"
	"github.com/AlibekovAA/no-tion/internal/common/logger"
	"github.com/AlibekovAA/no-tion/internal/common/server"
	"github.com/AlibekovAA/no-tion/internal/note/scramble"
	"github.com/AlibekovAA/no-tion/internal/notes/session"
	"github.com/AlibekovAA/no-tion/internal/notes/tcp"
	"github.com/AlibekovAA/no-tion/internal/user/registry"
)

type App struct {
	Log       *logger.Logger
	Config    config.ServerConfig
	Registry  *registry.Registry
	Scrambler *scramble.Scrambler
	Notes     *tcp.Server
	Ops       *server.HTTPService
}

// NewServerApp wires the note server from an already loaded configuration.
// Ops is nil when the ops port is disabled.
func NewServerApp(cfg config.ServerConfig) (*App, error) {
	log, err := logger.New(cfg.LogDir, constants.ServiceName, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApp(cfg, log), nil
}

func newApp(cfg config.ServerConfig, log *logger.Logger) *App {
	reg := registry.New()
	scr := scramble.New()

	notes := tcp.NewServer(tcp.Config{
		Addr:       cfg.Addr(),
		MaxWorkers: cfg.MaxWorkers,
		QueueSize:  cfg.AcceptQueueSize,
		Session: session.Config{
			MaxLineBytes: cfg.MaxLineBytes,
			WriteTimeout: cfg.WriteTimeout,
		},
	}, session.Deps{
		Registry:  reg,
		Scrambler: scr,
		Log:       log,
	}, ids.NewUUIDGenerator(), log)

	app := &App{
		Log:       log,
		Config:    cfg,
		Registry:  reg,
		Scrambler: scr,
		Notes:     notes,
	}

	if addr := cfg.OpsAddr(); addr != "" {
		app.Ops = server.NewHTTPService("ops", server.DefaultHTTPConfig(addr),
			commonhttp.NewOpsHandler(log, app.Stats, app.Users))
	}

	return app
}

func (a *App) Stats() commonhttp.HealthStats {
	return commonhttp.HealthStats{
		Users:          a.Registry.Count(),
		ActiveSessions: a.Notes.ActiveSessions(),
	}
}

// Users lists registered users with their note counts, sorted by name.
func (a *App) Users() []commonhttp.UserSummary {
	names := a.Registry.Names()
	users := make([]commonhttp.UserSummary, 0, len(names))
	for _, name := range names {
		user, ok := a.Registry.Lookup(name)
		if !ok {
			continue
		}
		users = append(users, commonhttp.UserSummary{Name: name, Notes: user.Notes.Len()})
	}
	return users
}

func (a *App) Services() []server.Service {
	services := []server.Service{a.Notes}
	if a.Ops != nil {
		services = append(services, a.Ops)
	}
	return services
}

// Run binds the note port first so a bind failure is reported before any
// service starts, then serves until shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.Notes.Listen(); err != nil {
		return err
	}

	return server.Run(ctx, a.Log, server.RunConfig{
		ShutdownTimeout: a.Config.ShutdownTimeout,
		Hooks: []server.ShutdownHook{
			func(context.Context) error {
				a.Log.Infof("registry holds %d users at shutdown", a.Registry.Count())
				return nil
			},
		},
	}, a.Services()...)
}

func (a *App) Close() error {
	return a.Log.Close()
}
