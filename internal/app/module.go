package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/bus"
	"github.com/matheus3301/chatterm/internal/chat"
	"github.com/matheus3301/chatterm/internal/compose"
	"github.com/matheus3301/chatterm/internal/config"
	"github.com/matheus3301/chatterm/internal/live"
	"github.com/matheus3301/chatterm/internal/lock"
	"github.com/matheus3301/chatterm/internal/logging"
	"github.com/matheus3301/chatterm/internal/profile"
	"github.com/matheus3301/chatterm/internal/state"
	"github.com/matheus3301/chatterm/internal/status"
	"github.com/matheus3301/chatterm/internal/store"
	"github.com/matheus3301/chatterm/internal/tui"
	"github.com/matheus3301/chatterm/internal/tui/model"
)

// Params holds the resolved profile and configuration passed to the fx modules.
type Params struct {
	Profile string
	Config  *config.Config
	Stderr  bool // mirror warnings to stderr; set by chatctl only
}

// Core returns the providers shared by chatterm and chatctl: logger,
// cookie store and the REST client.
func Core(p Params) fx.Option {
	return fx.Module("core",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideStore,
			provideJar,
			provideClient,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(registerCoreLifecycle),
	)
}

// Module returns the fx module for the interactive client, composing all
// providers and lifecycle hooks on top of Core.
func Module(p Params) fx.Option {
	return fx.Options(
		Core(p),
		fx.Module("chatterm",
			fx.Provide(
				provideLock,
				provideContext,
				bus.New,
				state.New,
				status.NewMachine,
				chat.NewThread,
				chat.NewPresence,
				chat.NewSync,
				provideComposer,
				provideSubscriber,
				provideViewModel,
				provideApp,
			),
			fx.Invoke(registerLifecycle),
		),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Path:    profile.LogPath(p.Profile),
		Profile: p.Profile,
		Level:   p.Config.LogLevel,
		Stderr:  p.Stderr,
	})
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	dbPath := profile.CookieDBPath(p.Profile)
	db, result, err := store.OpenMigrated(dbPath)
	if err != nil {
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideJar(db *store.DB, logger *zap.Logger) (*store.Jar, error) {
	return store.NewJar(db, logger)
}

func provideClient(p Params, jar *store.Jar, logger *zap.Logger) (*api.Client, error) {
	return api.New(api.Options{
		BaseURL: p.Config.ServerURL,
		Jar:     jar,
		Timeout: p.Config.RequestTimeout,
		Logger:  logger,
	})
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideContext returns the context that bounds the live channel. It is
// cancelled when the app stops.
func provideContext(lc fx.Lifecycle) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.StopHook(cancel))
	return ctx
}

func provideComposer(p Params) *compose.Composer {
	return compose.New(p.Config.MaxImageBytes)
}

func provideSubscriber(p Params, jar *store.Jar, logger *zap.Logger) *live.Subscriber {
	return live.NewSubscriber(live.Options{
		URL:    p.Config.LiveURL,
		Jar:    jar,
		Logger: logger.Named("live"),
	})
}

type viewModelParams struct {
	fx.In

	Context  context.Context
	Client   *api.Client
	Live     *live.Subscriber
	State    *state.State
	Status   *status.Machine
	Thread   *chat.Thread
	Presence *chat.Presence
	Sync     *chat.Sync
	Composer *compose.Composer
	Bus      *bus.Bus
	Logger   *zap.Logger
}

func provideViewModel(d viewModelParams) *model.ViewModel {
	return model.NewViewModel(model.Deps{
		Context:  d.Context,
		Backend:  d.Client,
		Live:     d.Live,
		State:    d.State,
		Status:   d.Status,
		Thread:   d.Thread,
		Presence: d.Presence,
		Sync:     d.Sync,
		Composer: d.Composer,
		Bus:      d.Bus,
		Logger:   d.Logger,
	})
}

func provideApp(p Params, vm *model.ViewModel, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(vm, b, tui.Options{
		Profile:        p.Profile,
		Server:         p.Config.ServerURL,
		RequestTimeout: p.Config.RequestTimeout,
		Logger:         logger.Named("tui"),
	})
}

func registerCoreLifecycle(lc fx.Lifecycle, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			_ = logger.Sync()
			return nil
		},
	})
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, sub *live.Subscriber, m *status.Machine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("chatterm starting", zap.String("state", string(m.Current())))
			return nil
		},
		OnStop: func(_ context.Context) error {
			sub.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("chatterm stopped")
			return nil
		},
	})
}

// Run builds the interactive client, runs the TUI until the user quits and
// shuts everything down.
func Run(p Params) error {
	var ui *tui.App
	fxApp := fx.New(Module(p), fx.Populate(&ui))
	if err := fxApp.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	runErr := ui.Run()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fxApp.StopTimeout())
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil && runErr == nil {
		return fmt.Errorf("stop: %w", err)
	}
	return runErr
}
