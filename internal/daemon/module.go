package daemon

import (
	"context"
	"fmt"

	"github.com/matheus3301/fleetchat/internal/api"
	"github.com/matheus3301/fleetchat/internal/lock"
	"github.com/matheus3301/fleetchat/internal/logging"
	"github.com/matheus3301/fleetchat/internal/profile"
	"github.com/matheus3301/fleetchat/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved dev server configuration passed to the fx module.
type Params struct {
	ProfileName string
	Addr        string
	SeedPath    string // optional TOML fixture applied at startup
	Echo        bool   // deliver sent messages to the sender's inbox too
}

// Module returns the fx module for the dev server, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("devserver",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideLock,
			provideStore,
			provideHandler,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.ProfileName, "devserver"), p.ProfileName)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideStore depends on the lock so the database is only opened by its owner.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DevServerDBPath(p.ProfileName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}

	if p.SeedPath != "" {
		seed, err := store.LoadSeed(p.SeedPath)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := db.ApplySeed(context.Background(), seed); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply seed: %w", err)
		}
		logger.Info("seed applied",
			zap.String("path", p.SeedPath),
			zap.Int("users", len(seed.Users)),
			zap.Int("contacts", len(seed.Contacts)),
			zap.Int("groups", len(seed.Groups)),
		)
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideHandler(p Params, db *store.DB, logger *zap.Logger) *api.Handler {
	return api.New(db, logger, api.WithEcho(p.Echo))
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if n, err := db.MessageCount(ctx); err == nil {
				logger.Info("store contents", zap.Int64("messages", n))
			}
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("http shutdown incomplete", zap.Error(err))
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("dev server stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
