package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rewards/internal/action"
	"github.com/mesh-intelligence/rewards/internal/cache"
	"github.com/mesh-intelligence/rewards/internal/entity"
	"github.com/mesh-intelligence/rewards/internal/logging"
	"github.com/mesh-intelligence/rewards/internal/repo"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

// env is the wired application a command runs against. The caller must
// call close.
type env struct {
	settings settings
	log      *slog.Logger
	db       *store.DB
	repos    *entity.Repositories
	cache    *cache.Cache
	pipeline *action.Pipeline

	logCloser io.Closer
}

// openEnv loads settings, builds the logger, opens and migrates the store,
// and wires the repositories, cache and pipeline.
func openEnv(cmd *cobra.Command, flags *rootFlags) (*env, error) {
	s, err := loadSettings(flags)
	if err != nil {
		return nil, &exitError{code: exitSysError, err: err}
	}
	logger, closer, err := logging.New(s.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, userError("configure logging: %w", err)
	}

	ctx := contextOf(cmd)
	db, err := store.Open(ctx, s.storeConfig(), store.WithLogger(logger))
	if err != nil {
		closer.Close()
		if errors.Is(err, types.ErrBackendUnknown) || errors.Is(err, types.ErrBackendEmpty) || errors.Is(err, types.ErrDSNEmpty) {
			return nil, userError("open store: %w", err)
		}
		return nil, sysError("open store: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		closer.Close()
		return nil, sysError("migrate store: %w", err)
	}

	c := cache.New(cache.WithLogger(logger))
	repos := entity.New(db, repo.WithLogger(logger))
	return &env{
		settings:  s,
		log:       logger,
		db:        db,
		repos:     repos,
		cache:     c,
		pipeline:  action.New(c, action.WithLogger(logger), action.WithRegistry(repos.Registry())),
		logCloser: closer,
	}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.log.Warn("closing store", "error", err)
	}
	_ = e.logCloser.Close()
}

// resource looks up an entity by table name.
func (e *env) resource(name string) (repo.Resource, error) {
	res, err := e.repos.Registry().Get(name)
	if err != nil {
		return nil, userError("%w (valid: %s)", err, strings.Join(e.repos.Registry().Tables(), ", "))
	}
	return res, nil
}

// withEnv opens the environment, runs fn and closes it.
func withEnv(cmd *cobra.Command, flags *rootFlags, fn func(*env) error) error {
	e, err := openEnv(cmd, flags)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func wrapStoreError(doing string, err error) error {
	if store.IsNotFound(err) || errors.Is(err, types.ErrInvalidID) {
		return userError("%s: %w", doing, err)
	}
	return sysError("%s: %w", doing, err)
}
