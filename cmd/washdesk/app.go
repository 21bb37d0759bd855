package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/washdesk/internal/adapter/driven/api"
	"github.com/ericfisherdev/washdesk/internal/adapter/driven/notify"
	sqliteadapter "github.com/ericfisherdev/washdesk/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/washdesk/internal/application"
	"github.com/ericfisherdev/washdesk/internal/config"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

// toastCoalesceWindow suppresses repeats of the same notification ID.
const toastCoalesceWindow = 5 * time.Second

// sink is the presentation surface: where notifications land and what
// happens when the session must be re-established.
type sink interface {
	driven.Notifier
	driven.Navigator
}

// app is the wired object graph shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sqliteadapter.DB
	session  *application.SessionStore
	factory  *api.Factory
	backend  *api.Backend
	cache    *application.QueryCache
	auth     *application.AuthService
	notifier driven.Notifier
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, surface sink) (*app, error) {
	// 1. Open database and run migrations.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("database ready", "path", db.Path(), "schema_version", version)

	// 2. Restore the session. Without a secret key it lives for this process only.
	if !cfg.HasSecretKey() {
		logger.Warn("WASHDESK_SECRET_KEY not set, sign-in will not be remembered")
	}
	session := application.NewSessionStore(sqliteadapter.NewCredentialRepo(db, cfg.SecretKey), logger)
	if err := session.Load(ctx); err != nil {
		logger.Warn("stored session could not be restored", "error", err)
	}

	// 3. Notification chain: dedupe, strip markup, then log and surface.
	notifier := notify.NewCoalescing(
		notify.NewSanitizing(notify.Fanout{notify.NewLogNotifier(logger), surface}),
		toastCoalesceWindow,
	)
	teardown := application.NewSessionTeardown(session, notifier, surface, logger)

	// 4. Backend client and the application services on top of it.
	factory := api.NewFactory(cfg.APIURL, session, teardown,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	)
	backend := api.NewBackend(factory)
	cache := application.NewQueryCache(cfg.CacheTTL)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		session:  session,
		factory:  factory,
		backend:  backend,
		cache:    cache,
		auth:     application.NewAuthService(backend.Auth, session, cache, logger),
		notifier: notifier,
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

func (a *app) listConfig() application.ListControllerConfig {
	return application.ListControllerConfig{PerPage: a.cfg.PageSize, Debounce: a.cfg.SearchDebounce}
}

// cliSink collects notifications while a one-shot command runs and prints
// them when it finishes.
type cliSink struct {
	notify.Recorder
	expired atomic.Bool
}

// ToLogin implements driven.Navigator.
func (s *cliSink) ToLogin() {
	s.expired.Store(true)
}

func (s *cliSink) flush(w io.Writer) {
	for _, n := range s.Notifications() {
		if n.Description == "" {
			fmt.Fprintln(w, n.Title)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
	}
	if s.expired.Load() {
		fmt.Fprintln(w, "Run `washdesk login` to sign in again.")
	}
}
