package di

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/KOMKZ/cpipeline/auth"
	"github.com/KOMKZ/cpipeline/config"
	"github.com/KOMKZ/cpipeline/database"
	"github.com/KOMKZ/cpipeline/health"
	"github.com/KOMKZ/cpipeline/jwt"
	"github.com/KOMKZ/cpipeline/logger"
	"github.com/KOMKZ/cpipeline/settings"
)

// App owns the root scope. Settings and the logger manager are built
// eagerly so configuration problems surface from NewApp; everything else is
// built on first use.
type App struct {
	injector *do.RootScope
	settings *settings.Settings
	logs     *logger.Manager
	log      *logger.CtxZapLogger
}

// NewApp registers every provider and loads the settings
func NewApp(opts Options) (*App, error) {
	injector := do.New()
	Register(injector, opts)

	s, err := do.Invoke[*settings.Settings](injector)
	if err != nil {
		injector.Shutdown()
		return nil, err
	}
	logs, err := do.Invoke[*logger.Manager](injector)
	if err != nil {
		injector.Shutdown()
		return nil, err
	}

	app := &App{
		injector: injector,
		settings: s,
		logs:     logs,
		log:      logs.GetLogger(ModuleApp),
	}
	if loader, err := do.Invoke[*config.Loader](injector); err == nil {
		warnIgnoredDerivedKeys(loader, app.log)
	}

	app.log.Info("settings loaded",
		zap.String("environment", s.Environment.String()),
		zap.String("project_name", s.ProjectName),
	)
	return app, nil
}

// warnIgnoredDerivedKeys reports derived settings that a source tried to set
func warnIgnoredDerivedKeys(loader *config.Loader, log *logger.CtxZapLogger) {
	for _, key := range settings.DerivedKeys() {
		if v, ok := loader.Lookup(key); ok {
			log.Warn("derived setting ignored",
				zap.String("key", key),
				zap.String("source", v.Source),
			)
		}
	}
}

// Injector returns the root scope
func (a *App) Injector() *do.RootScope {
	return a.injector
}

// Settings returns the loaded record
func (a *App) Settings() *settings.Settings {
	return a.settings
}

// Logger returns the logger of module
func (a *App) Logger(module string) *logger.CtxZapLogger {
	return a.logs.GetLogger(module)
}

// Database opens the configured instances on first call
func (a *App) Database() (*database.Manager, error) {
	return do.Invoke[*database.Manager](a.injector)
}

// TokenManager returns the token manager
func (a *App) TokenManager() (jwt.TokenManager, error) {
	return do.Invoke[jwt.TokenManager](a.injector)
}

// Authenticator returns the password authenticator
func (a *App) Authenticator() (*auth.Authenticator, error) {
	return do.Invoke[*auth.Authenticator](a.injector)
}

// Health returns the readiness aggregator
func (a *App) Health() (*health.Aggregator, error) {
	return do.Invoke[*health.Aggregator](a.injector)
}

// BootstrapSuperuser pings the primary database and ensures the first
// superuser exists.
func (a *App) BootstrapSuperuser(ctx context.Context) (*auth.User, bool, error) {
	dbs, err := a.Database()
	if err != nil {
		return nil, false, err
	}
	if err := dbs.Ping(ctx, dbs.PrimaryName()); err != nil {
		return nil, false, err
	}
	b, err := do.Invoke[*auth.Bootstrapper](a.injector)
	if err != nil {
		return nil, false, err
	}
	return b.EnsureFirstSuperuser(ctx)
}

// Shutdown closes every service that was built, database and log files included
func (a *App) Shutdown() error {
	report := a.injector.Shutdown()
	if report != nil && !report.Succeed {
		return fmt.Errorf("shutdown: %w", report)
	}
	return nil
}
