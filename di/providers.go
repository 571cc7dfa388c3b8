package di

import (
	"fmt"

	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/KOMKZ/cpipeline/auth"
	"github.com/KOMKZ/cpipeline/config"
	"github.com/KOMKZ/cpipeline/database"
	"github.com/KOMKZ/cpipeline/health"
	"github.com/KOMKZ/cpipeline/jwt"
	"github.com/KOMKZ/cpipeline/logger"
	"github.com/KOMKZ/cpipeline/settings"
)

// Module names passed to logger.Manager.GetLogger
const (
	ModuleApp      = "cpipeline"
	ModuleDatabase = "database"
	ModuleAuth     = "auth"
	ModuleJWT      = "jwt"
	ModuleHealth   = "health"
)

// Options controls Register
type Options struct {
	// Loader options, ignored when Settings is set
	Loader config.ProvideLoaderOptions

	// Settings skips the loader and uses an already loaded record
	Settings *settings.Settings

	// Logger overrides the configuration derived from the settings
	Logger *logger.ManagerConfig

	// LogToStderr sends console logs to stderr whichever configuration is used
	LogToStderr bool

	// Databases overrides the instances derived from the settings
	Databases map[string]database.Config
	Primary   string

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Register adds every cpipeline provider to i. Services are built lazily on
// first Invoke.
func Register(i do.Injector, opts Options) {
	if opts.Settings != nil {
		do.Provide(i, settings.ProvideSettingsValue(opts.Settings))
	} else {
		do.Provide(i, config.ProvideLoader(opts.Loader))
		do.Provide(i, settings.ProvideSettings)
	}

	do.Provide(i, provideLoggerManager(opts.Logger, opts.LogToStderr))
	do.Provide(i, provideDatabaseManager(opts))
	do.Provide(i, ProvidePasswordService)
	do.Provide(i, ProvideUserRepository)
	do.Provide(i, ProvideLoginAttemptStore)
	do.Provide(i, ProvideAuthenticator)
	do.Provide(i, ProvideBootstrapper)
	do.Provide(i, ProvideTokenStore)
	do.Provide(i, ProvideTokenManager)
	do.Provide(i, func(i do.Injector) (jwt.TokenManager, error) {
		return do.Invoke[*jwt.Manager](i)
	})
	do.Provide(i, ProvideHealth)
}

func provideLoggerManager(override *logger.ManagerConfig, toStderr bool) func(do.Injector) (*logger.Manager, error) {
	return func(i do.Injector) (*logger.Manager, error) {
		var cfg logger.ManagerConfig
		if override != nil {
			cfg = *override
		} else {
			s, err := do.Invoke[*settings.Settings](i)
			if err != nil {
				return nil, err
			}
			cfg = logger.ConfigFromSettings(s)
		}
		if toStderr {
			cfg.ConsoleToStderr = true
		}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("logger config: %w", err)
		}
		return logger.NewManager(cfg), nil
	}
}

func provideDatabaseManager(opts Options) func(do.Injector) (*database.Manager, error) {
	return func(i do.Injector) (*database.Manager, error) {
		logs, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return nil, err
		}
		configs, primary := opts.Databases, opts.Primary
		if configs == nil {
			s, err := do.Invoke[*settings.Settings](i)
			if err != nil {
				return nil, err
			}
			configs, primary = database.ConfigsFromSettings(s)
		}

		log := logs.GetLogger(ModuleDatabase)
		dbOpts := []database.Option{database.WithPrimary(primary)}
		if opts.TracerProvider != nil {
			dbOpts = append(dbOpts, database.WithTracerProvider(opts.TracerProvider))
		}
		if opts.MeterProvider != nil {
			dbOpts = append(dbOpts, database.WithMeterProvider(opts.MeterProvider))
		}
		return database.NewManager(configs, database.NewGormLoggerFactory(log), log, dbOpts...)
	}
}

// ProvidePasswordService uses the bcrypt cost from the settings
func ProvidePasswordService(i do.Injector) (*auth.PasswordService, error) {
	s, err := do.Invoke[*settings.Settings](i)
	if err != nil {
		return nil, err
	}
	cfg := auth.ConfigFromSettings(s)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth config: %w", err)
	}
	return auth.NewPasswordService(cfg.Policy, cfg.BcryptCost), nil
}

// ProvideUserRepository binds users to the primary database
func ProvideUserRepository(i do.Injector) (*auth.UserRepository, error) {
	dbs, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	return auth.NewUserRepository(dbs.Primary()), nil
}

// ProvideLoginAttemptStore is the in-memory lockout store
func ProvideLoginAttemptStore(do.Injector) (auth.LoginAttemptStore, error) {
	return auth.NewMemoryLoginAttemptStore(), nil
}

// ProvideAuthenticator wires users, passwords and lockout tracking
func ProvideAuthenticator(i do.Injector) (*auth.Authenticator, error) {
	s, err := do.Invoke[*settings.Settings](i)
	if err != nil {
		return nil, err
	}
	users, err := do.Invoke[*auth.UserRepository](i)
	if err != nil {
		return nil, err
	}
	passwords, err := do.Invoke[*auth.PasswordService](i)
	if err != nil {
		return nil, err
	}
	attempts, err := do.Invoke[auth.LoginAttemptStore](i)
	if err != nil {
		return nil, err
	}
	logs, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	cfg := auth.ConfigFromSettings(s)
	return auth.NewAuthenticator(users, passwords, attempts, cfg.LoginAttempt, logs.GetLogger(ModuleAuth)), nil
}

// ProvideBootstrapper creates the first superuser from the settings
func ProvideBootstrapper(i do.Injector) (*auth.Bootstrapper, error) {
	s, err := do.Invoke[*settings.Settings](i)
	if err != nil {
		return nil, err
	}
	users, err := do.Invoke[*auth.UserRepository](i)
	if err != nil {
		return nil, err
	}
	passwords, err := do.Invoke[*auth.PasswordService](i)
	if err != nil {
		return nil, err
	}
	logs, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	return auth.NewBootstrapper(users, passwords, s, logs.GetLogger(ModuleAuth)), nil
}

// ProvideTokenStore is the in-memory revocation store
func ProvideTokenStore(i do.Injector) (jwt.TokenStore, error) {
	logs, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	return jwt.NewMemoryTokenStore(logs.GetLogger(ModuleJWT)), nil
}

// ProvideTokenManager signs with SECRET_KEY
func ProvideTokenManager(i do.Injector) (*jwt.Manager, error) {
	s, err := do.Invoke[*settings.Settings](i)
	if err != nil {
		return nil, err
	}
	store, err := do.Invoke[jwt.TokenStore](i)
	if err != nil {
		return nil, err
	}
	logs, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	return jwt.NewTokenManager(jwt.ConfigFromSettings(s), store, logs.GetLogger(ModuleJWT))
}

// ProvideHealth checks every database instance
func ProvideHealth(i do.Injector) (*health.Aggregator, error) {
	s, err := do.Invoke[*settings.Settings](i)
	if err != nil {
		return nil, err
	}
	dbs, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	logs, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	a := health.NewAggregator(health.DefaultTimeout, logs.GetLogger(ModuleHealth))
	health.SettingsMetadata(a, s)
	a.Register(health.DatabaseCheckers(dbs)...)
	return a, nil
}
