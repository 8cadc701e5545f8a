package app

import (
	"fmt"

	"github.com/manugamu/pfc/config"
	"github.com/manugamu/pfc/database"
	"github.com/manugamu/pfc/handlers"
	"github.com/manugamu/pfc/server"
	"github.com/manugamu/pfc/services/auth"
	"github.com/manugamu/pfc/services/events"
	"github.com/manugamu/pfc/services/fallachat"
	"github.com/manugamu/pfc/services/logging"
	"github.com/manugamu/pfc/services/revocation"
	"github.com/manugamu/pfc/services/token"
	"github.com/manugamu/pfc/services/users"
	"go.uber.org/fx"
)

type AppBuilder struct {
	config    *config.Config
	services  map[string]bool
	models    []any
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		services:  make(map[string]bool),
		models:    make([]any, 0),
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithDatabase(models ...any) *AppBuilder {
	b.services["database"] = true
	b.models = append(b.models, models...)
	return b
}

// WithAuth enables the token, revocation, user and auth services along
// with the device-session storage they need.
func (b *AppBuilder) WithAuth() *AppBuilder {
	b.services["auth"] = true
	b.services["database"] = true
	b.models = append(b.models, &users.User{}, &users.DeviceSession{})
	return b
}

func (b *AppBuilder) WithEvents() *AppBuilder {
	b.services["events"] = true
	b.services["database"] = true
	b.models = append(b.models, &events.Event{})
	return b
}

func (b *AppBuilder) WithFallaChats() *AppBuilder {
	b.services["fallachats"] = true
	b.services["database"] = true
	b.models = append(b.models, &fallachat.FallaChat{})
	return b
}

// WithHandlers registers the HTTP surface. Requires auth.
func (b *AppBuilder) WithHandlers() *AppBuilder {
	b.services["handlers"] = true
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	if b.config == nil {
		if err := b.WithAutoConfig().validate(); err != nil {
			return nil, err
		}
	}

	logger, err := b.createLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{
		config: b.config,
		logger: logger,
	}

	fxOptions := []fx.Option{
		config.NewProvider(b.config),
		fx.Supply(logger),
		fx.NopLogger,
	}

	if b.services["database"] {
		modelsOpt := database.WithModels(b.models...)
		db, err := database.ProvideDatabase(*b.config, modelsOpt, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db
		fxOptions = append(fxOptions, fx.Supply(db))
	}

	fxOptions = append(fxOptions, server.NewProvider())

	if b.services["auth"] {
		fxOptions = append(fxOptions,
			token.Module,
			revocation.Module,
			users.Module,
			auth.Module,
		)
	}
	if b.services["events"] {
		fxOptions = append(fxOptions, events.Module)
	}
	if b.services["fallachats"] {
		fxOptions = append(fxOptions, fallachat.Module)
	}
	if b.services["handlers"] {
		fxOptions = append(fxOptions, handlers.Module)
	}

	fxOptions = append(fxOptions, b.fxOptions...)

	fxOptions = append(fxOptions, fx.Invoke(func(srv *server.Server) {
		app.server = srv
	}))

	app.fx = fx.New(fxOptions...)

	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, fmt.Errorf("%s", msg))
}

func (b *AppBuilder) validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("configuration errors: %v", b.errors)
	}

	if b.services["handlers"] && !b.services["auth"] {
		return fmt.Errorf("handlers require auth support")
	}

	if b.services["handlers"] && !b.services["events"] {
		return fmt.Errorf("handlers require events support")
	}

	if b.services["handlers"] && !b.services["fallachats"] {
		return fmt.Errorf("handlers require falla-chat support")
	}

	return nil
}

func (b *AppBuilder) createLogger() (*logging.Service, error) {
	if b.config == nil {
		return nil, fmt.Errorf("config required for logger creation")
	}

	return logging.NewLoggingService(b.config)
}
