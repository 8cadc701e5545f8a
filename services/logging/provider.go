package logging

import (
	"github.com/manugamu/pfc/config"
)

// NewLoggingService builds the zap-backed logger from the application
// configuration. The app builder constructs it eagerly and supplies the
// instance to the fx graph so startup failures can still be logged.
func NewLoggingService(cfg *config.Config) (*Service, error) {
	return NewService(Config{
		Level:      LogLevel(cfg.Log.Level),
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.Output,
	})
}
