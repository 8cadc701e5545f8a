package config

import "go.uber.org/fx"

// NewProvider exposes the resolved configuration to the fx graph. With
// a nil cfg the configuration is loaded from the environment when the
// graph is constructed, surfacing load failures as fx errors instead of
// a panic.
func NewProvider(cfg *Config) fx.Option {
	if cfg != nil {
		return fx.Supply(cfg)
	}

	return fx.Provide(func() (*Config, error) {
		loaded := &Config{}
		if err := LoadConfig(loaded); err != nil {
			return nil, err
		}
		return loaded, nil
	})
}
