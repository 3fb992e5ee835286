package config

import "context"

type configKey struct{}

// NewContext returns a copy of ctx carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored in ctx, or a config holding only
// the defaults when none was stored.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey{}).(*Config); ok && cfg != nil {
		return cfg
	}
	cfg := &Config{
		SchemaFile:   DefaultSchemaFile,
		StatePath:    DefaultStateFile,
		Environment:  DefaultEnv,
		OutputFormat: DefaultOutput,
	}
	cfg.Target = cfg.TargetFor(DefaultEnv)
	return cfg
}
