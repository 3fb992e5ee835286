package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/leapstack-labs/tiersql/internal/cli/config"
	"github.com/leapstack-labs/tiersql/internal/cli/output"
	"github.com/leapstack-labs/tiersql/internal/loader"
	"github.com/leapstack-labs/tiersql/internal/registry"
	"github.com/leapstack-labs/tiersql/pkg/engine"
	"github.com/leapstack-labs/tiersql/pkg/session"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer set up by the
// root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(cfg.OutputFormat)),
	}
}

// LoadSchema loads the configured schema file and registers its relations.
func (c *CommandContext) LoadSchema() (*loader.Schema, *registry.RelationRegistry, error) {
	schema, err := loader.LoadSchema(c.Cfg.SchemaFile)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.NewRelationRegistry()
	if err := reg.RegisterAll(schema.Relations); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", c.Cfg.SchemaFile, err)
	}
	c.Logger.Debug("schema loaded",
		slog.String("path", schema.Path),
		slog.Int("relations", reg.Count()))
	return schema, reg, nil
}

// OptionalSchema is LoadSchema for commands that also work without a
// schema file: a missing file yields an empty registry.
func (c *CommandContext) OptionalSchema() (*registry.RelationRegistry, error) {
	if _, err := os.Stat(c.Cfg.SchemaFile); errors.Is(err, fs.ErrNotExist) {
		c.Logger.Debug("no schema file", slog.String("path", c.Cfg.SchemaFile))
		return registry.NewRelationRegistry(), nil
	}
	_, reg, err := c.LoadSchema()
	return reg, err
}

// WithSession connects to target, runs fn and releases the session.
func (c *CommandContext) WithSession(ctx context.Context, target *config.TargetConfig, fn func(ctx context.Context, s *session.Session) error) error {
	cc := target.ConnectionConfig()
	eng, err := engine.NewEngine(cc, c.Logger)
	if err != nil {
		return err
	}
	return session.With(ctx, eng, cc, c.Logger, fn)
}
