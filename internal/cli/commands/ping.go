package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/tiersql/internal/cli/config"
	"github.com/leapstack-labs/tiersql/internal/cli/output"
	"github.com/leapstack-labs/tiersql/pkg/results"
	"github.com/leapstack-labs/tiersql/pkg/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelPings bounds concurrent sessions for ping --all.
const maxParallelPings = 4

// PingOptions holds options for the ping command.
type PingOptions struct {
	All bool
}

// pingResult is the outcome of pinging one environment.
type pingResult struct {
	Environment string        `json:"environment"`
	Engine      string        `json:"engine"`
	OK          bool          `json:"ok"`
	Latency     time.Duration `json:"latency_ns"`
	Error       string        `json:"error,omitempty"`
}

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	opts := &PingOptions{}

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the target database",
		Long: `Open a session to the target, connect and run SELECT 1.

With --all, every configured environment is pinged concurrently, each
through its own session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPing(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Ping every configured environment")
	return cmd
}

func runPing(cmd *cobra.Command, opts *PingOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	envs := []string{cfg.Environment}
	if opts.All {
		if names := cfg.EnvironmentNames(); len(names) > 0 {
			envs = names
		}
	}

	pings := make([]pingResult, len(envs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxParallelPings)
	for i, env := range envs {
		target := cfg.Target
		if env != cfg.Environment {
			target = cfg.TargetFor(env)
		}
		g.Go(func() error {
			pings[i] = pingTarget(ctx, cmdCtx, env, target)
			return nil
		})
	}
	_ = g.Wait()

	if err := renderPings(cmdCtx.Renderer, pings); err != nil {
		return err
	}

	var failed int
	for _, p := range pings {
		if !p.OK {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets unreachable", failed, len(pings))
	}
	return nil
}

func pingTarget(ctx context.Context, cmdCtx *CommandContext, env string, target *config.TargetConfig) pingResult {
	res := pingResult{Environment: env, Engine: target.Type}
	start := time.Now()

	err := cmdCtx.WithSession(ctx, target, func(ctx context.Context, s *session.Session) error {
		rs, err := s.RawQuery(ctx, "SELECT 1")
		if err != nil {
			return err
		}
		rows, err := results.Collect(rs)
		if err != nil {
			return err
		}
		if len(rows) != 1 {
			return fmt.Errorf("expected 1 row from SELECT 1, got %d", len(rows))
		}
		return nil
	})

	res.Latency = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.OK = true
	return res
}

func renderPings(r *output.Renderer, pings []pingResult) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(pings)
	}

	styles := r.Styles()
	t := newTable(r, table.Row{"Environment", "Engine", "Status", "Latency", "Error"})
	for _, p := range pings {
		status := styles.Success.Render("ok")
		if !p.OK {
			status = styles.Error.Render("failed")
		}
		t.AppendRow(table.Row{p.Environment, p.Engine, status, p.Latency.Round(time.Microsecond).String(), p.Error})
	}
	renderTableFor(r, t)
	return nil
}
