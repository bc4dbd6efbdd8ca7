package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/bootstrap"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/config"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/render"
)

// cli carries configuration shared by every subcommand. Flags on the root
// command override the environment-derived config.
type cli struct {
	cfg    config.Config
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
	build  func(context.Context, config.Config, *slog.Logger, *metrics.Recorder, func() time.Time) (*bootstrap.Pipeline, error)

	jsonOut bool
	output  string
}

func newRootCmd(cfg config.Config, out, errOut io.Writer) *cobra.Command {
	c := &cli{cfg: cfg, out: out, errOut: errOut, now: time.Now, build: bootstrap.Build}

	root := &cobra.Command{
		Use:          "ranker",
		Short:        "Rank NBA players by fantasy score and list pick candidates",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.BoolVar(&c.jsonOut, "json", false, "print JSON instead of a table")
	pf.StringVarP(&c.output, "output", "o", "text", "output format: text or json")
	pf.StringVar(&c.cfg.Upstream.Provider, "provider", c.cfg.Upstream.Provider, "stats provider: nbastats or fixture")
	pf.StringVar(&c.cfg.Upstream.Season, "season", c.cfg.Upstream.Season, "season to rank (YYYY-YY); default derives from today")
	pf.StringVar(&c.cfg.Cache.Backend, "cache-backend", c.cfg.Cache.Backend, "artifact store: fs, memory or redis")
	pf.StringVar(&c.cfg.Cache.Dir, "cache-dir", c.cfg.Cache.Dir, "directory for the fs cache")
	pf.StringVar(&c.cfg.History.CookieFile, "cookie-file", c.cfg.History.CookieFile, "JSON header file sent with the history request")
	pf.StringVar(&c.cfg.Logging.Level, "log-level", c.cfg.Logging.Level, "debug, info, warn or error")

	root.AddCommand(newTopCmd(c), newCandidatesCmd(c), newHistoryCmd(c))
	return root
}

func (c *cli) format() (render.Format, error) {
	if c.jsonOut {
		return render.JSON, nil
	}
	return render.ParseFormat(c.output)
}

// withPipeline builds the pipeline for one command run and closes it afterwards.
func (c *cli) withPipeline(cmd *cobra.Command, fn func(ctx context.Context, p *bootstrap.Pipeline, format render.Format) error) error {
	format, err := c.format()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(logging.Config{
		Level:   c.cfg.Logging.Level,
		Format:  c.cfg.Logging.Format,
		Service: c.cfg.ServiceName,
		Version: c.cfg.Version,
		Output:  c.errOut,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := c.build(ctx, c.cfg, logger, metrics.NewRecorder(), c.now)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			logging.Warn(logger, "cache close failed", "error", cerr)
		}
	}()
	return fn(ctx, p, format)
}

// intFlag returns the flag value only when the user set it, leaving
// defaults to the service.
func intFlag(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

// windowLabel is the rolling window size shown in table headers.
func (c *cli) windowLabel(cmd *cobra.Command, lastX int) int {
	if cmd.Flags().Changed("last-x") {
		return lastX
	}
	return c.cfg.Ranking.LastX
}
