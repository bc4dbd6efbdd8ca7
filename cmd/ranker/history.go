package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/bootstrap"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/render"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past picks from the game's history page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPipeline(cmd, func(ctx context.Context, p *bootstrap.Pipeline, format render.Format) error {
				records, err := p.Picks.History(ctx, refresh)
				if err != nil {
					return err
				}
				return render.History(c.out, records, format)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch the history page")
	return cmd
}
