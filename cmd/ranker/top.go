package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/app/picks"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/bootstrap"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/render"
)

func newTopCmd(c *cli) *cobra.Command {
	var (
		top, lastX, minGames int
		refresh              bool
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank every player of the season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for name, v := range map[string]int{"top": top, "last-x": lastX, "min-games": minGames} {
				if v < 0 {
					return fmt.Errorf("--%s must not be negative", name)
				}
			}
			req := picks.RankingRequest{
				TopN:     intFlag(cmd, "top", top),
				LastX:    intFlag(cmd, "last-x", lastX),
				MinGames: intFlag(cmd, "min-games", minGames),
				Refresh:  refresh,
			}
			return c.withPipeline(cmd, func(ctx context.Context, p *bootstrap.Pipeline, format render.Format) error {
				report, err := p.Picks.Rankings(ctx, req)
				message := report.Message
				switch {
				case errors.Is(err, picks.ErrNoPlayers):
					message = picks.MsgNoPlayers
				case err != nil:
					return err
				}
				return render.Rankings(c.out, report, message, c.windowLabel(cmd, lastX), format)
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&top, "top", c.cfg.Ranking.TopN, "number of players to show (0 for all)")
	f.IntVar(&lastX, "last-x", c.cfg.Ranking.LastX, "rolling window in played games")
	f.IntVar(&minGames, "min-games", c.cfg.Ranking.MinGames, "minimum season games to qualify")
	f.BoolVar(&refresh, "refresh", false, "ignore cached artifacts and refetch")
	return cmd
}
