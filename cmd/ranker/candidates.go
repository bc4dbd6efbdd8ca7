package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/app/picks"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/bootstrap"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/render"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/timeutil"
)

func newCandidatesCmd(c *cli) *cobra.Command {
	var (
		dates                          []string
		start                          string
		days                           int
		top, lastX, minGames, lookback int
		refresh                        bool
	)
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Rank the players who can be picked on one or more dates",
		Long: "Lists players whose team plays on each date, minus anyone picked within\n" +
			"the lookback window. Dates default to today.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := timeutil.ParseDateList(dates)
			if err != nil {
				return err
			}
			if start != "" {
				first, err := timeutil.ParseDate(start)
				if err != nil {
					return fmt.Errorf("invalid --start %q (expected YYYY-MM-DD)", start)
				}
				if days < 1 {
					return errors.New("--days must be at least 1")
				}
				targets = append(targets, timeutil.DayRange(first, days)...)
			}
			for name, v := range map[string]int{"top": top, "last-x": lastX, "min-games": minGames, "lookback": lookback} {
				if v < 0 {
					return fmt.Errorf("--%s must not be negative", name)
				}
			}

			req := picks.CandidateRequest{
				Dates:        targets,
				TopN:         intFlag(cmd, "top", top),
				LastX:        intFlag(cmd, "last-x", lastX),
				MinGames:     intFlag(cmd, "min-games", minGames),
				LookbackDays: intFlag(cmd, "lookback", lookback),
				Refresh:      refresh,
			}
			return c.withPipeline(cmd, func(ctx context.Context, p *bootstrap.Pipeline, format render.Format) error {
				reports, err := p.Picks.Candidates(ctx, req)
				if errors.Is(err, picks.ErrNoPlayers) {
					return render.Rankings(c.out, picks.RankingReport{}, picks.MsgNoPlayers, 0, format)
				}
				if err != nil {
					return err
				}
				return render.Candidates(c.out, reports, c.windowLabel(cmd, lastX), format)
			})
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&dates, "date", nil, "target date YYYY-MM-DD; repeat or comma-separate for several")
	f.StringVar(&start, "start", "", "first date of a consecutive range (YYYY-MM-DD)")
	f.IntVar(&days, "days", 1, "number of days in the --start range")
	f.IntVar(&top, "top", c.cfg.Ranking.TopN, "players to show per date (0 for all)")
	f.IntVar(&lastX, "last-x", c.cfg.Ranking.LastX, "rolling window in played games")
	f.IntVar(&minGames, "min-games", c.cfg.Ranking.MinGames, "minimum season games to qualify")
	f.IntVar(&lookback, "lookback", c.cfg.Ranking.LookbackDays, "days of pick history that exclude a player")
	f.BoolVar(&refresh, "refresh", false, "ignore cached artifacts and refetch")
	return cmd
}
