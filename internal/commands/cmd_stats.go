package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/calcam/internal/printer"
)

type StatsCmd struct {
	flags *Flags
	json  bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags) *StatsCmd {
	return &StatsCmd{flags: flags}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "stats",
		Usage:       "Show calorie statistics from your meal history",
		UsageText:   "calcam stats [options]",
		Description: "Shows calories logged today, the daily average over the last seven days, and totals.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output statistics as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.flags.requireSession(ctx); err != nil {
		return err
	}

	st := cmd.flags.Service.Stats(ctx, time.Now())

	if cmd.json {
		return writeJSON(c.Root().Writer, st)
	}

	p := printer.Ctx(ctx)
	if st.MealsLogged == 0 {
		p.Infof("No meals logged yet. Run 'calcam estimate <photo>' to add one")
		return nil
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintf(out, "%-22s %s\n", "Calories today", p.Bold(printer.Kcal(st.CaloriesToday)))
	_, _ = fmt.Fprintf(out, "%-22s %s\n", "Daily average (7 days)", p.Bold(printer.Kcal(st.DailyAverageWeek)))
	_, _ = fmt.Fprintf(out, "%-22s %d\n", "Meals logged", st.MealsLogged)
	_, _ = fmt.Fprintf(out, "%-22s %s\n", "Total logged", printer.Kcal(st.TotalCalories))
	return nil
}
