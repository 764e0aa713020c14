package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/calcam/internal/core/history"
	"github.com/hay-kot/calcam/internal/printer"
	"github.com/hay-kot/calcam/internal/styles"
)

type HistoryCmd struct {
	flags *Flags

	// Command-specific flags
	clear bool
	yes   bool
	json  bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "View or clear your meal history",
		UsageText: "calcam history [options]",
		Description: `View or clear the history of estimated meals.

By default, lists recorded meals newest first with their items and calories.
Use --clear to remove every entry.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "clear",
				Aliases:     []string{"c"},
				Usage:       "clear all meal history",
				Destination: &cmd.clear,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt when clearing",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output history as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.flags.requireSession(ctx); err != nil {
		return err
	}

	cmd.flags.History.Hydrate(ctx)

	if cmd.clear {
		return cmd.runClear(ctx, printer.Ctx(ctx))
	}

	return cmd.runList(ctx, c)
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	entries := cmd.flags.History.Entries()

	if cmd.json {
		if entries == nil {
			entries = []history.Entry{}
		}
		return writeJSON(c.Root().Writer, entries)
	}

	if len(entries) == 0 {
		printer.Ctx(ctx).Infof("No meals logged yet. Run 'calcam estimate <photo>' to add one")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tITEMS\tCALORIES\tIMAGE")

	for _, e := range entries {
		items := e.ItemNames()
		if r := []rune(items); len(r) > 50 {
			items = string(r[:47]) + "..."
		}

		image := "-"
		if e.HasImage() {
			image = "this session"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Date.Local().Format("2006-01-02 15:04"),
			items,
			printer.Kcal(e.TotalCalories),
			image,
		)
	}

	return w.Flush()
}

func (cmd *HistoryCmd) runClear(ctx context.Context, p *printer.Printer) error {
	n := len(cmd.flags.History.Entries())
	if n == 0 {
		p.Infof("History is already empty")
		return nil
	}

	if !cmd.yes {
		if !isTerminal(os.Stdin) {
			return fmt.Errorf("refusing to clear history without confirmation; pass --yes")
		}

		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Clear %d meal(s) from history?", n)).
				Description("This cannot be undone.").
				Affirmative("Clear").
				Negative("Cancel").
				Value(&confirmed),
		)).WithTheme(styles.FormTheme()).Run()
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("Cancelled")
			return nil
		}
	}

	cmd.flags.History.Clear(ctx)
	p.Successf("Meal history cleared")
	return nil
}
