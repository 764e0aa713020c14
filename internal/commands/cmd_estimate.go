package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/calcam/internal/calcam"
	"github.com/hay-kot/calcam/internal/core/history"
	"github.com/hay-kot/calcam/internal/printer"
)

type EstimateCmd struct {
	flags *Flags

	// Command-specific flags
	accompaniments bool
	json           bool
}

// NewEstimateCmd creates a new estimate command
func NewEstimateCmd(flags *Flags) *EstimateCmd {
	return &EstimateCmd{flags: flags}
}

// Register adds the estimate command to the application
func (cmd *EstimateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "estimate",
		Usage:     "Estimate the calories in meal photos",
		UsageText: "calcam estimate [options] <image|glob>...",
		Description: `Identifies the food items in each photo and estimates their calories.

Each photo with at least one identified item is recorded in your meal history.
Arguments may be paths or glob patterns such as 'photos/**/*.jpg'.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "accompaniments",
				Aliases:     []string{"a"},
				Usage:       "also suggest accompaniments for every identified item",
				Destination: &cmd.accompaniments,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output results as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

type estimateResult struct {
	Path           string                 `json:"path"`
	ID             string                 `json:"id,omitempty"`
	Date           *time.Time             `json:"date,omitempty"`
	FoodItems      []history.FoodItem     `json:"foodItems,omitempty"`
	TotalCalories  float64                `json:"totalCalories"`
	Accompaniments []accompanimentsResult `json:"accompaniments,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

type accompanimentsResult struct {
	Food        string   `json:"food"`
	Suggestions []string `json:"suggestions"`
	Error       string   `json:"error,omitempty"`
}

func (cmd *EstimateCmd) run(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.flags.requireSession(ctx); err != nil {
		return err
	}

	patterns := c.Args().Slice()
	if len(patterns) == 0 {
		return fmt.Errorf("at least one image is required. Usage: calcam estimate <image|glob>...")
	}

	files, err := cmd.flags.Service.EstimateFiles(ctx, patterns)
	if err != nil {
		return err
	}

	results := make([]estimateResult, 0, len(files))
	var failed int
	for _, f := range files {
		r := estimateResult{Path: f.Path}
		switch {
		case errors.Is(f.Err, calcam.ErrNoFoodItems):
			r.FoodItems = []history.FoodItem{}
		case f.Err != nil:
			r.Error = f.Err.Error()
			failed++
		default:
			date := f.Entry.Date
			r.ID, r.Date = f.Entry.ID, &date
			r.FoodItems, r.TotalCalories = f.Entry.FoodItems, f.Entry.TotalCalories

			if cmd.accompaniments {
				for _, a := range cmd.flags.Service.Accompaniments(ctx, f.Entry.FoodItems) {
					ar := accompanimentsResult{Food: a.Food, Suggestions: a.Suggestions}
					if a.Err != nil {
						ar.Error = a.Err.Error()
					}
					r.Accompaniments = append(r.Accompaniments, ar)
				}
			}
		}
		results = append(results, r)
	}

	if cmd.json {
		if err := writeJSON(c.Root().Writer, results); err != nil {
			return err
		}
	} else {
		cmd.printResults(printer.Ctx(ctx), c.Root().Writer, results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be estimated", failed, len(results))
	}
	return nil
}

func (cmd *EstimateCmd) printResults(p *printer.Printer, out io.Writer, results []estimateResult) {
	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}

		switch {
		case r.Error != "":
			p.Errorf("%s: %s", r.Path, r.Error)
			continue
		case len(r.FoodItems) == 0:
			p.Warnf("%s: no food items identified; nothing was recorded", r.Path)
			continue
		}

		p.Section(r.Path)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "FOOD\tCALORIES")
		for _, item := range r.FoodItems {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", item.Name, printer.Kcal(item.EstimatedCalories))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", p.Bold("Total"), p.Bold(printer.Kcal(r.TotalCalories)))
		_ = w.Flush()

		if len(r.Accompaniments) > 0 {
			_, _ = fmt.Fprintln(out)
			for _, a := range r.Accompaniments {
				switch {
				case a.Error != "":
					p.FailItem(a.Food, a.Error)
				case len(a.Suggestions) == 0:
					p.WarnItem(a.Food, "no suggestions")
				default:
					p.CheckItem(a.Food, strings.Join(a.Suggestions, ", "))
				}
			}
		}

		p.Successf("Saved to history as %s", r.ID)
	}
}
