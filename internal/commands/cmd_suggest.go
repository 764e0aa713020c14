package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/calcam/internal/printer"
)

type SuggestCmd struct {
	flags *Flags
	json  bool
}

// NewSuggestCmd creates a new suggest command
func NewSuggestCmd(flags *Flags) *SuggestCmd {
	return &SuggestCmd{flags: flags}
}

// Register adds the suggest command to the application
func (cmd *SuggestCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "suggest",
		Usage:       "Suggest common accompaniments for a food",
		UsageText:   "calcam suggest [options] <food>",
		Description: "Asks the model for foods commonly served with the given food.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output suggestions as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SuggestCmd) run(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.flags.requireSession(ctx); err != nil {
		return err
	}

	food := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(food) == "" {
		return fmt.Errorf("a food is required. Usage: calcam suggest <food>")
	}

	suggestions, err := cmd.flags.Service.Suggest(ctx, food)
	if err != nil {
		return fmt.Errorf("suggest accompaniments: %w", err)
	}

	if cmd.json {
		return writeJSON(c.Root().Writer, struct {
			Food           string   `json:"food"`
			Accompaniments []string `json:"accompaniments"`
		}{Food: strings.TrimSpace(food), Accompaniments: suggestions})
	}

	p := printer.Ctx(ctx)
	if len(suggestions) == 0 {
		p.Infof("No accompaniments suggested for %s", food)
		return nil
	}

	p.Section("Goes well with " + strings.TrimSpace(food))
	for _, s := range suggestions {
		_, _ = fmt.Fprintf(c.Root().Writer, "  %s %s\n", printer.Dot, s)
	}
	return nil
}
