package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/calcam/internal/core/meal"
	"github.com/hay-kot/calcam/internal/printer"
)

type AnalyzeCmd struct {
	flags *Flags

	// Command-specific flags
	manual string
	json   bool
}

// NewAnalyzeCmd creates a new analyze command
func NewAnalyzeCmd(flags *Flags) *AnalyzeCmd {
	return &AnalyzeCmd{flags: flags}
}

// Register adds the analyze command to the application
func (cmd *AnalyzeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "analyze",
		Usage:     "Find nutrients your recent meals may be lacking",
		UsageText: "calcam analyze [options]",
		Description: `Analyzes your most recent meals for nutrients that may be lacking.

Use --manual to analyze a list of foods instead, one per line. Pass '-' to
read the list from stdin.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "manual",
				Aliases:     []string{"m"},
				Usage:       "file with one food per line, or '-' for stdin",
				Destination: &cmd.manual,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the analysis as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AnalyzeCmd) run(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.flags.requireSession(ctx); err != nil {
		return err
	}

	var (
		analysis meal.Analysis
		err      error
	)

	if cmd.manual != "" {
		text, readErr := cmd.readManual(c.Root().Reader)
		if readErr != nil {
			return readErr
		}
		analysis, err = cmd.flags.Service.AnalyzeManual(ctx, text)
	} else {
		analysis, err = cmd.flags.Service.AnalyzeRecent(ctx)
	}
	if err != nil {
		return fmt.Errorf("analyze meals: %w", err)
	}

	out := c.Root().Writer
	if cmd.json {
		return writeJSON(out, analysis)
	}

	_, err = io.WriteString(out, renderMarkdown(out, analysisMarkdown(analysis)))
	if err == nil && len(analysis.LackingNutrients) == 0 && analysis.GeneralFeedback == "" {
		printer.Ctx(ctx).Infof("No specific nutrient concerns found")
	}
	return err
}

func (cmd *AnalyzeCmd) readManual(stdin io.Reader) (string, error) {
	if cmd.manual != "-" {
		data, err := os.ReadFile(cmd.manual)
		if err != nil {
			return "", fmt.Errorf("read food list: %w", err)
		}
		return string(data), nil
	}

	if stdin == nil {
		stdin = os.Stdin
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("no input provided (stdin is a terminal); pass a file to --manual or pipe a food list")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read food list: %w", err)
	}
	return string(data), nil
}

// analysisMarkdown formats an analysis as a markdown report.
func analysisMarkdown(a meal.Analysis) string {
	var sb strings.Builder
	sb.WriteString("# Nutrient Analysis\n\n")

	if len(a.LackingNutrients) > 0 {
		sb.WriteString("## Potentially lacking\n\n")
		for _, n := range a.LackingNutrients {
			fmt.Fprintf(&sb, "- **%s**: %s\n", n.Nutrient, n.Suggestion)
		}
		sb.WriteString("\n")
	}

	if a.GeneralFeedback != "" {
		sb.WriteString("## Feedback\n\n")
		sb.WriteString(a.GeneralFeedback)
		sb.WriteString("\n")
	}

	return sb.String()
}
