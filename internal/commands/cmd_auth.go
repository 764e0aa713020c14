package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/calcam/internal/core/validate"
	"github.com/hay-kot/calcam/internal/printer"
	"github.com/hay-kot/calcam/internal/styles"
)

type AuthCmd struct {
	flags *Flags
	email string
}

// NewAuthCmd creates the login, logout, and whoami commands
func NewAuthCmd(flags *Flags) *AuthCmd {
	return &AuthCmd{flags: flags}
}

// Register adds the login, logout, and whoami commands to the application
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:        "login",
			Usage:       "Sign in to calcam",
			UsageText:   "calcam login [--email <address>]",
			Description: "Signs in with an email address. Meal commands require a signed-in user.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "email",
					Aliases:     []string{"e"},
					Usage:       "email address to sign in with (prompts when omitted)",
					Sources:     cli.EnvVars("CALCAM_EMAIL"),
					Destination: &cmd.email,
				},
			},
			Action: cmd.login,
		},
		&cli.Command{
			Name:      "logout",
			Usage:     "Sign out of calcam",
			UsageText: "calcam logout",
			Action:    cmd.logout,
		},
		&cli.Command{
			Name:      "whoami",
			Usage:     "Show the signed-in user",
			UsageText: "calcam whoami",
			Action:    cmd.whoami,
		},
	)

	return app
}

func (cmd *AuthCmd) login(ctx context.Context, _ *cli.Command) error {
	email := cmd.email
	if email == "" {
		if !isTerminal(os.Stdin) {
			return fmt.Errorf("no email provided; pass --email")
		}

		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&email).
				Validate(validate.Email),
		)).WithTheme(styles.FormTheme()).Run()
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
	}

	s, err := cmd.flags.Auth.SignIn(ctx, email)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	printer.Ctx(ctx).Successf("Signed in as %s", s.Email)
	return nil
}

func (cmd *AuthCmd) logout(ctx context.Context, _ *cli.Command) error {
	if err := cmd.flags.Auth.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	printer.Ctx(ctx).Successf("Signed out")
	return nil
}

func (cmd *AuthCmd) whoami(ctx context.Context, c *cli.Command) error {
	s, err := cmd.flags.Auth.RequireSession(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s (signed in %s)\n", s.Email, s.SignedInAt.Local().Format("2006-01-02 15:04"))
	return nil
}
