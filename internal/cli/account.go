package cli

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/thedittmer/briefly/internal/backend"
	"github.com/thedittmer/briefly/internal/models"
	"github.com/thedittmer/briefly/internal/onboarding"
	"github.com/thedittmer/briefly/internal/ui"
)

func newLoginCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String("email", "", "Account email (prompted when empty)")
	cmd.Flags().String("password", "", "Account password (prompted when empty)")

	cmd.RunE = withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		var err error
		if email == "" {
			if email, err = app.prompt("Email"); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = app.promptSecret("Password"); err != nil {
				return err
			}
		}

		res, err := app.client.Login(cmd.Context(), email, password)
		if err != nil {
			app.log.Info("login failed", zap.String("email", email), zap.Error(err))
			return app.fail(err, "Login failed.")
		}

		app.log.Info("logged in", zap.String("email", email), zap.String("redirect", res.RedirectURL))
		app.success(fmt.Sprintf("Logged in as %s (next: %s)", email, res.RedirectURL))
		return nil
	})

	return cmd
}

func newLogoutCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			if err := app.client.Logout(cmd.Context()); err != nil {
				app.log.Warn("server logout failed", zap.Error(err))
				fmt.Fprintln(app.out, ui.DimStyle.Render("Could not end the server session: "+backend.UserMessage(err, err.Error())))
			}
			app.forget = true
			if err := app.store.ClearSession(); err != nil {
				return err
			}
			app.success("Logged out.")
			return nil
		}),
	}
}

func newAccountCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage account settings",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update name, position and company details",
		Args:  cobra.NoArgs,
	}
	update.Flags().String("full-name", "", "Full name")
	update.Flags().String("position", "", "Position")
	update.Flags().String("company", "", "Company")
	update.Flags().String("industry", "", "Industry")
	update.Flags().String("company-brief", "", "Short description of the company")
	update.RunE = withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
		// Only flags given on the command line are sent; the backend
		// overwrites every field it receives.
		changed := func(name string) *string {
			if !cmd.Flags().Changed(name) {
				return nil
			}
			val, _ := cmd.Flags().GetString(name)
			return &val
		}
		info := models.AccountInfo{
			FullName:     changed("full-name"),
			Position:     changed("position"),
			Company:      changed("company"),
			Industry:     changed("industry"),
			CompanyBrief: changed("company-brief"),
		}
		if info == (models.AccountInfo{}) {
			return fmt.Errorf("nothing to update: pass at least one of --full-name, --position, --company, --industry, --company-brief")
		}

		msg, err := app.client.SaveAccountInfo(cmd.Context(), info)
		if err != nil {
			return app.failWithHint(err, "Error updating account information")
		}
		app.success(msg)
		return nil
	})

	version := &cobra.Command{
		Use:   "version <user-id> <version>",
		Short: "Change the account version of a user (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			msg, err := app.client.UpdateAccountVersion(cmd.Context(), args[0], args[1])
			if err != nil {
				return app.failWithHint(err, "Error updating account version.")
			}
			app.success(msg)
			return nil
		}),
	}

	cmd.AddCommand(update, version)
	return cmd
}

func newOnboardCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Fill in the new-user form step by step",
		Long: `Walk through the new-user form. At the end of each step answer "n" for
the next step, "p" for the previous one, or "submit" on the last step.`,
		Args: cobra.NoArgs,
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			w, err := onboarding.New(onboarding.DefaultSteps)
			if err != nil {
				return err
			}

			for {
				fmt.Fprintln(app.out, ui.RenderWizardStep(w))
				for _, f := range w.Current().Fields {
					label := f.Label
					if cur := w.Value(f.Name); cur != "" {
						label = fmt.Sprintf("%s [%s]", f.Label, cur)
					}
					val, err := app.prompt(label)
					if err != nil {
						return ignoreEOF(err)
					}
					if val != "" {
						w.Set(f.Name, val)
					}
				}

				choice, err := app.prompt(wizardChoices(w))
				if err != nil {
					return ignoreEOF(err)
				}

				switch strings.ToLower(choice) {
				case "p", "prev":
					w.Prev()
				case "submit", "s":
					if !w.IsLast() {
						w.Next()
						continue
					}
					if err := w.Submit(cmd.Context(), app.client); err != nil {
						app.log.Warn("onboarding rejected", zap.Error(err))
						return app.fail(err, "An error occurred. Please try again.")
					}
					app.success("Welcome to Briefly!")
					return nil
				default:
					w.Next()
				}
			}
		}),
	}
}

func wizardChoices(w *onboarding.Wizard) string {
	switch {
	case w.IsFirst():
		return "[n]ext"
	case w.IsLast():
		return "[p]rev / [s]ubmit"
	default:
		return "[p]rev / [n]ext"
	}
}

// failWithHint is fail plus a login hint when the backend refused the session.
func (a *App) failWithHint(err error, fallback string) error {
	err = a.fail(err, fallback)
	if backend.IsHTTPStatus(err, http.StatusForbidden) || backend.IsHTTPStatus(err, http.StatusUnauthorized) {
		fmt.Fprintln(a.out, ui.DimStyle.Render("Your session may have expired; run `briefly login`."))
	}
	return err
}
