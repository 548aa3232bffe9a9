package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thedittmer/briefly/internal/config"
	"github.com/thedittmer/briefly/internal/ui"
)

func newConfigCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and write the configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to <data-dir>/config.yaml",
		Args:  cobra.NoArgs,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.RunE = withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
		force, _ := cmd.Flags().GetBool("force")
		path := filepath.Join(app.cfg.DataDir, "config.yaml")

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.SaveConfig(app.cfg, path); err != nil {
			return err
		}
		app.success("Wrote " + path)
		return nil
	})

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
			c := app.cfg
			rows := [][2]string{
				{"data dir", c.DataDir},
				{"backend", c.BasePath()},
				{"timeout", c.Backend.Timeout.String()},
				{"page size", fmt.Sprint(c.Behavior.PageSize)},
				{"notify ttl", c.Behavior.NotifyTTL.String()},
				{"direct search", fmt.Sprint(c.Behavior.DirectSearch)},
				{"feed url", c.Behavior.FeedURL},
				{"log", c.Log.Level + " " + c.Log.Output + " " + c.Log.File.Filename},
				{"sheets credentials", c.Sheets.CredentialsFile},
			}

			fmt.Fprintln(app.out, ui.RenderHeader("Configuration"))
			for _, r := range rows {
				fmt.Fprintf(app.out, "%s %s\n", ui.DimStyle.Render(fmt.Sprintf("%-18s", r[0])), ui.TextStyle.Render(r[1]))
			}
			return nil
		}),
	}

	cmd.AddCommand(initCmd, show)
	return cmd
}
