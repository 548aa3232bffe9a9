package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the full command tree around its own viper
// instance, so every invocation starts from a clean configuration.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "briefly",
		Short: "Terminal client for the Briefly news platform",
		Long: `briefly searches news through a Briefly backend and pages through the
results in the terminal. It also covers the account, onboarding and admin
actions of the web dashboard.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: <data-dir>/config.yaml)")
	flags.String("data-dir", "", "Directory for config, session, logs and exports (default ~/.briefly)")
	flags.String("base-url", "", "Backend base URL (default http://localhost:8000)")
	flags.String("language", "", "Language prefix of backend pages (default en)")
	flags.String("csrf-token", "", "Send this CSRF token instead of the csrftoken cookie")
	flags.Duration("timeout", 0, "Backend request timeout (default 30s)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	bind(v, flags.Lookup("data-dir"), "data_dir")
	bind(v, flags.Lookup("base-url"), "backend.base_url")
	bind(v, flags.Lookup("language"), "backend.language")
	bind(v, flags.Lookup("csrf-token"), "backend.csrf_token")
	bind(v, flags.Lookup("timeout"), "backend.timeout")
	bind(v, flags.Lookup("log-level"), "log.level")

	rootCmd.AddCommand(
		newSearchCommand(v),
		newLoginCommand(v),
		newLogoutCommand(v),
		newAccountCommand(v),
		newOnboardCommand(v),
		newItemsCommand(v),
		newUsersCommand(v),
		newCSVCommand(v),
		newConfigCommand(v),
	)

	return rootCmd
}

// ExecuteContext runs the command tree with ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
