package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/thedittmer/briefly/internal/backend"
	"github.com/thedittmer/briefly/internal/config"
	"github.com/thedittmer/briefly/internal/logger"
	"github.com/thedittmer/briefly/internal/storage"
	"github.com/thedittmer/briefly/internal/ui"
)

// App is what every command runs against: loaded config, logger, storage
// and a backend client carrying the saved session.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *storage.Storage
	client *backend.Client
	in     *bufio.Reader
	inFile *os.File
	out    io.Writer

	// forget skips saving the session on Close.
	forget bool
}

// bind ties a flag to a config key; only flags the user set override the file.
func bind(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}

func newApp(cmd *cobra.Command, v *viper.Viper) (*App, error) {
	cfgFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(v, cfgFile)
	if err != nil {
		return nil, err
	}

	ui.ApplyTheme(cfg.Theme.Dark, cfg.Theme.AccentColor)

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	client, err := backend.New(backend.Options{
		BaseURL:   cfg.Backend.BaseURL,
		Language:  cfg.Backend.Language,
		CSRFToken: cfg.Backend.CSRFToken,
		Timeout:   cfg.Backend.Timeout,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	cookies, err := store.LoadSession(cfg.Backend.BaseURL)
	if err != nil {
		log.Warn("ignoring saved session", zap.Error(err))
	} else if len(cookies) > 0 {
		client.SetCookies(cookies)
	}

	app := &App{
		cfg:    cfg,
		log:    log,
		store:  store,
		client: client,
		in:     bufio.NewReader(cmd.InOrStdin()),
		out:    cmd.OutOrStdout(),
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		app.inFile = f
	}

	log.Debug("app ready", zap.String("command", cmd.CommandPath()), zap.String("base_path", cfg.BasePath()))
	return app, nil
}

// Close persists the backend cookies and flushes the log.
func (a *App) Close() {
	defer a.log.Sync()
	if a.forget {
		return
	}
	if err := a.store.SaveSession(a.cfg.Backend.BaseURL, a.client.Cookies()); err != nil {
		a.log.Warn("could not save session", zap.Error(err))
	}
}

func (a *App) interactive() bool {
	return a.inFile != nil && term.IsTerminal(int(a.inFile.Fd()))
}

// prompt reads one trimmed line. io.EOF is returned only when nothing was read.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.out, ui.Prompt(label))
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo on a terminal, else like prompt.
func (a *App) promptSecret(label string) (string, error) {
	if !a.interactive() {
		return a.prompt(label)
	}
	fmt.Fprint(a.out, ui.Prompt(label))
	secret, err := term.ReadPassword(int(a.inFile.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

func (a *App) success(msg string) {
	fmt.Fprintln(a.out, ui.SuccessStyle.Render(msg))
}

// fail prints the user-facing form of err and returns err for cobra.
func (a *App) fail(err error, fallback string) error {
	fmt.Fprintln(a.out, ui.ErrorStyle.Render(backend.UserMessage(err, fallback)))
	return err
}

// withApp builds the App for a command and closes it afterwards.
func withApp(v *viper.Viper, run func(cmd *cobra.Command, args []string, app *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, v)
		if err != nil {
			return err
		}
		defer app.Close()
		return run(cmd, args, app)
	}
}
