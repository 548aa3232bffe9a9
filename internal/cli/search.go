package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/thedittmer/briefly/internal/feedsearch"
	"github.com/thedittmer/briefly/internal/models"
	"github.com/thedittmer/briefly/internal/notify"
	"github.com/thedittmer/briefly/internal/search"
	"github.com/thedittmer/briefly/internal/storage"
	"github.com/thedittmer/briefly/internal/ui"
)

func newSearchCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search news and page through the results",
		Long: `Search news by title and keywords. Without --once the results open in an
interactive pager with next/prev, new search and export commands.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().String("title", "", "Title of the search")
	cmd.Flags().String("keywords", "", "Keywords to search for")
	cmd.Flags().Bool("direct", false, "Query Google News RSS directly instead of the backend")
	cmd.Flags().Bool("once", false, "Print the first page and exit")
	cmd.Flags().String("export", "", "Write all results to this CSV file after searching")
	cmd.Flags().Bool("compact", false, "Hide article links")

	bind(v, cmd.Flags().Lookup("direct"), "behavior.direct_search")
	bind(v, cmd.Flags().Lookup("compact"), "display.compact_view")

	cmd.RunE = withApp(v, func(cmd *cobra.Command, args []string, app *App) error {
		title, _ := cmd.Flags().GetString("title")
		keywords, _ := cmd.Flags().GetString("keywords")
		once, _ := cmd.Flags().GetBool("once")
		export, _ := cmd.Flags().GetString("export")

		s := app.newSearchScreen(!once)
		defer s.banner.Stop()

		query := models.SearchQuery{Title: title, Keywords: keywords}
		hasQuery := cmd.Flags().Changed("title") || cmd.Flags().Changed("keywords")

		if !once && !hasQuery {
			var err error
			if query, err = s.promptQuery(); err != nil {
				return ignoreEOF(err)
			}
		}

		err := s.submit(cmd.Context(), query)
		if err == nil && export != "" {
			err = s.exportCSV(export)
			s.showBanner()
		}
		if once {
			return err
		}

		return ignoreEOF(s.run(cmd.Context()))
	})

	return cmd
}

// searchScreen is the terminal stand-in for the search page: the prompt is
// the form, stdout is the results container and the banner line.
type searchScreen struct {
	app      *App
	renderer *search.Renderer
	banner   *notify.Banner
	keys     ui.Keys
	out      io.Writer
}

func (a *App) newSearchScreen(withFooter bool) *searchScreen {
	var searcher search.Searcher = a.client
	if a.cfg.Behavior.DirectSearch {
		searcher = feedsearch.New(a.cfg.Behavior.FeedURL, &http.Client{Timeout: a.cfg.Backend.Timeout}, a.log)
	}

	s := &searchScreen{
		app:    a,
		banner: notify.NewBanner(a.cfg.Behavior.NotifyTTL, nil),
		out:    a.out,
		// Input is lowercased before matching, so the keys are too.
		keys: ui.Keys{
			Prev:   strings.ToLower(a.cfg.Keyboard.PrevPage),
			Next:   strings.ToLower(a.cfg.Keyboard.NextPage),
			Search: strings.ToLower(a.cfg.Keyboard.NewSearch),
			Export: strings.ToLower(a.cfg.Keyboard.ExportCSV),
			Sheets: strings.ToLower(a.cfg.Keyboard.Sheets),
			Quit:   strings.ToLower(a.cfg.Keyboard.Quit),
		},
	}

	width := ui.TerminalWidth(os.Stdout, a.cfg.Display.Width)
	compact := a.cfg.Display.CompactView

	s.renderer = search.NewRenderer(searcher, s.banner,
		search.WithPageSize(a.cfg.Behavior.PageSize),
		search.WithLogger(a.log),
		search.WithViewSink(func(v search.View) {
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, ui.RenderView(v, width, compact))
			if withFooter {
				fmt.Fprintln(s.out, ui.RenderFooter(v, s.keys))
			}
		}),
	)
	return s
}

func (s *searchScreen) submit(ctx context.Context, q models.SearchQuery) error {
	err := s.renderer.Submit(ctx, q)
	s.showBanner()
	return err
}

func (s *searchScreen) promptQuery() (models.SearchQuery, error) {
	title, err := s.app.prompt("Title")
	if err != nil {
		return models.SearchQuery{}, err
	}
	keywords, err := s.app.prompt("Keywords")
	if err != nil {
		return models.SearchQuery{}, err
	}
	return models.SearchQuery{Title: title, Keywords: keywords}, nil
}

// promptAndSubmit only fails when reading the query does; search failures
// are already on the banner.
func (s *searchScreen) promptAndSubmit(ctx context.Context) error {
	q, err := s.promptQuery()
	if err != nil {
		return err
	}
	s.submit(ctx, q)
	return nil
}

func (s *searchScreen) showBanner() {
	if line := ui.RenderBanner(s.banner.Current()); line != "" {
		fmt.Fprintln(s.out, line)
	}
}

// run is the pager loop. It returns nil on quit and io.EOF when input ends.
func (s *searchScreen) run(ctx context.Context) error {
	for {
		cmd, err := s.app.prompt(">")
		if err != nil {
			return err
		}

		switch strings.ToLower(cmd) {
		case s.keys.Next:
			s.renderer.NextPage()
		case s.keys.Prev:
			s.renderer.PreviousPage()
		case s.keys.Search:
			if err := s.promptAndSubmit(ctx); err != nil {
				return err
			}
			continue
		case s.keys.Export:
			s.exportCSV("")
		case s.keys.Sheets:
			s.exportSheets(ctx)
		case s.keys.Quit:
			return nil
		case "":
			s.renderer.Render()
		default:
			s.banner.Notify(fmt.Sprintf("Unknown command %q", cmd), notify.Warning)
		}
		s.showBanner()
	}
}

// exportCSV writes the current results to path (a timestamped file in the
// data directory when empty) and reports the outcome on the banner only;
// callers draw it.
func (s *searchScreen) exportCSV(path string) error {
	articles := s.renderer.State().Articles
	if len(articles) == 0 {
		s.banner.Notify("Nothing to export yet.", notify.Warning)
		return nil
	}

	written, err := s.app.store.ExportCSV(articles, path)
	if err != nil {
		s.app.log.Error("csv export failed", zap.Error(err))
		s.banner.Notify("Could not export results: "+err.Error(), notify.Danger)
		return err
	}
	s.banner.Notify(fmt.Sprintf("Exported %d articles to %s", len(articles), written), notify.Success)
	return nil
}

func (s *searchScreen) exportSheets(ctx context.Context) {
	articles := s.renderer.State().Articles
	if len(articles) == 0 {
		s.banner.Notify("Nothing to export yet.", notify.Warning)
		return
	}

	cfg := s.app.cfg.Sheets
	res, err := s.app.store.ExportToSheets(ctx, storage.SheetsConfig{
		CredentialsFile: cfg.CredentialsFile,
		SpreadsheetID:   cfg.SpreadsheetID,
		FolderID:        cfg.FolderID,
	}, articles)
	if err != nil {
		s.app.log.Error("sheets export failed", zap.Error(err))
		s.banner.Notify("Could not export to Google Sheets: "+err.Error(), notify.Danger)
		return
	}
	s.banner.Notify(fmt.Sprintf("Exported %d articles to %s", res.Rows, res.URL), notify.Success)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
