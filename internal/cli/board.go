package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"patientboard/internal/livefeed"
	"patientboard/internal/store"
	"patientboard/internal/tui"

	"github.com/spf13/cobra"
)

const liveLoadTimeout = 15 * time.Second

var errNoBoard = errors.New("no board: pass --board <file> or --live <ws url>")

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, app)
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current board snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, closeSrc, err := app.openSource(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = closeSrc() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), liveLoadTimeout)
			defer cancel()
			b, err := src.Load(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": b})
		},
	}
}

func runBoard(cmd *cobra.Command, app *App) error {
	client, err := app.client()
	if err != nil {
		return writeErr(cmd, err)
	}
	kind, err := app.boardKind()
	if err != nil {
		return writeErr(cmd, err)
	}
	src, closeSrc, err := app.openSource(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = closeSrc() }()

	opts := tui.Options{
		Source:  src,
		Sender:  client,
		Scroll:  app.store,
		Log:     app.log,
		Kind:    kind,
		Home:    app.cfg.HomeID,
		Timeout: app.cfg.RequestTimeout(),
	}
	if t := app.cfg.TUI; t != nil {
		opts.ColumnWidth = t.ColumnWidth
		opts.Glyphs = t.Glyphs
	}
	app.log.Info().Str("kind", string(kind)).Bool("live", app.LiveURL != "").Msg("board.start")
	if err := tui.Run(cmd.Context(), opts); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

// openSource picks the live feed when --live is set, else the board file.
func (app *App) openSource(ctx context.Context) (tui.Source, func() error, error) {
	noop := func() error { return nil }
	if u := strings.TrimSpace(app.LiveURL); u != "" {
		feed, err := livefeed.Dial(ctx, u, app.log)
		if err != nil {
			return nil, noop, err
		}
		return feed, feed.Close, nil
	}
	if p := strings.TrimSpace(app.BoardPath); p != "" {
		return tui.FileSource{File: store.BoardFile{Path: p}}, noop, nil
	}
	return nil, noop, errNoBoard
}
