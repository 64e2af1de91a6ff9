package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"patientboard/internal/endpoint"
	"patientboard/internal/format"
	"patientboard/internal/logging"
	"patientboard/internal/model"
	"patientboard/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Server     string
	BoardPath  string
	LiveURL    string
	Kind       string
	HomeID     int64
	Debug      bool
	PrettyJSON bool
	Format     string

	store    store.Store
	cfg      *store.GlobalConfig
	log      zerolog.Logger
	closeLog func() error
}

func NewRootCmd() *cobra.Command {
	app := &App{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "patientboard",
		Short:        "Patient dashboard board (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Drag patients between homes in the terminal
  patientboard --server https://care.example.org --board board.json

  # Follow the server's live board instead of a file
  patientboard --server https://care.example.org --live wss://care.example.org/board/ws

  # Scriptable changes
  patientboard reorder 4 1 3 2
  patientboard transfer --patient 1 --from 1: --to 2:1,5

  # Resend notifications that failed
  patientboard outbox retry
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive board.
			if len(args) == 0 {
				return runBoard(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PATIENTBOARD_DIR", ""), "State dir (config, sqlite state, log); default ~/.patientboard")
	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("PATIENTBOARD_SERVER", ""), "Dashboard server base URL (overrides serverUrl in config.json)")
	cmd.PersistentFlags().StringVar(&app.BoardPath, "board", envOr("PATIENTBOARD_BOARD", ""), "Board snapshot file (.json or .yaml)")
	cmd.PersistentFlags().StringVar(&app.LiveURL, "live", envOr("PATIENTBOARD_LIVE", ""), "Websocket URL pushing board snapshots")
	cmd.PersistentFlags().StringVar(&app.Kind, "kind", envOr("PATIENTBOARD_KIND", ""), "Board kind (patients|species)")
	cmd.PersistentFlags().Int64Var(&app.HomeID, "home", 0, "Home id for species boards")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Debug logging")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PATIENTBOARD_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newReorderCmd(app))
	cmd.AddCommand(newTransferCmd(app))
	cmd.AddCommand(newOutboxCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup opens the state dir, merges flags over config.json and starts the
// file logger.
func (app *App) setup(cmd *cobra.Command) error {
	st, err := store.Open(app.Dir)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.store = st

	cfg, err := store.LoadConfigAt(filepath.Join(st.Dir, "config.json"))
	if err != nil {
		return writeErr(cmd, err)
	}
	if s := strings.TrimSpace(app.Server); s != "" {
		cfg.ServerURL = s
	}
	if k := strings.TrimSpace(app.Kind); k != "" {
		cfg.BoardKind = k
	}
	if app.HomeID > 0 {
		cfg.HomeID = app.HomeID
	}
	app.cfg = cfg

	l, closeFn, err := logging.Setup(logging.Config{Path: st.LogPath(), Debug: app.Debug})
	if err != nil {
		// Logging is best effort; the commands still work.
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: log disabled: %v\n", err)
	}
	app.log = l.With().Str("cmd", cmd.CommandPath()).Logger()
	app.closeLog = closeFn
	return nil
}

func (app *App) boardKind() (model.BoardKind, error) {
	return app.cfg.Kind()
}

// client builds the server client. Failed requests land in the outbox.
func (app *App) client() (*endpoint.Client, error) {
	if err := app.cfg.Validate(); err != nil {
		return nil, err
	}
	kind, err := app.boardKind()
	if err != nil {
		return nil, err
	}
	hc := endpoint.DefaultHTTPConfig()
	hc.Timeout = app.cfg.RequestTimeout()
	return endpoint.New(app.cfg.ServerURL,
		endpoint.WithHTTPClient(endpoint.NewHTTPClient(hc)),
		endpoint.WithLogger(app.log),
		endpoint.WithBoardKind(kind),
		endpoint.WithHome(app.cfg.HomeID),
		endpoint.WithRecorder(outboxRecorder{store: app.store}),
	)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
