package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/naveenspark/vendora/internal/config"
	"github.com/naveenspark/vendora/internal/logging"
	"github.com/naveenspark/vendora/internal/tui"
	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/guard"
	"github.com/naveenspark/vendora/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, d := newRootCmd()
	if err := execute(ctx, root, d); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs root and releases the log file whether or not the command
// failed; cobra skips post-run hooks after a RunE error.
func execute(ctx context.Context, root *cobra.Command, d *deps) error {
	defer d.close()
	return root.ExecuteContext(ctx)
}

var errSignedOut = errors.New("not signed in: run `vendora login`")

type globalFlags struct {
	configPath string
	verbose    bool
	jsonOut    bool
}

// deps is the backend stack shared by every command. It is built once the
// flags are parsed.
type deps struct {
	flags    globalFlags
	cfg      *config.Config
	log      logrus.FieldLogger
	closeLog func()
	store    *session.Store
	guard    *guard.Guard
	api      *api.Client
}

func newRootCmd() (*cobra.Command, *deps) {
	d := &deps{}
	root := &cobra.Command{
		Use:           "vendora",
		Short:         "Admin console for the Vendora multi-vendor platform",
		Long:          "Vendora manages businesses, products, orders and users of a Vendora backend.\nRun without a command to open the interactive console.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return d.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.runTUI()
		},
	}
	root.PersistentFlags().StringVar(&d.flags.configPath, "config", "", "config file (default ~/.vendora/config.yaml)")
	root.PersistentFlags().BoolVarP(&d.flags.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().BoolVar(&d.flags.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newLoginCmd(d),
		newLogoutCmd(d),
		newWhoamiCmd(d),
		newDashboardCmd(d),
		newOrdersCmd(d),
		newBusinessesCmd(d),
		newProductsCmd(d),
		newMealsCmd(d),
		newSubgroupsCmd(d),
		newUsersCmd(d),
		newVersionCmd(),
	)
	return root, d
}

func (d *deps) init(cmd *cobra.Command) error {
	cfg, err := config.Load(d.flags.configPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if d.flags.verbose {
		level = "debug"
	}
	// The console owns the terminal, so it always logs to the file.
	log, closeLog, err := logging.New(logging.Options{
		Level:  level,
		File:   cfg.Log.File,
		Stderr: d.flags.verbose && cmd != cmd.Root(),
	})
	if err != nil {
		return err
	}

	entry := log.WithField("cmd", cmd.CommandPath())
	c := client.New(cfg.API.URL, client.WithTimeout(cfg.API.Timeout), client.WithLogger(entry))
	store := session.New(session.NewFileStorage(cfg.Session.File),
		session.WithMaxIdle(cfg.Session.MaxIdle),
		session.WithLogger(entry),
	)

	d.cfg = cfg
	d.log = entry
	d.closeLog = closeLog
	d.store = store
	d.guard = guard.New(c, store, entry)
	d.api = api.New(d.guard)
	return nil
}

func (d *deps) close() {
	if d.closeLog != nil {
		d.closeLog()
		d.closeLog = nil
	}
}

// token returns the token a command should send: VENDORA_TOKEN when set,
// else the stored session token.
func (d *deps) token() (string, error) {
	if d.cfg.Token != "" {
		return d.cfg.Token, nil
	}
	tok, err := d.guard.Require()
	if err != nil {
		return "", errSignedOut
	}
	return tok, nil
}

func (d *deps) runTUI() error {
	env := &tui.Env{
		API:           d.api,
		Session:       d.store,
		Log:           d.log,
		TokenOverride: d.cfg.Token,
		PageSize:      d.cfg.UI.PageSize,
		APIURL:        d.cfg.API.URL,
	}
	if err := tui.Run(env, d.guard, tui.Options{SearchDebounce: d.cfg.UI.SearchDebounce}); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config or session is needed to print the version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "vendora "+version)
		},
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
