// Package cli is the warden command tree.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/warden/internal/bulk"
	"github.com/mmcdole/warden/internal/config"
	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/identity"
	"github.com/mmcdole/warden/internal/introspect"
	"github.com/mmcdole/warden/internal/log"
	"github.com/mmcdole/warden/internal/oauth2"
	"github.com/mmcdole/warden/internal/pagination"
	"github.com/mmcdole/warden/internal/store"
	"github.com/mmcdole/warden/internal/upstream"
)

// App carries configuration and lazily built services across a command run
type App struct {
	Version    string
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// isTerminal reports whether stdin is interactive
	isTerminal func() bool

	store     domain.Store
	clients   *upstream.Clients
	inspected *introspect.Store
}

// NewApp creates an App bound to the process's standard streams
func NewApp(version string) *App {
	return &App{
		Version: version,
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		inspected: introspect.NewStore(),
	}
}

// Execute runs the command tree and releases the cache afterwards
func Execute(ctx context.Context, version string) error {
	app := NewApp(version)
	defer app.Close()
	return app.RootCmd().ExecuteContext(ctx)
}

// RootCmd builds the command tree
func (a *App) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "warden",
		Short:         "Admin console for identity and OAuth2 services",
		Long:          `warden manages identities, sessions and OAuth2 clients through the Ory Kratos and Hydra admin APIs.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			a.errOut = cmd.ErrOrStderr()
			a.in = cmd.InOrStdin()
			return a.load()
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file path (default ~/.config/warden/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		a.versionCmd(),
		a.loginCmd(),
		a.identitiesCmd(),
		a.sessionsCmd(),
		a.clientsCmd(),
		a.tokensCmd(),
		a.cacheCmd(),
	)
	return root
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the warden version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("warden %s\n", a.Version)
		},
	}
}

func (a *App) load() error {
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "DEBUG"
	}
	a.cfg = cfg

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// Close releases the cache database
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *App) openStore() (domain.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.NewCacheStore(a.cfg.Cache.Dir, a.cfg.Identity.URL)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

func (a *App) upstreams() (*upstream.Clients, error) {
	if a.clients != nil {
		return a.clients, nil
	}
	clients, err := upstream.NewClients(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.clients = clients
	return clients, nil
}

func (a *App) limits() pagination.Limits {
	return pagination.Limits{
		PageSize:  a.cfg.Pagination.PageSize,
		MaxPages:  a.cfg.Pagination.MaxPages,
		PageDelay: a.cfg.Pagination.PageDelay,
	}
}

func (a *App) identityService() (*identity.Service, domain.Store, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}
	clients, err := a.upstreams()
	if err != nil {
		return nil, nil, err
	}
	return identity.NewService(clients.Identity, st, a.limits(), a.logger), st, nil
}

func (a *App) oauth2Service() (*oauth2.Service, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	clients, err := a.upstreams()
	if err != nil {
		return nil, err
	}
	return oauth2.NewService(clients.OAuth2, st, a.inspected, a.limits(), a.logger), nil
}

func (a *App) bulkEngine() (*bulk.Engine, domain.Store, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}
	clients, err := a.upstreams()
	if err != nil {
		return nil, nil, err
	}
	return bulk.NewEngine(bulk.NewDispatcher(clients.Identity), st, a.logger), st, nil
}

// Prefix printers write status lines to stderr so stdout stays clean for piping
func (a *App) info() *pterm.PrefixPrinter    { return pterm.Info.WithWriter(a.errOut) }
func (a *App) success() *pterm.PrefixPrinter { return pterm.Success.WithWriter(a.errOut) }
func (a *App) warning() *pterm.PrefixPrinter { return pterm.Warning.WithWriter(a.errOut) }
func (a *App) failure() *pterm.PrefixPrinter { return pterm.Error.WithWriter(a.errOut) }
