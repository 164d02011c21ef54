package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkordes/fleetops/internal/app"
	"github.com/pkordes/fleetops/internal/config"
)

// storeOpener opens the entity store for a command. Tests swap it for one
// returning an in-memory store.
type storeOpener func(ctx context.Context, cfg config.Config) (*app.Store, error)

func openStore(ctx context.Context, cfg config.Config) (*app.Store, error) {
	return app.OpenStore(ctx, cfg)
}

// cli carries what every subcommand needs. It is filled lazily by setup so
// that --help never touches the database.
type cli struct {
	v    *viper.Viper
	open storeOpener

	cfg   config.Config
	log   *slog.Logger
	store *app.Store
}

func newRootCommand(open storeOpener) *cobra.Command {
	c := &cli{v: config.New(), open: open}

	root := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Operate the fleet dispatch backend",
		SilenceUsage:  true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.store != nil {
				c.store.Close()
			}
		},
	}

	fs := root.PersistentFlags()
	fs.String("database-url", "", "Postgres connection string (env DATABASE_URL)")
	fs.String("store", "", "store backend: postgres or memory (env STORE_BACKEND)")
	fs.String("log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	_ = c.v.BindPFlag("database_url", fs.Lookup("database-url"))
	_ = c.v.BindPFlag("store_backend", fs.Lookup("store"))
	_ = c.v.BindPFlag("log_level", fs.Lookup("log-level"))

	root.AddCommand(
		newMigrateCommand(c),
		newVehiclesCommand(c),
		newDriversCommand(c),
		newTripsCommand(c),
	)
	return root
}

// setup loads configuration and opens the store.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.store != nil {
		return nil
	}
	cfg, err := config.FromViper(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	store, err := c.open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	c.store = store
	return nil
}

// services builds the service layer over the opened store, publishing trip
// events to the configured backend like the API server does.
func (c *cli) services(cmd *cobra.Command) (*app.Services, func(), error) {
	if err := c.setup(cmd); err != nil {
		return nil, nil, err
	}
	pub, err := app.NewPublisher(cmd.Context(), c.cfg, c.log)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.NewServices(c.store, c.cfg, c.log, pub, nil)
	if err != nil {
		_ = pub.Close()
		return nil, nil, err
	}
	return svc, func() { _ = pub.Close() }, nil
}

func newTable(header ...any) *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = 40
	t.AddRow(header...)
	return t
}

func render(w io.Writer, t *uitable.Table) {
	fmt.Fprintln(w, t)
}
