package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/fleetops/internal/app"
)

var errNeedsPostgres = errors.New("migrations require the postgres store backend")

func newMigrateCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withProvider := func(run func(cmd *cobra.Command, p *goose.Provider) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if err := c.setup(cmd); err != nil {
				return err
			}
			if c.store.Pool == nil {
				return errNeedsPostgres
			}
			p, closeDB, err := app.Migrator(c.store.Pool)
			if err != nil {
				return err
			}
			defer closeDB()
			return run(cmd, p)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withProvider(func(cmd *cobra.Command, p *goose.Provider) error {
				results, err := p.Up(cmd.Context())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
					return nil
				}
				t := newTable("VERSION", "FILE", "DURATION")
				for _, r := range results {
					t.AddRow(r.Source.Version, r.Source.Path, r.Duration.Round(time.Millisecond))
				}
				render(cmd.OutOrStdout(), t)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withProvider(func(cmd *cobra.Command, p *goose.Provider) error {
				r, err := p.Down(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d (%s)\n", r.Source.Version, r.Source.Path)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: withProvider(func(cmd *cobra.Command, p *goose.Provider) error {
				statuses, err := p.Status(cmd.Context())
				if err != nil {
					return err
				}
				t := newTable("VERSION", "FILE", "STATE", "APPLIED AT")
				for _, s := range statuses {
					applied := "-"
					if !s.AppliedAt.IsZero() {
						applied = s.AppliedAt.Format(time.RFC3339)
					}
					t.AddRow(s.Source.Version, s.Source.Path, s.State, applied)
				}
				render(cmd.OutOrStdout(), t)
				return nil
			}),
		},
	)
	return cmd
}
