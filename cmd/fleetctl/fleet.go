package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkordes/fleetops/internal/domain"
)

type pageFlags struct {
	page, limit int
	status      string
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&f.limit, "limit", 20, "rows per page (max 100)")
	cmd.Flags().StringVar(&f.status, "status", "", "only show this status")
}

func (f *pageFlags) params() domain.PaginationParams {
	return domain.NewPaginationParams(&f.page, &f.limit)
}

func (f *pageFlags) upperStatus() string {
	return strings.ToUpper(strings.TrimSpace(f.status))
}

func newVehiclesCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "vehicles", Short: "Inspect vehicles"}

	var flags pageFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List vehicles ordered by license plate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer done()

			vehicles, total, err := svc.Vehicles.ListPaged(cmd.Context(), domain.VehicleStatus(flags.upperStatus()), flags.params())
			if err != nil {
				return err
			}
			t := newTable("ID", "PLATE", "MODEL", "CAPACITY", "STATUS")
			for _, v := range vehicles {
				t.AddRow(v.ID, v.LicensePlate, v.Model, v.MaxCapacity, v.Status)
			}
			render(cmd.OutOrStdout(), t)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(vehicles), total)
			return nil
		},
	}
	flags.register(list)
	cmd.AddCommand(list)
	return cmd
}

func newDriversCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "drivers", Short: "Inspect drivers"}

	var flags pageFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List drivers ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer done()

			drivers, total, err := svc.Drivers.ListPaged(cmd.Context(), domain.DriverStatus(flags.upperStatus()), flags.params())
			if err != nil {
				return err
			}
			t := newTable("ID", "NAME", "LICENSE", "EXPIRES", "SCORE", "STATUS")
			for _, d := range drivers {
				t.AddRow(d.ID, d.Name, d.LicenseNumber, d.LicenseExpiry.Format("2006-01-02"), d.SafetyScore, d.Status)
			}
			render(cmd.OutOrStdout(), t)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(drivers), total)
			return nil
		},
	}
	flags.register(list)
	cmd.AddCommand(list)
	return cmd
}
