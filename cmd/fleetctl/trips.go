package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/service"
)

func newTripsCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "trips", Short: "Inspect and drive the trip lifecycle"}
	cmd.AddCommand(
		newTripsListCommand(c),
		newTripsDispatchCommand(c),
		newTripsSetStatusCommand(c),
		newTripsEventsCommand(c),
	)
	return cmd
}

func newTripsListCommand(c *cli) *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trips, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f domain.TripFilter
			if flags.status != "" {
				s, err := domain.ParseTripStatus(flags.status)
				if err != nil {
					return err
				}
				f.Status = s
			}

			svc, done, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer done()

			trips, total, err := svc.Trips.ListPaged(cmd.Context(), f, flags.params())
			if err != nil {
				return err
			}
			t := newTable("ID", "VEHICLE", "DRIVER", "CARGO", "STATUS", "CREATED")
			for _, tr := range trips {
				t.AddRow(tr.ID, tr.VehicleID, tr.DriverID, tr.CargoWeight, tr.Status, tr.CreatedAt.Format(time.RFC3339))
			}
			render(cmd.OutOrStdout(), t)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(trips), total)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newTripsDispatchCommand(c *cli) *cobra.Command {
	var (
		vehicle, driver string
		cargo           float64
		draft           bool
	)
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Validate and dispatch a new trip (or plan it with --draft)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vehicleID, err := uuid.Parse(vehicle)
			if err != nil {
				return fmt.Errorf("--vehicle: %w", err)
			}
			driverID, err := uuid.Parse(driver)
			if err != nil {
				return fmt.Errorf("--driver: %w", err)
			}

			svc, done, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer done()

			req := service.DispatchRequest{VehicleID: vehicleID, DriverID: driverID, CargoWeight: cargo}
			create := svc.Trips.Dispatch
			if draft {
				create = svc.Trips.Plan
			}
			trip, err := create(cmd.Context(), req)
			if err != nil {
				if reason, ok := domain.RejectionOf(err); ok {
					return fmt.Errorf("dispatch rejected: %s", reason)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", trip.ID, trip.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&vehicle, "vehicle", "", "vehicle id")
	cmd.Flags().StringVar(&driver, "driver", "", "driver id")
	cmd.Flags().Float64Var(&cargo, "cargo", 0, "cargo weight")
	cmd.Flags().BoolVar(&draft, "draft", false, "plan the trip as DRAFT without reserving the vehicle")
	_ = cmd.MarkFlagRequired("vehicle")
	_ = cmd.MarkFlagRequired("driver")
	_ = cmd.MarkFlagRequired("cargo")
	return cmd
}

func newTripsSetStatusCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <trip-id> <status>",
		Short: "Move a trip to DISPATCHED, COMPLETED or CANCELLED",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("trip id: %w", err)
			}
			status, err := domain.ParseTripStatus(args[1])
			if err != nil {
				return err
			}

			svc, done, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer done()

			trip, err := svc.Trips.UpdateStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", trip.ID, trip.Status)
			return nil
		},
	}
}

func newTripsEventsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "events <trip-id>",
		Short: "Show a trip's status history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("trip id: %w", err)
			}

			svc, done, err := c.services(cmd)
			if err != nil {
				return err
			}
			defer done()

			evs, err := svc.Trips.Events(cmd.Context(), id)
			if err != nil {
				return err
			}
			t := newTable("#", "FROM", "TO", "AT")
			for _, e := range evs {
				from := string(e.From)
				if from == "" {
					from = "-"
				}
				t.AddRow(e.ID, from, e.To, e.CreatedAt.Format(time.RFC3339))
			}
			render(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
