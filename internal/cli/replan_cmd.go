package cli

import (
	"fmt"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newReplanCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "replan <trip> <event>",
		Short: "Apply a recorded event and re-select only the impacted segments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tripID, err := resolveTripID(ctx, a, args[0])
			if err != nil {
				return err
			}
			eventID, err := resolveEventID(ctx, a, tripID, args[1])
			if err != nil {
				return err
			}
			return runReplan(cmd, a, tripID, eventID)
		},
	}
}

func runReplan(cmd *cobra.Command, a *App, tripID, eventID string) error {
	ctx := cmd.Context()
	trip, err := a.Trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	resp, err := a.Replan.Replan(ctx, app.ReplanRequest{TripID: tripID, EventID: eventID})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReplan(resp, trip.Currency))
	return nil
}
