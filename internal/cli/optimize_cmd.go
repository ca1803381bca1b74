package cli

import (
	"fmt"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newOptimizeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <trip>",
		Short: "Select the best quotes per category within budget; locked segments stay put",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tripID, err := resolveTripID(ctx, a, args[0])
			if err != nil {
				return err
			}
			trip, err := a.Trips.GetByID(ctx, tripID)
			if err != nil {
				return err
			}

			resp, err := a.Optimize.Optimize(ctx, app.OptimizeRequest{TripID: tripID})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatOptimize(resp, trip.Currency))
			return nil
		},
	}
}
