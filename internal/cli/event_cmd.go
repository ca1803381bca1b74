package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/spf13/cobra"
)

func newEventCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Record and list disruptions",
	}
	cmd.AddCommand(newEventRecordCmd(app), newEventListCmd(app))
	return cmd
}

func newEventRecordCmd(app *App) *cobra.Command {
	var (
		kind     eventKindValue
		severity = severityValue(domain.SeverityInfo)
		payload  string
		replan   bool
	)

	cmd := &cobra.Command{
		Use:   "record <trip>",
		Short: "Record a delay, weather, price_change or fx_change event",
		Example: `  itinera event record 3f2a --kind delay --payload '{"segment_id":"9c1e...","delay_min":90}'
  itinera event record 3f2a --kind price_change --payload '{"quotes":{"q-1":14000}}' --replan`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tripID, err := resolveTripID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if !json.Valid([]byte(payload)) {
				return fmt.Errorf("%w: payload is not valid JSON", domain.ErrValidation)
			}

			e := &domain.Event{
				TripID:   tripID,
				Kind:     domain.EventKind(kind),
				Severity: domain.Severity(severity),
				Payload:  json.RawMessage(payload),
			}
			if err := app.Trips.RecordEvent(ctx, e); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recorded %s event %s\n", formatter.Bold(string(e.Kind)), e.ID)

			if !replan {
				fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("  Apply it with `itinera replan %s %s`.", tripID[:8], e.ID[:8])))
				return nil
			}
			return runReplan(cmd, app, tripID, e.ID)
		},
	}

	cmd.Flags().Var(&kind, "kind", "Event kind (delay|weather|price_change|fx_change)")
	cmd.Flags().Var(&severity, "severity", "Severity (info|warning|critical)")
	cmd.Flags().StringVar(&payload, "payload", "{}", "JSON payload for the event kind")
	cmd.Flags().BoolVar(&replan, "replan", false, "Replan immediately after recording")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func newEventListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list <trip>",
		Aliases: []string{"ls"},
		Short:   "List a trip's events",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tripID, err := resolveTripID(ctx, app, args[0])
			if err != nil {
				return err
			}
			events, err := app.Trips.ListEvents(ctx, tripID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEventList(events))
			return nil
		},
	}
}
