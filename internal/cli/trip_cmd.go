package cli

import (
	"fmt"

	"github.com/alexanderramin/itinera/internal/advice"
	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/spf13/cobra"
)

func newTripCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trip",
		Aliases: []string{"trips"},
		Short:   "Create, inspect and tune trips",
	}

	cmd.AddCommand(
		newTripCreateCmd(app),
		newTripListCmd(app),
		newTripShowCmd(app),
		newTripPrefsCmd(app),
		newTripPreviewCmd(app),
		newTripSuggestCmd(app),
		newTripDeleteCmd(app),
	)

	return cmd
}

func newTripCreateCmd(a *App) *cobra.Command {
	var (
		req     app.CreateTripRequest
		caps    = capsValue{}
		cost    float64
		timeW   float64
		comfort float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft trip with a budget and optional per-category caps",
		Example: `  itinera trip create --from Delhi --to Goa --start 2025-07-01 --end 2025-07-05 \
    --budget 50000 --cap transport=20000 --cap stay=20000 --cap activity=10000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Caps = caps
			if cmd.Flags().Changed("cost") || cmd.Flags().Changed("time") || cmd.Flags().Changed("comfort") {
				req.Preferences = &domain.Preferences{WeightCost: cost, WeightTime: timeW, WeightComfort: comfort}
			}

			trip, err := a.Trips.Create(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.StyleGreen.Render("Created trip"))
			fmt.Fprint(out, formatter.FormatTripHeader(trip))
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("\n  Next: itinera trip show %s", trip.ID[:8])))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Trip title (default \"<from> to <to>\")")
	cmd.Flags().StringVar(&req.Origin, "from", "", "Origin city")
	cmd.Flags().StringVar(&req.Destination, "to", "", "Destination city")
	cmd.Flags().StringVar(&req.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.EndDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Currency, "currency", domain.DefaultCurrency, "ISO currency code")
	cmd.Flags().Float64Var(&req.TotalBudget, "budget", 0, "Total budget")
	cmd.Flags().Var(caps, "cap", "Per-category cap, repeatable (transport|stay|activity|misc)")
	cmd.Flags().Float64Var(&cost, "cost", 0, "Cost weight")
	cmd.Flags().Float64Var(&timeW, "time", 0, "Time weight")
	cmd.Flags().Float64Var(&comfort, "comfort", 0, "Comfort weight")
	for _, name := range []string{"from", "to", "start", "end", "budget"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newTripListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List trips",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trips, err := app.Trips.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTripList(trips))
			return nil
		},
	}
}

func newTripShowCmd(a *App) *cobra.Command {
	var noOptimize, explain, tips bool

	cmd := &cobra.Command{
		Use:   "show <trip>",
		Short: "Show a trip's itinerary and spend, optimizing drafts first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			tripID, err := resolveTripID(ctx, a, args[0])
			if err != nil {
				return err
			}
			trip, err := a.Trips.GetByID(ctx, tripID)
			if err != nil {
				return err
			}

			if trip.Status == domain.TripDraft && !noOptimize {
				resp, err := a.Optimize.Optimize(ctx, app.OptimizeRequest{TripID: tripID})
				if err != nil {
					return fmt.Errorf("optimizing draft trip: %w", err)
				}
				if issues := formatter.FormatIssues(resp.Infeasible); issues != "" {
					fmt.Fprint(cmd.ErrOrStderr(), issues)
				}
			}

			sum, err := a.Trips.Summary(ctx, tripID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatSummary(sum))

			if a.Advisor == nil {
				return nil
			}
			if explain {
				in := advice.ExplainInput{
					Origin:      sum.Trip.Origin,
					Destination: sum.Trip.Destination,
					Currency:    sum.Trip.Currency,
					Segments:    sum.Segments,
				}
				if sum.Preferences != nil {
					in.Preferences = *sum.Preferences
				}
				fmt.Fprint(out, formatter.FormatExplanation(a.Advisor.Explain(ctx, in)))
			}
			if tips {
				fmt.Fprint(out, formatter.FormatWeatherTips(
					a.Advisor.WeatherAndTips(ctx, sum.Trip.Destination, sum.Trip.StartDate, sum.Trip.EndDate)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "Do not optimize a draft trip before showing it")
	cmd.Flags().BoolVar(&explain, "explain", false, "Explain the trade-offs behind the plan")
	cmd.Flags().BoolVar(&tips, "tips", false, "Show weather outlook and packing tips")

	return cmd
}

func newTripPrefsCmd(a *App) *cobra.Command {
	var (
		dim   = weightValue(domain.WeightCost)
		value float64
	)

	cmd := &cobra.Command{
		Use:     "prefs <trip>",
		Short:   "Set one weight and split the rest evenly between the other two",
		Example: `  itinera trip prefs 3f2a --weight cost --value 0.6`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tripID, err := resolveTripID(ctx, a, args[0])
			if err != nil {
				return err
			}
			prefs, err := a.Trips.AdjustPreference(ctx, tripID, domain.WeightDimension(dim), value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Weights "+formatter.FormatPreferences(prefs))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("  Run `itinera optimize` to apply them."))
			return nil
		},
	}

	cmd.Flags().Var(&dim, "weight", "Weight to set (cost|time|comfort)")
	cmd.Flags().Float64Var(&value, "value", 0, "New weight in [0,1]")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newTripPreviewCmd(a *App) *cobra.Command {
	var cost, timeW, comfort float64

	cmd := &cobra.Command{
		Use:   "preview <trip>",
		Short: "Compare the current plan with one optimized under other weights",
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
			resp, err := a.Optimize.Preview(ctx, app.PreviewRequest{
				TripID:        tripID,
				WeightCost:    cost,
				WeightTime:    timeW,
				WeightComfort: comfort,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPreview(resp, trip.Currency))
			return nil
		},
	}

	cmd.Flags().Float64Var(&cost, "cost", 0, "Cost weight")
	cmd.Flags().Float64Var(&timeW, "time", 0, "Time weight")
	cmd.Flags().Float64Var(&comfort, "comfort", 0, "Comfort weight")
	for _, name := range []string{"cost", "time", "comfort"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newTripSuggestCmd(a *App) *cobra.Command {
	var (
		interests []string
		budget    float64
	)

	cmd := &cobra.Command{
		Use:     "suggest <trip>",
		Short:   "Add activity ideas matching your interests to the quote pool",
		Example: `  itinera trip suggest 3f2a --interest food --interest history --budget 2500`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tripID, err := resolveTripID(ctx, a, args[0])
			if err != nil {
				return err
			}
			quotes, err := a.Trips.SuggestActivities(ctx, app.SuggestActivitiesRequest{
				TripID:    tripID,
				Interests: interests,
				Budget:    budget,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSuggestions(quotes))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&interests, "interest", nil, "Interest to plan around (repeatable)")
	cmd.Flags().Float64Var(&budget, "budget", 0, "Price ceiling per activity (default: activity cap or trip budget)")

	return cmd
}

func newTripDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trip>",
		Short: "Delete a trip with its quotes, segments and events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tripID, err := resolveTripID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Trips.Delete(ctx, tripID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted trip %s\n", tripID)
			return nil
		},
	}
}
