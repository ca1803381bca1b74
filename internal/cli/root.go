package cli

import (
	"net/http"

	"github.com/alexanderramin/itinera/internal/advice"
	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/alexanderramin/itinera/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Trips    service.TripService
	Optimize service.OptimizeService
	Replan   service.ReplanService
	Segments service.SegmentService

	// Advisor is optional; nil skips explanations and tips.
	Advisor advice.Advisor

	// Handler and Addr back the serve command. A nil Handler hides it.
	Handler http.Handler
	Addr    string

	// IsTerminal reports whether stdout is a TTY; nil means plain output.
	IsTerminal func() bool
}

// NewRootCmd creates the top-level "itinera" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var plain bool

	root := &cobra.Command{
		Use:           "itinera",
		Short:         "Trip itinerary optimizer",
		Long:          "Pick transport, stays and activities that fit a budget and your cost/time/comfort weights, and replan when things change.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			tty := app.IsTerminal != nil && app.IsTerminal()
			formatter.ConfigureOutput(cmd.OutOrStdout(), plain || !tty)
		},
	}
	root.PersistentFlags().BoolVar(&plain, "plain", false, "Disable colors")

	root.AddCommand(
		newTripCmd(app),
		newOptimizeCmd(app),
		newReplanCmd(app),
		newEventCmd(app),
		newSegmentCmd(app),
	)
	if app.Handler != nil {
		root.AddCommand(newServeCmd(app))
	}

	return root
}
