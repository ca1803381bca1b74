package cli

import (
	"fmt"

	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSegmentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "segment",
		Aliases: []string{"seg"},
		Short:   "Lock, inspect and replace itinerary segments",
	}

	cmd.AddCommand(
		newSegmentShowCmd(app),
		newSegmentLockCmd(app, true),
		newSegmentLockCmd(app, false),
		newSegmentAlternativesCmd(app),
		newSegmentReplaceCmd(app),
	)

	return cmd
}

func newSegmentShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <segment>",
		Short: "Show one segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSegmentID(ctx, app, args[0])
			if err != nil {
				return err
			}
			seg, err := app.Segments.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSegment(seg))
			return nil
		},
	}
}

func newSegmentLockCmd(app *App, locked bool) *cobra.Command {
	use, short := "lock", "Keep a segment fixed across optimize and replan"
	if !locked {
		use, short = "unlock", "Let optimize and replan change a segment again"
	}

	return &cobra.Command{
		Use:   use + " <segment>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSegmentID(ctx, app, args[0])
			if err != nil {
				return err
			}
			seg, err := app.Segments.SetLock(ctx, id, locked)
			if err != nil {
				return err
			}
			state := formatter.Dim("unlocked")
			if seg.Locked {
				state = formatter.StyleYellow.Render("locked")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", formatter.CategoryBadge(seg.Category), formatter.Bold(seg.Title), state)
			return nil
		},
	}
}

func newSegmentAlternativesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "alternatives <segment>",
		Aliases: []string{"alts"},
		Short:   "List the cheapest pool quotes that could replace a segment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSegmentID(ctx, app, args[0])
			if err != nil {
				return err
			}
			seg, err := app.Segments.GetByID(ctx, id)
			if err != nil {
				return err
			}
			quotes, err := app.Segments.ListAlternatives(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAlternatives(seg, quotes))
			return nil
		},
	}
}

func newSegmentReplaceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "replace <segment> <quote>",
		Short: "Put a pool quote on a segment, even a locked one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSegmentID(ctx, app, args[0])
			if err != nil {
				return err
			}
			seg, err := app.Segments.Replace(ctx, id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSegment(seg))
			return nil
		},
	}
}
