package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/itinera/internal/repository"
)

// resolveTripID accepts a full trip UUID or a unique prefix of one.
func resolveTripID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("trip ID is required")
	}
	trips, err := app.Trips.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}
	return matchPrefix("trip", input, ids)
}

// resolveSegmentID accepts a full segment UUID or a prefix unique across all
// trips.
func resolveSegmentID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("segment ID is required")
	}
	trips, err := app.Trips.List(ctx)
	if err != nil {
		return "", err
	}
	var ids []string
	for _, t := range trips {
		segments, err := app.Segments.ListByTrip(ctx, t.ID)
		if err != nil {
			return "", err
		}
		for _, s := range segments {
			ids = append(ids, s.ID)
		}
	}
	return matchPrefix("segment", input, ids)
}

// resolveEventID matches an event prefix within one trip.
func resolveEventID(ctx context.Context, app *App, tripID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("event ID is required")
	}
	events, err := app.Trips.ListEvents(ctx, tripID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return matchPrefix("event", input, ids)
}

func matchPrefix(kind, input string, ids []string) (string, error) {
	for _, id := range ids {
		if id == input {
			return id, nil
		}
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, input, repository.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}
