package service

import (
	"context"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
)

type TripService interface {
	Create(ctx context.Context, req app.CreateTripRequest) (*domain.Trip, error)
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	List(ctx context.Context) ([]*domain.Trip, error)
	Delete(ctx context.Context, id string) error
	AdjustPreference(ctx context.Context, tripID string, dim domain.WeightDimension, value float64) (*domain.Preferences, error)
	Summary(ctx context.Context, tripID string) (*app.TripSummary, error)
	RecordEvent(ctx context.Context, e *domain.Event) error
	ListEvents(ctx context.Context, tripID string) ([]*domain.Event, error)
	SuggestActivities(ctx context.Context, req app.SuggestActivitiesRequest) ([]*domain.Quote, error)
}

type OptimizeService interface {
	Optimize(ctx context.Context, req app.OptimizeRequest) (*app.OptimizeResponse, error)
	Preview(ctx context.Context, req app.PreviewRequest) (*app.PreviewResponse, error)
}

type ReplanService interface {
	Replan(ctx context.Context, req app.ReplanRequest) (*app.ReplanResponse, error)
}

type SegmentService interface {
	GetByID(ctx context.Context, id string) (*domain.Segment, error)
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Segment, error)
	SetLock(ctx context.Context, segmentID string, locked bool) (*domain.Segment, error)
	ListAlternatives(ctx context.Context, segmentID string) ([]*domain.Quote, error)
	Replace(ctx context.Context, segmentID, quoteID string) (*domain.Segment, error)
}
