package app

import (
	"context"
	"time"

	"github.com/furuknap/marketmaster/internal/clock"
	"github.com/furuknap/marketmaster/internal/domain"
)

type EventRepository interface {
	SetActiveEvent(ctx context.Context, event domain.MarketEvent) error
	ActiveEvent(ctx context.Context) (*domain.MarketEvent, error)
	ClearActiveEvent(ctx context.Context) error
}

// EventService manages the single active market event. Starting a new event
// replaces the previous one.
type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
	}
}

type MarketEventInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Location  string
	Cost      float64
}

func (s *EventService) StartEvent(ctx context.Context, in MarketEventInput) (domain.MarketEvent, error) {
	if in.Name == "" {
		return domain.MarketEvent{}, domain.ErrEventNameRequired
	}
	if in.Cost < 0 {
		return domain.MarketEvent{}, domain.ErrInvalidCost
	}

	event := domain.MarketEvent{
		ID:        newID(),
		Name:      in.Name,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Location:  in.Location,
		Cost:      in.Cost,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.SetActiveEvent(ctx, event); err != nil {
		return domain.MarketEvent{}, err
	}
	return event, nil
}

// ActiveEvent returns the active event, or ErrNoActiveEvent when none is set.
func (s *EventService) ActiveEvent(ctx context.Context) (domain.MarketEvent, error) {
	event, err := s.repo.ActiveEvent(ctx)
	if err != nil {
		return domain.MarketEvent{}, err
	}
	if event == nil {
		return domain.MarketEvent{}, domain.ErrNoActiveEvent
	}
	return *event, nil
}

func (s *EventService) EndEvent(ctx context.Context) error {
	return s.repo.ClearActiveEvent(ctx)
}
