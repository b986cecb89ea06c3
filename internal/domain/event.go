package domain

import "time"

// MarketEvent is the optional active market event. Cost is a fixed overhead
// attributed to the whole event, subtracted by event-adjusted profit. At most
// one event is active at a time.
type MarketEvent struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Location  string
	Cost      float64
	CreatedAt time.Time
}
