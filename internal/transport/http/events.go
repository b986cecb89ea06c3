package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/furuknap/marketmaster/internal/app"
	"github.com/furuknap/marketmaster/internal/domain"
)

// EventService manages the single active market event.
type EventService interface {
	StartEvent(ctx context.Context, in app.MarketEventInput) (domain.MarketEvent, error)
	ActiveEvent(ctx context.Context) (domain.MarketEvent, error)
	EndEvent(ctx context.Context) error
}

// HandleActiveEvent serves /events/active: GET the active event, POST to
// start one (replacing any previous), DELETE to end it.
func HandleActiveEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getActiveEvent(svc, w, r)
		case http.MethodPost:
			startEvent(svc, w, r)
		case http.MethodDelete:
			endEvent(svc, w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func getActiveEvent(svc EventService, w http.ResponseWriter, r *http.Request) {
	event, err := svc.ActiveEvent(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveEvent) {
			writeError(w, http.StatusNotFound, codeNoActiveEvent, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func startEvent(svc EventService, w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	in := app.MarketEventInput{
		Name:     req.Name,
		Location: req.Location,
		Cost:     req.Cost,
	}
	var err error
	if in.StartDate, err = parseDate(req.StartDate); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid start_date")
		return
	}
	if in.EndDate, err = parseDate(req.EndDate); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid end_date")
		return
	}

	event, err := svc.StartEvent(r.Context(), in)
	if err != nil {
		writeEventError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func endEvent(svc EventService, w http.ResponseWriter, r *http.Request) {
	if err := svc.EndEvent(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNameRequired):
		writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidCost):
		writeError(w, http.StatusBadRequest, codeInvalidCost, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

// parseDate accepts the date-only form used by the UI as well as RFC 3339.
// Empty is allowed: events do not require explicit dates.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type eventRequest struct {
	Name      string  `json:"name"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Location  string  `json:"location"`
	Cost      float64 `json:"cost"`
}

type eventResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate string    `json:"start_date,omitempty"`
	EndDate   string    `json:"end_date,omitempty"`
	Location  string    `json:"location,omitempty"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

func toEventResponse(event domain.MarketEvent) eventResponse {
	out := eventResponse{
		ID:        event.ID,
		Name:      event.Name,
		Location:  event.Location,
		Cost:      event.Cost,
		CreatedAt: event.CreatedAt,
	}
	if !event.StartDate.IsZero() {
		out.StartDate = event.StartDate.Format("2006-01-02")
	}
	if !event.EndDate.IsZero() {
		out.EndDate = event.EndDate.Format("2006-01-02")
	}
	return out
}
