package http

import (
	"encoding/json"
	"net/http"

	"tripplan/internal/core"
	"tripplan/internal/enrich"
)

type tripRequest struct {
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Notes       string `json:"notes"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

type tripPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Notes       string `json:"notes"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toTripPayload(trip core.Trip) tripPayload {
	return tripPayload{
		ID:          trip.ID.String(),
		Name:        trip.Name,
		Origin:      trip.Origin,
		Destination: trip.Destination,
		Notes:       trip.Notes,
		StartDate:   formatDate(trip.StartDate),
		EndDate:     formatDate(trip.EndDate),
		CreatedAt:   trip.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "end_date must be YYYY-MM-DD"})
		return
	}

	trip, err := s.trips.Create(r.Context(), core.Trip{
		Name:        req.Name,
		Origin:      req.Origin,
		Destination: req.Destination,
		Notes:       req.Notes,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTripPayload(trip))
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]tripPayload, 0, len(trips))
	for _, trip := range trips {
		payload = append(payload, toTripPayload(trip))
	}
	writeJSON(w, http.StatusOK, map[string]any{"trips": payload})
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathTripID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	trip, err := s.trips.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripPayload(trip))
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathTripID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type expenseRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type expensePayload struct {
	ID        string `json:"id"`
	TripID    string `json:"trip_id"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

func toExpensePayload(e core.Expense) expensePayload {
	return expensePayload{
		ID:        e.ID.String(),
		TripID:    e.TripID.String(),
		Name:      e.Name,
		Amount:    e.AmountOrZero().String(),
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathTripID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	expense, err := s.expenses.Add(r.Context(), id, req.Name, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpensePayload(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := pathTripID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// The trip must exist before the empty ledger is a valid answer.
	if _, err := s.trips.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	expenses, err := s.expenses.ListByTrip(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := s.expenses.Total(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]expensePayload, 0, len(expenses))
	for _, e := range expenses {
		payload = append(payload, toExpensePayload(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": payload,
		"total":    total.String(),
	})
}

type coordPayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type routePayload struct {
	Path      []coordPayload `json:"path"`
	Bounds    [4]float64     `json:"bounds"` // min_lat, min_lon, max_lat, max_lon
	DistanceM float64        `json:"distance_m"`
	DurationS float64        `json:"duration_s"`
}

type weatherPayload struct {
	City        string `json:"city"`
	Description string `json:"description"`
	TempC       int    `json:"temp_c"`
	Humidity    int    `json:"humidity"`
	Wind        string `json:"wind"`
	IconPNG     []byte `json:"icon_png,omitempty"`
}

type enrichmentPayload struct {
	Origin      *coordPayload     `json:"origin"`
	Destination *coordPayload     `json:"destination"`
	Route       *routePayload     `json:"route"`
	Weather     *weatherPayload   `json:"weather"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// handleEnrichment runs the pipeline for one trip and reports each
// stage's outcome. A failed stage leaves its field null and adds an
// entry under errors; the other stages still report theirs.
func (s *Server) handleEnrichment(w http.ResponseWriter, r *http.Request) {
	id, err := pathTripID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	trip, err := s.trips.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := enrichmentPayload{Errors: make(map[string]string)}
	for ev := range s.orchestrator.Enrich(r.Context(), trip.ID, trip.Origin, trip.Destination) {
		if ev.Kind != enrich.KindStage {
			continue
		}
		if ev.Err != nil {
			payload.Errors[string(ev.Stage)] = ev.Err.Error()
			continue
		}
		switch ev.Stage {
		case enrich.StageResolveOrigin:
			payload.Origin = &coordPayload{Lat: ev.Coord.Lat, Lon: ev.Coord.Lon}
		case enrich.StageResolveDestination:
			payload.Destination = &coordPayload{Lat: ev.Coord.Lat, Lon: ev.Coord.Lon}
		case enrich.StageRoute:
			route := &routePayload{
				Path: make([]coordPayload, 0, len(ev.Route.Path)),
				Bounds: [4]float64{
					ev.Route.Bounds.MinLat, ev.Route.Bounds.MinLon,
					ev.Route.Bounds.MaxLat, ev.Route.Bounds.MaxLon,
				},
				DistanceM: ev.Route.DistanceM,
				DurationS: ev.Route.DurationS,
			}
			for _, c := range ev.Route.Path {
				route.Path = append(route.Path, coordPayload{Lat: c.Lat, Lon: c.Lon})
			}
			payload.Route = route
		case enrich.StageWeather:
			payload.Weather = &weatherPayload{
				City:        ev.Weather.City,
				Description: ev.Weather.Description,
				TempC:       ev.Weather.TempC,
				Humidity:    ev.Weather.Humidity,
				Wind:        ev.Weather.WindDisplay(),
				IconPNG:     ev.Icon,
			}
		}
	}
	if len(payload.Errors) == 0 {
		payload.Errors = nil
	}

	writeJSON(w, http.StatusOK, payload)
}
