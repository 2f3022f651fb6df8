package api

import (
	"encoding/json"
	"net/http"
	"time"

	"infinite-experiment/flightboard/internal/common"
	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/db/repositories"
	"infinite-experiment/flightboard/internal/models/dtos/requests"
	"infinite-experiment/flightboard/internal/models/entities"
	"infinite-experiment/flightboard/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type flightList struct {
	Flights      []entities.FlightRecord `json:"flights"`
	Count        int                     `json:"count"`
	ResponseTime string                  `json:"response_time"`
}

func newFlightList(flights []entities.FlightRecord, init time.Time) *flightList {
	return &flightList{Flights: flights, Count: len(flights), ResponseTime: common.GetResponseTime(init)}
}

// ListFlightsHandler handles GET /api/v1/flights
func ListFlightsHandler(board FlightBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flights, err := board.List(r.Context())
		if err != nil {
			respondWithFlightError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, newFlightList(flights, initTime))
	}
}

// GetFlightHandler handles GET /api/v1/flights/{id}
func GetFlightHandler(board FlightBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flight, err := board.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondWithFlightError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, flight)
	}
}

// SearchFlightsHandler handles GET /api/v1/flights/search?status=&destination=&flightNumber=
func SearchFlightsHandler(board FlightBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()

		filter := repositories.SearchFilter{
			Destination:  q.Get("destination"),
			FlightNumber: q.Get("flightNumber"),
		}
		if raw := q.Get("status"); raw != "" {
			status, ok := entities.ParseFlightStatus(raw)
			if !ok {
				respondWithError(w, http.StatusBadRequest, constants.MsgInvalidStatus)
				return
			}
			filter.Status = status
		}

		flights, err := board.Search(r.Context(), filter)
		if err != nil {
			respondWithFlightError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, newFlightList(flights, initTime))
	}
}

// CreateFlightHandler handles POST /api/v1/flights
func CreateFlightHandler(board FlightBoard, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.CreateFlightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidBody)
			return
		}
		req.Normalize()

		if err := validate.Struct(req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidBody, requests.FieldErrors(err)...)
			return
		}

		flight, err := board.Create(r.Context(), services.CreateFlightInput{
			FlightNumber:  req.FlightNumber,
			Destination:   req.Destination,
			DepartureTime: *req.DepartureTime,
			Gate:          req.Gate,
		})
		if err != nil {
			respondWithFlightError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, flight)
	}
}

// UpdateFlightHandler handles PUT /api/v1/flights/{id}
func UpdateFlightHandler(board FlightBoard, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.UpdateFlightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidBody)
			return
		}
		req.Normalize()

		if err := validate.Struct(req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidBody, requests.FieldErrors(err)...)
			return
		}

		flight, err := board.Update(r.Context(), chi.URLParam(r, "id"), services.UpdateFlightInput{
			Destination:   req.Destination,
			DepartureTime: req.DepartureTime,
			Gate:          req.Gate,
		})
		if err != nil {
			respondWithFlightError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, flight)
	}
}

// DeleteFlightHandler handles DELETE /api/v1/flights/{id}
func DeleteFlightHandler(board FlightBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := board.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondWithFlightError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
