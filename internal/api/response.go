package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"infinite-experiment/flightboard/internal/auth"
	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/models/dtos/responses"
	"infinite-experiment/flightboard/internal/services"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    string(constants.APIStatusOk),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string, fields ...responses.FieldError) {
	resp := responses.APIResponse[any]{
		Status:    string(constants.APIStatusError),
		Timestamp: time.Now().UTC(),
		Error:     message,
		Fields:    fields,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// respondWithFlightError maps the engine error taxonomy onto HTTP statuses.
func respondWithFlightError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.WithRequest(auth.GetRequestID(r.Context()), r.URL.Path)

	var fe *services.FlightError
	if !errors.As(err, &fe) {
		log.Errorw("Unclassified engine error", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var fields []responses.FieldError
	if fe.Field != "" {
		fields = append(fields, responses.FieldError{Field: fe.Field, Message: fe.Message})
	}

	switch fe.Kind {
	case services.KindInvalidSchedule:
		respondWithError(w, http.StatusBadRequest, fe.Message, fields...)
	case services.KindDuplicateKey:
		respondWithError(w, http.StatusConflict, fe.Message, fields...)
	case services.KindNotFound:
		respondWithError(w, http.StatusNotFound, fe.Message)
	default:
		log.Errorw("Flight store unavailable", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, constants.MsgStoreUnavailable)
	}
}
