package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"infinite-experiment/flightboard/internal/db/repositories"
	"infinite-experiment/flightboard/internal/models/dtos/requests"
	"infinite-experiment/flightboard/internal/models/dtos/responses"
	"infinite-experiment/flightboard/internal/models/entities"
	"infinite-experiment/flightboard/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBoard lets each test stub only the calls it needs.
type mockBoard struct {
	createFunc func(ctx context.Context, in services.CreateFlightInput) (*entities.FlightRecord, error)
	updateFunc func(ctx context.Context, id string, in services.UpdateFlightInput) (*entities.FlightRecord, error)
	deleteFunc func(ctx context.Context, id string) error
	getFunc    func(ctx context.Context, id string) (*entities.FlightRecord, error)
	listFunc   func(ctx context.Context) ([]entities.FlightRecord, error)
	searchFunc func(ctx context.Context, filter repositories.SearchFilter) ([]entities.FlightRecord, error)
}

func (m *mockBoard) Create(ctx context.Context, in services.CreateFlightInput) (*entities.FlightRecord, error) {
	return m.createFunc(ctx, in)
}

func (m *mockBoard) Update(ctx context.Context, id string, in services.UpdateFlightInput) (*entities.FlightRecord, error) {
	return m.updateFunc(ctx, id, in)
}

func (m *mockBoard) Delete(ctx context.Context, id string) error { return m.deleteFunc(ctx, id) }

func (m *mockBoard) Get(ctx context.Context, id string) (*entities.FlightRecord, error) {
	return m.getFunc(ctx, id)
}

func (m *mockBoard) List(ctx context.Context) ([]entities.FlightRecord, error) { return m.listFunc(ctx) }

func (m *mockBoard) Search(ctx context.Context, filter repositories.SearchFilter) ([]entities.FlightRecord, error) {
	return m.searchFunc(ctx, filter)
}

func newTestRouter(board FlightBoard) http.Handler {
	v := requests.NewValidator()
	r := chi.NewRouter()
	r.Get("/api/v1/flights", ListFlightsHandler(board))
	r.Get("/api/v1/flights/search", SearchFlightsHandler(board))
	r.Get("/api/v1/flights/{id}", GetFlightHandler(board))
	r.Post("/api/v1/flights", CreateFlightHandler(board, v))
	r.Put("/api/v1/flights/{id}", UpdateFlightHandler(board, v))
	r.Delete("/api/v1/flights/{id}", DeleteFlightHandler(board))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope[T any](t *testing.T, rr *httptest.ResponseRecorder) responses.APIResponse[T] {
	t.Helper()
	var resp responses.APIResponse[T]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

var departure = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func TestCreateFlightHandler_Success(t *testing.T) {
	var got services.CreateFlightInput
	board := &mockBoard{createFunc: func(_ context.Context, in services.CreateFlightInput) (*entities.FlightRecord, error) {
		got = in
		return &entities.FlightRecord{ID: "f1", FlightNumber: in.FlightNumber, Status: entities.StatusScheduled}, nil
	}}

	rr := doJSON(t, newTestRouter(board), http.MethodPost, "/api/v1/flights", map[string]any{
		"flightNumber":  "LY001",
		"destination":   " Tel Aviv ",
		"departureTime": "2030-01-01T14:00:00+02:00",
		"gate":          "F1",
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeEnvelope[entities.FlightRecord](t, rr)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "f1", resp.Data.ID)

	assert.Equal(t, "Tel Aviv", got.Destination)
	assert.True(t, got.DepartureTime.Equal(departure))
}

func TestCreateFlightHandler_ValidationErrors(t *testing.T) {
	board := &mockBoard{createFunc: func(context.Context, services.CreateFlightInput) (*entities.FlightRecord, error) {
		t.Fatal("engine must not be called on invalid input")
		return nil, nil
	}}

	rr := doJSON(t, newTestRouter(board), http.MethodPost, "/api/v1/flights", map[string]any{
		"flightNumber": "ly-1",
		"destination":  "R2D2",
		"gate":         "TOOLONG",
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeEnvelope[any](t, rr)
	fields := map[string]bool{}
	for _, f := range resp.Fields {
		fields[f.Field] = true
	}
	assert.Equal(t, map[string]bool{"flightNumber": true, "destination": true, "departureTime": true, "gate": true}, fields)
}

func TestCreateFlightHandler_NaiveTimestampRejected(t *testing.T) {
	board := &mockBoard{}
	rr := doJSON(t, newTestRouter(board), http.MethodPost, "/api/v1/flights",
		`{"flightNumber":"LY001","destination":"Rome","departureTime":"2030-01-01T12:00:00","gate":"A1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateFlightHandler_EngineErrors(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		code  int
		field string
	}{
		{"duplicate", &services.FlightError{Kind: services.KindDuplicateKey, Field: "flightNumber", Message: "Flight number LY001 already exists."}, http.StatusConflict, "flightNumber"},
		{"invalid schedule", &services.FlightError{Kind: services.KindInvalidSchedule, Field: "departureTime", Message: "Departure time must be in the future."}, http.StatusBadRequest, "departureTime"},
		{"store down", &services.FlightError{Kind: services.KindStoreUnavailable, Message: "down"}, http.StatusServiceUnavailable, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			board := &mockBoard{createFunc: func(context.Context, services.CreateFlightInput) (*entities.FlightRecord, error) {
				return nil, tc.err
			}}
			rr := doJSON(t, newTestRouter(board), http.MethodPost, "/api/v1/flights", map[string]any{
				"flightNumber": "LY001", "destination": "Rome", "departureTime": departure, "gate": "A1",
			})

			require.Equal(t, tc.code, rr.Code)
			resp := decodeEnvelope[any](t, rr)
			assert.Equal(t, "error", resp.Status)
			if tc.field != "" {
				require.Len(t, resp.Fields, 1)
				assert.Equal(t, tc.field, resp.Fields[0].Field)
			}
		})
	}
}

func TestUpdateFlightHandler_BlankFieldsIgnored(t *testing.T) {
	var got services.UpdateFlightInput
	board := &mockBoard{updateFunc: func(_ context.Context, id string, in services.UpdateFlightInput) (*entities.FlightRecord, error) {
		got = in
		return &entities.FlightRecord{ID: id}, nil
	}}

	rr := doJSON(t, newTestRouter(board), http.MethodPut, "/api/v1/flights/f1", map[string]any{
		"destination": "  ",
		"gate":        "B2",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, got.Destination)
	require.NotNil(t, got.Gate)
	assert.Equal(t, "B2", *got.Gate)
	assert.Nil(t, got.DepartureTime)
}

func TestUpdateFlightHandler_NotFound(t *testing.T) {
	board := &mockBoard{updateFunc: func(context.Context, string, services.UpdateFlightInput) (*entities.FlightRecord, error) {
		return nil, &services.FlightError{Kind: services.KindNotFound, Message: "Flight with ID f9 not found."}
	}}

	rr := doJSON(t, newTestRouter(board), http.MethodPut, "/api/v1/flights/f9", map[string]any{"gate": "B2"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteFlightHandler(t *testing.T) {
	var deleted string
	board := &mockBoard{deleteFunc: func(_ context.Context, id string) error {
		deleted = id
		return nil
	}}

	rr := doJSON(t, newTestRouter(board), http.MethodDelete, "/api/v1/flights/f1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "f1", deleted)
}

func TestListFlightsHandler(t *testing.T) {
	board := &mockBoard{listFunc: func(context.Context) ([]entities.FlightRecord, error) {
		return []entities.FlightRecord{{ID: "f1"}, {ID: "f2"}}, nil
	}}

	rr := doJSON(t, newTestRouter(board), http.MethodGet, "/api/v1/flights", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope[flightList](t, rr)
	assert.Equal(t, 2, resp.Data.Count)
}

func TestSearchFlightsHandler(t *testing.T) {
	var got repositories.SearchFilter
	board := &mockBoard{searchFunc: func(_ context.Context, f repositories.SearchFilter) ([]entities.FlightRecord, error) {
		got = f
		return nil, nil
	}}
	h := newTestRouter(board)

	rr := doJSON(t, h, http.MethodGet, "/api/v1/flights/search?status=boarding&destination=rom", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, entities.StatusBoarding, got.Status)
	assert.Equal(t, "rom", got.Destination)

	rr = doJSON(t, h, http.MethodGet, "/api/v1/flights/search?status=taxiing", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetFlightHandler_NotFound(t *testing.T) {
	board := &mockBoard{getFunc: func(_ context.Context, id string) (*entities.FlightRecord, error) {
		return nil, services.FromStoreError(repositories.ErrNotFound, id, "")
	}}

	rr := doJSON(t, newTestRouter(board), http.MethodGet, "/api/v1/flights/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
