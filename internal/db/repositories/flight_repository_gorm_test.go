package repositories

import (
	"context"
	"testing"
	"time"

	"infinite-experiment/flightboard/internal/models/entities"
	"infinite-experiment/flightboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoBase = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func sampleFlight(number, destination string, in time.Duration, status entities.FlightStatus) *entities.FlightRecord {
	return &entities.FlightRecord{
		FlightNumber:  number,
		Destination:   destination,
		DepartureTime: repoBase.Add(in),
		Gate:          "A1",
		Status:        status,
		CreatedAt:     repoBase,
		UpdatedAt:     repoBase,
	}
}

func TestFlightRepository_InsertAndGet(t *testing.T) {
	repo := NewFlightRepository(testutil.SetupTestDB(t))
	ctx := context.Background()

	saved, err := repo.Insert(ctx, sampleFlight("LY001", "Rome", time.Hour, entities.StatusScheduled))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "LY001", got.FlightNumber)
	assert.Equal(t, entities.StatusScheduled, got.Status)
	assert.True(t, got.DepartureTime.Equal(repoBase.Add(time.Hour)))
	assert.Equal(t, time.UTC, got.DepartureTime.Location())

	exists, err := repo.ExistsByFlightNumber(ctx, "LY001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByFlightNumber(ctx, "LY999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFlightRepository_GetByID_NotFound(t *testing.T) {
	repo := NewFlightRepository(testutil.SetupTestDB(t))

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlightRepository_Insert_Duplicate(t *testing.T) {
	repo := NewFlightRepository(testutil.SetupTestDB(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, sampleFlight("LY001", "Rome", time.Hour, entities.StatusScheduled))
	require.NoError(t, err)

	_, err = repo.Insert(ctx, sampleFlight("LY001", "Paris", 2*time.Hour, entities.StatusScheduled))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestFlightRepository_GetAll_OrderedByDeparture(t *testing.T) {
	repo := NewFlightRepository(testutil.SetupTestDB(t))
	ctx := context.Background()

	for _, f := range []*entities.FlightRecord{
		sampleFlight("LY003", "Vienna", 3*time.Hour, entities.StatusScheduled),
		sampleFlight("LY001", "Rome", time.Hour, entities.StatusScheduled),
		sampleFlight("LY002", "Paris", 2*time.Hour, entities.StatusScheduled),
	} {
		_, err := repo.Insert(ctx, f)
		require.NoError(t, err)
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"LY001", "LY002", "LY003"}, []string{all[0].FlightNumber, all[1].FlightNumber, all[2].FlightNumber})
}

func TestFlightRepository_Update(t *testing.T) {
	repo := NewFlightRepository(testutil.SetupTestDB(t))
	ctx := context.Background()

	saved, err := repo.Insert(ctx, sampleFlight("LY001", "Rome", time.Hour, entities.StatusScheduled))
	require.NoError(t, err)

	saved.Gate = "B7"
	saved.Status = entities.StatusBoarding
	saved.UpdatedAt = repoBase.Add(time.Minute)

	updated, err := repo.Update(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, "B7", updated.Gate)
	assert.Equal(t, entities.StatusBoarding, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(repoBase.Add(time.Minute)))
	assert.True(t, updated.CreatedAt.Equal(repoBase))

	saved.ID = "missing"
	_, err = repo.Update(ctx, saved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlightRepository_UpdateStatus_CompareAndWrite(t *testing.T) {
	repo := NewFlightRepository(testutil.SetupTestDB(t))
	ctx := context.Background()

	saved, err := repo.Insert(ctx, sampleFlight("LY001", "Rome", 10*time.Minute, entities.StatusScheduled))
	require.NoError(t, err)
	read, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)

	at := repoBase.Add(time.Minute)
	applied, err := repo.UpdateStatus(ctx, read, entities.StatusBoarding, at)
	require.NoError(t, err)
	assert.True(t, applied)

	// the same read is now stale
	applied, err = repo.UpdateStatus(ctx, read, entities.StatusDeparted, at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusBoarding, got.Status)
	assert.True(t, got.UpdatedAt.Equal(at))

	applied, err = repo.UpdateStatus(ctx, &entities.FlightRecord{ID: "missing", Status: entities.StatusScheduled}, entities.StatusBoarding, at)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestFlightRepository_UpdateStatus_RejectsRewrittenRow(t *testing.T) {
	repo := NewFlightRepository(testutil.SetupTestDB(t))
	ctx := context.Background()

	saved, err := repo.Insert(ctx, sampleFlight("LY001", "Rome", 25*time.Minute, entities.StatusScheduled))
	require.NoError(t, err)
	read, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)

	// another writer moves the departure but leaves the status as it was
	moved := *read
	moved.DepartureTime = read.DepartureTime.Add(5 * time.Hour)
	moved.UpdatedAt = repoBase.Add(time.Second)
	_, err = repo.Update(ctx, &moved)
	require.NoError(t, err)

	applied, err := repo.UpdateStatus(ctx, read, entities.StatusBoarding, repoBase.Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusScheduled, got.Status)
	assert.True(t, got.UpdatedAt.Equal(moved.UpdatedAt))
}

func TestFlightRepository_Delete(t *testing.T) {
	repo := NewFlightRepository(testutil.SetupTestDB(t))
	ctx := context.Background()

	saved, err := repo.Insert(ctx, sampleFlight("LY001", "Rome", time.Hour, entities.StatusScheduled))
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// the flight number is free again
	_, err = repo.Insert(ctx, sampleFlight("LY001", "Rome", time.Hour, entities.StatusScheduled))
	require.NoError(t, err)

	removed, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
