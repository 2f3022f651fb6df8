package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"infinite-experiment/flightboard/internal/common"
	"infinite-experiment/flightboard/internal/config"
	"infinite-experiment/flightboard/internal/db"
	"infinite-experiment/flightboard/internal/db/repositories"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/services"
)

var destinations = []struct {
	city string
	gate string
}{
	{"New York", "A1"}, {"London", "A2"}, {"Paris", "B1"}, {"Rome", "B2"}, {"Berlin", "B3"},
	{"Madrid", "C1"}, {"Athens", "C2"}, {"Vienna", "C3"}, {"Prague", "D1"}, {"Budapest", "D2"},
	{"Amsterdam", "D3"}, {"Lisbon", "E1"}, {"Zurich", "E2"}, {"Istanbul", "E3"}, {"Tel Aviv", "F1"},
}

// Seeds the board with sample departures. Existing flights are removed first.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logging.Close()

	orm, err := db.OpenORM(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	if err := db.Migrate(orm); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	store := repositories.NewFlightRepository(orm)

	removed, err := store.DeleteAll(ctx)
	if err != nil {
		log.Fatalf("clear flights: %v", err)
	}

	gateway := services.NewMutationGateway(store, common.SystemClock{}, services.GatewayOptions{})
	now := time.Now().UTC().Truncate(time.Minute)

	for i, d := range destinations {
		res, err := gateway.CreateRecord(ctx, services.CreateFlightInput{
			FlightNumber:  fmt.Sprintf("LY%03d", i+1),
			Destination:   d.city,
			DepartureTime: now.Add(time.Duration(i+2) * time.Hour),
			Gate:          d.gate,
		})
		if err != nil {
			log.Fatalf("seed %s: %v", d.city, err)
		}
		fmt.Fprintf(os.Stdout, "%s  %-10s  gate %-3s  %s  %s\n",
			res.Flight.FlightNumber, res.Flight.Destination, res.Flight.Gate,
			res.Flight.DepartureTime.Format(time.RFC3339), res.Flight.Status)
	}

	fmt.Printf("Removed %d flights, seeded %d\n", removed, len(destinations))
}
