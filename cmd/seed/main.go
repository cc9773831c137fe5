// Command seed populates the employees and vehicles reference collections
// with generated data for local development and load testing. IDs are
// sequential starting at 1; vehicle i is paired with driver i.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fleetops/go-fleet-backend/internal/config"
	"github.com/fleetops/go-fleet-backend/internal/domain"
	"github.com/fleetops/go-fleet-backend/internal/repo"
	"github.com/fleetops/go-fleet-backend/internal/sysutil"
)

var (
	firstNames = []string{
		"Alex", "Maria", "James", "Sofia", "Daniel", "Elena", "Michael", "Anna",
		"Thomas", "Laura", "David", "Nina", "George", "Iris", "Peter", "Clara",
		"Victor", "Dora", "Stefan", "Mara",
	}
	lastNames = []string{
		"Papadopoulos", "Smith", "Keller", "Ivanov", "Rossi", "Novak", "Weber",
		"Andersson", "Costa", "Dubois", "Martins", "Kowalski", "Horvat", "Berg",
		"Lindqvist", "Moreau", "Santos", "Petrov", "Fischer", "Janssen",
	}
	departments = []string{
		"Logistics", "Operations", "Field Services", "Maintenance", "Sales",
		"Engineering", "Dispatch", "Facilities",
	}
	vehicleModels = []string{
		"Ford Transit", "Mercedes Sprinter", "VW Caddy", "Toyota Hilux",
		"Renault Kangoo", "Fiat Doblo", "Nissan NV200", "Citroen Berlingo",
		"Opel Vivaro", "Peugeot Partner",
	}
)

func pick(rng *rand.Rand, list []string) string {
	return list[rng.Intn(len(list))]
}

func main() {
	_ = godotenv.Load()

	count := flag.Int("count", 1000, "number of employees and vehicles to generate")
	seedArg := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(os.Getenv("LOG_LEVEL"))

	if *count < 1 {
		log.Fatal().Int("count", *count).Msg("count must be positive")
	}

	cfg := config.MustLoad()

	seed := *seedArg
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := repo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.Mongo.DBName).Msg("mongo connect failed")
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	employees := make([]domain.Employee, *count)
	vehicles := make([]domain.Vehicle, *count)
	for i := 0; i < *count; i++ {
		id := i + 1
		employees[i] = domain.Employee{
			ID:         id,
			Name:       pick(rng, firstNames) + " " + pick(rng, lastNames),
			Department: pick(rng, departments),
		}
		vehicles[i] = domain.Vehicle{
			ID:       id,
			Model:    fmt.Sprintf("%s %d", pick(rng, vehicleModels), rng.Intn(30)+1995),
			DriverID: id,
		}
	}

	ne, err := repo.InsertEmployees(ctx, db, employees)
	if err != nil {
		log.Fatal().Err(err).Msg("insert employees failed")
	}
	nv, err := repo.InsertVehicles(ctx, db, vehicles)
	if err != nil {
		log.Fatal().Err(err).Msg("insert vehicles failed")
	}

	log.Info().Int("employees", ne).Int("vehicles", nv).Int64("seed", seed).
		Msg("reference data seeded")
}
