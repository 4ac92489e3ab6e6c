package main

import (
	"context"
	"log"
	"os"
	"time"

	"exampulse/adapters/excel"
	"exampulse/adapters/fixture"
	"exampulse/adapters/postgres"
	"exampulse/domain/student"
	"exampulse/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		databaseURL = os.Args[1]
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate <database_url> [students.csv|students.xlsx]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	log.Printf("Running schema migration %s", runner.Version())
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Seed from a file when one is given, else from the built-in sample
	var records []student.Record
	if len(os.Args) > 2 {
		reader := excel.NewDataReader(os.Args[2])
		if records, err = reader.Fetch(ctx); err != nil {
			log.Fatalf("Failed to read %s: %v", os.Args[2], err)
		}
	} else {
		records = fixture.Students()
	}

	repo := postgres.NewStudentRepository(db)
	written, err := repo.Insert(ctx, records)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count students: %v", err)
	}
	log.Printf("Seeded %d students (%d in table)", written, total)
}
