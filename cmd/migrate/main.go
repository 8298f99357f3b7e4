package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"cinemaguard/internal/model"
	"cinemaguard/internal/repository/sqlite"
)

// Creates the database schema and optionally seeds a hall with a default
// full-canvas grid configuration.
func main() {
	dbPath := flag.String("db", "data/cinemaguard.db", "Database path")
	hallName := flag.String("hall", "", "Hall to seed with a default grid (empty = schema only)")
	rows := flag.Int("rows", 10, "Default grid rows")
	cols := flag.Int("cols", 10, "Default grid columns")
	canvasWidth := flag.Int("canvas-width", 800, "Reference canvas width")
	canvasHeight := flag.Int("canvas-height", 600, "Reference canvas height")
	flag.Parse()

	fmt.Printf("Migrating database %s\n", *dbPath)

	// Ensure database directory exists
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Opening the database runs the schema migration.
	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Schema is up to date")

	if *hallName == "" {
		return
	}

	hallRepo := sqlite.NewHallRepository(db)

	existing, err := hallRepo.GetGridConfig(*hallName)
	if err != nil {
		log.Fatalf("Failed to read hall %q: %v", *hallName, err)
	}
	if existing != nil {
		fmt.Printf("Hall %q already has a grid config, leaving it untouched\n", *hallName)
		return
	}

	cfg := model.DefaultGridConfig(*rows, *cols, *canvasWidth, *canvasHeight)
	if err := hallRepo.SaveGridConfig(*hallName, &cfg); err != nil {
		log.Fatalf("Failed to seed hall %q: %v", *hallName, err)
	}

	seeded, _ := json.Marshal(cfg)
	fmt.Printf("✅ Seeded hall %q with default grid: %s\n", *hallName, seeded)
}
