package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/collegetransit/bus-pass-backend/internal/config"
	"github.com/collegetransit/bus-pass-backend/internal/database"
)

// Resets every route's available seat count back to the bus's total
// capacity. Run this between booking windows, after archiving the
// previous window's bookings.
func main() {
	var dbURLFlag string
	var clearBookings bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&clearBookings, "clear-bookings", false, "also delete all bookings")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	// This avoids having to pass secrets on the command line.
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
		// ConnMaxLifetime left as zero (driver default)
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if clearBookings {
		fmt.Println("Connected to database. Clearing bookings...")
		res, err := db.ExecContext(ctx, "DELETE FROM bookings")
		if err != nil {
			log.Fatalf("failed to clear bookings: %v", err)
		}
		removed, _ := res.RowsAffected()
		fmt.Printf("Removed %d bookings.\n", removed)
	}

	fmt.Println("Resetting seat availability to bus capacity...")

	resetSQL := `
UPDATE bus_availability ba
SET available_seats = b.total_seats,
    updated_at = NOW()
FROM buses b
WHERE ba.bus_route = b.route_code`

	res, err := db.ExecContext(ctx, resetSQL)
	if err != nil {
		log.Fatalf("failed to reset seat availability: %v", err)
	}
	updated, _ := res.RowsAffected()
	fmt.Printf("Reset %d routes.\n", updated)

	// Verify by printing per-route availability
	rows, err := db.QueryContext(ctx, "SELECT bus_route, available_seats FROM bus_availability ORDER BY bus_route")
	if err != nil {
		log.Fatalf("failed to read back availability: %v", err)
	}
	defer rows.Close()

	fmt.Println("Post-reset availability:")
	for rows.Next() {
		var route string
		var seats int
		if err := rows.Scan(&route, &seats); err != nil {
			fmt.Printf("  scan error: %v\n", err)
			continue
		}
		fmt.Printf("  %s: %d\n", route, seats)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("failed while iterating availability: %v", err)
	}
}
