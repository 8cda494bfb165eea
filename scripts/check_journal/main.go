package main

import (
	"context"
	"fmt"
	"os"

	"fiscal-coupon/internal/config"
	"fiscal-coupon/internal/database"
)

// checkJournal connects with the service configuration, applies the
// journal schema and prints what the journal holds.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	rows, err := pool.Query(ctx, `
		SELECT status, abandoned, COUNT(*)
		FROM coupon_records
		GROUP BY status, abandoned
		ORDER BY status, abandoned
	`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	fmt.Println("\nJournaled coupons:")
	for rows.Next() {
		var (
			status    string
			abandoned bool
			count     int64
		)
		if err := rows.Scan(&status, &abandoned, &count); err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
		if abandoned {
			status += " (abandoned)"
		}
		fmt.Printf("  %-24s %d\n", status, count)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Rows failed: %v\n", err)
		os.Exit(1)
	}

	var movements int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM till_movements").Scan(&movements); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nTill movements: %d\n", movements)
}
