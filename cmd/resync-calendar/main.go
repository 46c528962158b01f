package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sort"
	"time"
	_ "time/tzdata"

	"studio_site_go/config"
	"studio_site_go/db"
	"studio_site_go/models"
	"studio_site_go/services"
)

func main() {
	now := time.Now()
	year := flag.Int("year", now.Year(), "year to resync")
	month := flag.Int("month", int(now.Month()), "month to resync (1-12)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.AvailabilityEntry{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	mirror := services.NewMirrorFromConfig(ctx, cfg)
	dispatcher := services.NewDispatcher(cfg.SideEffectTimeout)

	log.Printf("Resyncing calendar for %04d-%02d...", *year, *month)
	report, err := services.ResyncMonth(ctx, db.DB, mirror, dispatcher, *year, *month)
	if err != nil {
		log.Fatalf("Resync failed: %v", err)
	}

	for outcome, count := range report.Outcomes {
		log.Printf("  %-18s %d", outcome, count)
	}

	if len(report.Failed) > 0 {
		dates := make([]string, 0, len(report.Failed))
		for date := range report.Failed {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		for _, date := range dates {
			log.Printf("  failed %s: %v", date, report.Failed[date])
		}
		os.Exit(1)
	}

	log.Println("✓ Calendar resync complete")
}
