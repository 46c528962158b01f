package jobs

import (
	"context"
	"log"
	"time"

	"studio_site_go/services"

	"gorm.io/gorm"
)

// ResyncUpcomingMonths reconciles the current and next month into the mirror.
// Mirror pushes from the admin API are best-effort; this job repairs any that
// were lost.
func ResyncUpcomingMonths(ctx context.Context, database *gorm.DB, mirror services.Mirror, dispatcher *services.Dispatcher, now time.Time) error {
	log.Println("Starting calendar resync job...")

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 2; offset++ {
		month := first.AddDate(0, offset, 0)
		report, err := services.ResyncMonth(ctx, database, mirror, dispatcher, month.Year(), int(month.Month()))
		if err != nil {
			log.Printf("[WARNING] Calendar resync for %s stopped: %v", month.Format("2006-01"), err)
			return err
		}
		log.Printf("Calendar resync %s: %d created, %d updated, %d deleted, %d failed",
			month.Format("2006-01"),
			report.Outcomes[services.SyncCreated],
			report.Outcomes[services.SyncUpdated],
			report.Outcomes[services.SyncDeleted],
			len(report.Failed))
	}

	log.Println("Calendar resync job completed")
	return nil
}

// RunPeriodically calls job on every tick until ctx is done
func RunPeriodically(ctx context.Context, interval time.Duration, job func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}
