package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"studio_site_go/models"

	"gorm.io/gorm"
)

// ResyncReport counts mirror outcomes for one reconciliation run
type ResyncReport struct {
	Outcomes map[SyncOutcome]int
	Failed   map[string]error
}

// ResyncMonth replays every day of a month from the store into the mirror.
// Days without an entry are synced as deletes so stale events are removed.
// Each day runs under the dispatcher timeout; a failed day does not stop the run.
func ResyncMonth(ctx context.Context, db *gorm.DB, mirror Mirror, dispatcher *Dispatcher, year, month int) (*ResyncReport, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, NewValidationError("month", err.Error())
	}
	if !mirror.Configured() {
		return nil, fmt.Errorf("calendar mirror: %w", ErrNotConfigured)
	}

	start, end := MonthRange(year, month)
	entries, err := GetAvailabilityRange(ctx, db, start, end)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]models.AvailabilityEntry, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e
	}

	report := &ResyncReport{Outcomes: map[SyncOutcome]int{}, Failed: map[string]error{}}
	first, _ := time.Parse(models.DateLayout, start)
	last, _ := time.Parse(models.DateLayout, end)

	for day := first; day.Before(last); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		date := day.Format(models.DateLayout)
		req := SyncRequest{Date: date, Action: SyncActionDelete}
		if entry, ok := byDate[date]; ok {
			req = SyncRequest{Date: date, Status: entry.Status, Note: entry.Note, Action: SyncActionUpsert}
		}

		var result *SyncResult
		err := dispatcher.Run(func(ctx context.Context) error {
			var syncErr error
			result, syncErr = mirror.Sync(ctx, req)
			return syncErr
		})
		if err != nil {
			log.Printf("[WARNING] Resync of %s failed: %v", date, err)
			report.Failed[date] = err
			continue
		}
		report.Outcomes[result.Outcome]++
	}

	return report, nil
}
