package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studio_site_go/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParseAvailabilityDate validates a YYYY-MM-DD string as a real calendar date
func ParseAvailabilityDate(date string) (time.Time, error) {
	if len(date) != len(models.DateLayout) {
		return time.Time{}, NewValidationError("date", "Date must be in YYYY-MM-DD format")
	}
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}, NewValidationError("date", "Date must be in YYYY-MM-DD format")
	}
	return day, nil
}

// MonthRange returns the half-open [first day, first day of next month) date
// strings for a 1-based month. December rolls into January of the next year.
func MonthRange(year, month int) (string, string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start.Format(models.DateLayout), end.Format(models.DateLayout)
}

// GetAllAvailability returns every stored entry
func GetAllAvailability(ctx context.Context, db *gorm.DB) ([]models.AvailabilityEntry, error) {
	var entries []models.AvailabilityEntry
	if err := db.WithContext(ctx).Order("date").Find(&entries).Error; err != nil {
		return nil, upstream("datastore", "list availability", err)
	}
	return entries, nil
}

// GetAvailabilityRange returns entries with start <= date < end
func GetAvailabilityRange(ctx context.Context, db *gorm.DB, start, end string) ([]models.AvailabilityEntry, error) {
	var entries []models.AvailabilityEntry
	err := db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Order("date").
		Find(&entries).Error
	if err != nil {
		return nil, upstream("datastore", "list availability range", err)
	}
	return entries, nil
}

// GetAvailability returns the entry for date, or nil when the date is implicitly free
func GetAvailability(ctx context.Context, db *gorm.DB, date string) (*models.AvailabilityEntry, error) {
	var entries []models.AvailabilityEntry
	if err := db.WithContext(ctx).Where("date = ?", date).Limit(1).Find(&entries).Error; err != nil {
		return nil, upstream("datastore", "get availability", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// UpsertAvailability writes status and note for date in one statement.
// An existing row for the date is replaced, not merged.
func UpsertAvailability(ctx context.Context, db *gorm.DB, date string, status models.AvailabilityStatus, note *string) (*models.AvailabilityEntry, error) {
	if _, err := ParseAvailabilityDate(date); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, NewValidationError("status", "Status must be one of: free, partial, busy")
	}

	entry := &models.AvailabilityEntry{
		Date:      date,
		Status:    status,
		Note:      normalizeNote(note),
		UpdatedAt: time.Now().UTC(),
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "note", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return nil, upstream("datastore", "upsert availability", err)
	}

	return entry, nil
}

// DeleteAvailability removes the entry for date. Deleting an absent date is not an error.
func DeleteAvailability(ctx context.Context, db *gorm.DB, date string) error {
	err := db.WithContext(ctx).Where("date = ?", date).Delete(&models.AvailabilityEntry{}).Error
	if err != nil {
		return upstream("datastore", "delete availability", err)
	}
	return nil
}

// AvailabilityMap projects entries to date -> status for calendar lookups
func AvailabilityMap(entries []models.AvailabilityEntry) map[string]models.AvailabilityStatus {
	out := make(map[string]models.AvailabilityStatus, len(entries))
	for _, e := range entries {
		out[e.Date] = e.Status
	}
	return out
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	if strings.TrimSpace(*note) == "" {
		return nil
	}
	n := *note
	return &n
}

// ValidateMonth checks a 1-based month number
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range", month)
	}
	return nil
}
