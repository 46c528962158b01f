package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of availability dates
const DateLayout = "2006-01-02"

// AvailabilityStatus is the booking state of a single calendar day.
// The zero value is not a valid status.
type AvailabilityStatus uint8

const (
	StatusFree AvailabilityStatus = iota + 1
	StatusPartial
	StatusBusy
)

var availabilityStatusNames = map[AvailabilityStatus]string{
	StatusFree:    "free",
	StatusPartial: "partial",
	StatusBusy:    "busy",
}

// AvailabilityStatuses lists every valid status in display order
var AvailabilityStatuses = []AvailabilityStatus{StatusFree, StatusPartial, StatusBusy}

// ParseAvailabilityStatus maps the wire form ("free", "partial", "busy") to a status
func ParseAvailabilityStatus(s string) (AvailabilityStatus, bool) {
	for status, name := range availabilityStatusNames {
		if name == s {
			return status, true
		}
	}
	return 0, false
}

func (s AvailabilityStatus) String() string {
	if name, ok := availabilityStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AvailabilityStatus(%d)", uint8(s))
}

// IsValid reports whether s is one of the declared statuses
func (s AvailabilityStatus) IsValid() bool {
	_, ok := availabilityStatusNames[s]
	return ok
}

// IsBooked reports whether the day carries a session (busy or partial)
func (s AvailabilityStatus) IsBooked() bool {
	return s == StatusBusy || s == StatusPartial
}

func (s AvailabilityStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid availability status %d", uint8(s))
	}
	return []byte(availabilityStatusNames[s]), nil
}

func (s *AvailabilityStatus) UnmarshalText(text []byte) error {
	parsed, ok := ParseAvailabilityStatus(string(text))
	if !ok {
		return fmt.Errorf("invalid availability status %q", string(text))
	}
	*s = parsed
	return nil
}

// Value stores the status as its string form
func (s AvailabilityStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid availability status %d", uint8(s))
	}
	return availabilityStatusNames[s], nil
}

func (s *AvailabilityStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into AvailabilityStatus", src)
	}
}

// AvailabilityEntry is the stored state of one calendar day. A date with no
// entry is implicitly free.
type AvailabilityEntry struct {
	Date      string             `gorm:"primaryKey;size:10" json:"date"` // YYYY-MM-DD
	Status    AvailabilityStatus `gorm:"type:varchar(10);not null" json:"status"`
	Note      *string            `json:"note"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// TableName specifies the table name for AvailabilityEntry model
func (AvailabilityEntry) TableName() string {
	return "availability"
}

// Day parses the entry date at midnight in loc
func (a *AvailabilityEntry) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, a.Date, loc)
}

// NoteText returns the note or an empty string
func (a *AvailabilityEntry) NoteText() string {
	if a.Note == nil {
		return ""
	}
	return *a.Note
}
