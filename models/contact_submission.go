package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact submission statuses
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactSubmission is a message left through the public contact form
type ContactSubmission struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;<-:create;index" json:"created_at"`

	Name    string  `gorm:"not null" json:"name"`
	Email   string  `gorm:"not null;index" json:"email"`
	Phone   *string `json:"phone"`
	Service *string `json:"service"`
	Date    *string `json:"date"` // Preferred session date, free text from the form
	Message *string `gorm:"type:text" json:"message"`
	Status  string  `gorm:"not null;default:new;index" json:"status"`
}

// BeforeCreate hook to generate UUID and default status
func (c *ContactSubmission) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = ContactStatusNew
	}
	return nil
}

// TableName specifies the table name for ContactSubmission model
func (ContactSubmission) TableName() string {
	return "contact_submissions"
}

// IsValidContactStatus checks if the status is valid
func IsValidContactStatus(status string) bool {
	switch status {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived:
		return true
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PhoneText returns the phone or an empty string
func (c *ContactSubmission) PhoneText() string { return deref(c.Phone) }

// ServiceText returns the service or an empty string
func (c *ContactSubmission) ServiceText() string { return deref(c.Service) }

// DateText returns the preferred date or an empty string
func (c *ContactSubmission) DateText() string { return deref(c.Date) }

// MessageText returns the message or an empty string
func (c *ContactSubmission) MessageText() string { return deref(c.Message) }
