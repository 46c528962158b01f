package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"studio_site_go/models"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ContactInput is the public contact form payload
type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,contact_email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// ValidationMessage maps validator failures to the messages shown by the form
func (ContactInput) ValidationMessage(field, tag string) string {
	if tag == "required" {
		return "Name and email are required"
	}
	if field == "Email" {
		return "Invalid email format"
	}
	return ""
}

// Details converts the input into the fields rendered in notifications
func (in ContactInput) Details() ContactDetails {
	return ContactDetails{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Service: in.Service,
		Date:    in.Date,
		Message: in.Message,
	}
}

// SubmissionDetails converts a stored submission into notification fields
func SubmissionDetails(s *models.ContactSubmission) ContactDetails {
	return ContactDetails{
		Name:    s.Name,
		Email:   s.Email,
		Phone:   s.PhoneText(),
		Service: s.ServiceText(),
		Date:    s.DateText(),
		Message: s.MessageText(),
	}
}

// Sanitized strips markup from every field. Text comes back unescaped since
// templates escape on output.
func (in ContactInput) Sanitized() ContactInput {
	p := bluemonday.StrictPolicy()
	clean := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
	}
	return ContactInput{
		Name:    clean(in.Name),
		Email:   clean(in.Email),
		Phone:   clean(in.Phone),
		Service: clean(in.Service),
		Date:    clean(in.Date),
		Message: clean(in.Message),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SubmitContact sanitizes, validates and stores a contact form message
func SubmitContact(ctx context.Context, db *gorm.DB, in ContactInput) (*models.ContactSubmission, error) {
	in = in.Sanitized()
	if err := ValidateStruct(in); err != nil {
		return nil, err
	}

	submission := &models.ContactSubmission{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   optional(in.Phone),
		Service: optional(in.Service),
		Date:    optional(in.Date),
		Message: optional(in.Message),
		Status:  models.ContactStatusNew,
	}
	if err := db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, upstream("database", "insert contact submission", err)
	}
	return submission, nil
}

// ListContactSubmissions returns submissions newest first, optionally filtered by status
func ListContactSubmissions(ctx context.Context, db *gorm.DB, status string) ([]models.ContactSubmission, error) {
	query := db.WithContext(ctx).Model(&models.ContactSubmission{})
	if status != "" {
		if !models.IsValidContactStatus(status) {
			return nil, NewValidationError("status", "Invalid status filter")
		}
		query = query.Where("status = ?", status)
	}

	var submissions []models.ContactSubmission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, upstream("database", "list contact submissions", err)
	}
	return submissions, nil
}

// UpdateContactStatus moves a submission to a new inbox status
func UpdateContactStatus(ctx context.Context, db *gorm.DB, id, status string) (*models.ContactSubmission, error) {
	if !models.IsValidContactStatus(status) {
		return nil, NewValidationError("status", "Status must be one of: new, read, replied, archived")
	}

	var submission models.ContactSubmission
	if err := db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, upstream("database", "load contact submission", err)
	}

	if err := db.WithContext(ctx).Model(&submission).Update("status", status).Error; err != nil {
		return nil, upstream("database", "update contact submission", err)
	}
	submission.Status = status
	return &submission, nil
}

var contactExportHeaders = []string{"Data", "Nome", "Email", "Telefone", "Serviço", "Data Pretendida", "Mensagem", "Estado"}

// ExportContactSubmissionsXLSX writes submissions to a single-sheet workbook
func ExportContactSubmissionsXLSX(submissions []models.ContactSubmission) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Contactos"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range contactExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "H1", headerStyle)
	f.SetColWidth(sheet, "A", "F", 20)
	f.SetColWidth(sheet, "G", "G", 60)

	for i := range submissions {
		s := &submissions[i]
		row := []interface{}{
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.Name,
			s.Email,
			s.PhoneText(),
			s.ServiceText(),
			s.DateText(),
			s.MessageText(),
			s.Status,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}
