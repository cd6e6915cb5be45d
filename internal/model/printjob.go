package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the closed set of print job states. Transitions between them
// are owned by service.PrintJobService; nothing else writes the status column.
type JobStatus string

const (
	StatusPending    JobStatus = "Pending"
	StatusApproved   JobStatus = "Approved"
	StatusPaid       JobStatus = "Paid"
	StatusCash       JobStatus = "Cash"
	StatusInProgress JobStatus = "In Progress" // reserved, no documented transition reaches it
	StatusDeclined   JobStatus = "Declined"
	StatusCompleted  JobStatus = "Completed"
)

// Valid reports whether s is one of the known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaid, StatusCash, StatusInProgress, StatusDeclined, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether s only permits the Completed path.
// Paid and Cash jobs may still be printed; Completed goes nowhere.
func (s JobStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCash || s == StatusCompleted
}

// CanApprove reports whether a job in status s may be approved.
func (s JobStatus) CanApprove() bool {
	return s == StatusPending || s == StatusDeclined
}

// CanStartPrint reports whether a job in status s may be sent to the printer.
func (s JobStatus) CanStartPrint() bool {
	return s == StatusApproved || s == StatusPaid || s == StatusCash
}

// SortWeight orders job listings: paid work first, finished work last.
func (s JobStatus) SortWeight() int {
	switch s {
	case StatusPaid:
		return 1
	case StatusCash:
		return 2
	case StatusPending:
		return 3
	case StatusApproved:
		return 4
	case StatusInProgress:
		return 5
	case StatusDeclined:
		return 6
	case StatusCompleted:
		return 7
	}
	return 8
}

// PaperSize is the paper format a job prints on.
type PaperSize string

const (
	PaperShort PaperSize = "Short"
	PaperA4    PaperSize = "A4"
	PaperLong  PaperSize = "Long"
)

// ProductName resolves the inventory item that stocks this paper size.
// Unknown sizes fall back to A4 stock.
func (p PaperSize) ProductName() string {
	switch p {
	case PaperShort:
		return "Short Bond Paper"
	case PaperLong:
		return "Long Bond Paper"
	default:
		return "A4 Bond Paper"
	}
}

// ColorOption is the print color mode.
type ColorOption string

const (
	ColorBlackAndWhite ColorOption = "Black & White"
	ColorFull          ColorOption = "Color"
	ColorPartial       ColorOption = "Partially Colored"
)

// PaymentMethod is how a job was paid for.
type PaymentMethod string

const (
	PayCash  PaymentMethod = "Cash"
	PayGcash PaymentMethod = "Gcash"
)

type PrintJob struct {
	JobID         uint           `gorm:"primaryKey;column:job_id" json:"job_id"`
	UserID        uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"user_id" validate:"uuid_required"`
	User          *User          `gorm:"foreignKey:UserID" json:"user,omitempty" validate:"-"`
	FileID        uint           `gorm:"not null" json:"file_id" validate:"required"`
	File          *File          `gorm:"foreignKey:FileID" json:"file,omitempty" validate:"-"`
	Pages         int            `gorm:"not null" json:"pages" validate:"required,gt=0"`
	Copies        int            `gorm:"not null" json:"copies" validate:"required,gt=0"`
	PaperSize     PaperSize      `gorm:"type:varchar(10);not null" json:"paper_size" validate:"required,oneof=Short A4 Long"`
	ColorOption   ColorOption    `gorm:"type:varchar(30);not null" json:"color_option" validate:"required,oneof='Black & White' Color 'Partially Colored'"`
	PaymentMethod *PaymentMethod `gorm:"type:varchar(10)" json:"payment_method,omitempty"`
	TotalAmount   int64          `gorm:"not null" json:"total_amount"` // centavos
	Status        JobStatus      `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Notes         *string        `gorm:"type:text" json:"notes,omitempty"` // decline reason
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (PrintJob) TableName() string {
	return "print_jobs"
}

// SheetsRequired is how much paper the job consumes when printed.
func (j *PrintJob) SheetsRequired() int {
	return j.Pages * j.Copies
}
