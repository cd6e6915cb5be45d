package model

import "time"

// Payment records money received for a print job. Gcash payments carry
// the payer's wallet details and proof screenshot path; cash payments
// leave them null.
type Payment struct {
	PaymentID           uint          `gorm:"primaryKey;column:payment_id" json:"payment_id"`
	JobID               uint          `gorm:"not null;index" json:"job_id" validate:"required"`
	Job                 *PrintJob     `gorm:"foreignKey:JobID" json:"job,omitempty" validate:"-"`
	PaymentAmount       int64         `gorm:"not null" json:"payment_amount" validate:"required,gt=0"` // centavos
	PaymentMethod       PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method" validate:"required,oneof=Cash Gcash"`
	GcashName           *string       `gorm:"type:varchar(255)" json:"gcash_name,omitempty"`
	GcashNumber         *string       `gorm:"type:varchar(20)" json:"gcash_number,omitempty"`
	GcashScreenshotPath *string       `gorm:"type:varchar(512)" json:"gcash_screenshot_path,omitempty"`
	PaymentTimestamp    time.Time     `gorm:"autoCreateTime;column:payment_timestamp" json:"payment_timestamp"`
}

func (Payment) TableName() string {
	return "payments"
}
