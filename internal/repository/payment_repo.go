package repository

import (
	"time"

	"go-printshop-ws/internal/model"

	"gorm.io/gorm"
)

// RevenueSummary untuk report pendapatan
type RevenueSummary struct {
	TotalRevenue int64 `json:"total_revenue"`
	PaidJobs     int64 `json:"paid_jobs"`
}

type PaymentRepository interface {
	Create(tx *gorm.DB, payment *model.Payment) error
	FindByJob(jobID uint) ([]model.Payment, error)
	RevenueBetween(startDate, endDate time.Time) (*RevenueSummary, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

// Create menerima *gorm.DB (tx) agar insert payment dan update status job
// berjalan dalam satu transaksi
func (r *paymentRepo) Create(tx *gorm.DB, payment *model.Payment) error {
	return tx.Create(payment).Error
}

func (r *paymentRepo) FindByJob(jobID uint) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("job_id = ?", jobID).Order("payment_timestamp DESC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) RevenueBetween(startDate, endDate time.Time) (*RevenueSummary, error) {
	var summary RevenueSummary
	err := r.db.Model(&model.Payment{}).
		Select("COALESCE(SUM(payment_amount), 0) as total_revenue, COUNT(DISTINCT job_id) as paid_jobs").
		Where("payment_timestamp BETWEEN ? AND ?", startDate, endDate).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
