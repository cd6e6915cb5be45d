package repository

import (
	"time"

	"go-printshop-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// jobListOrder keeps the admin queue actionable: paid work first,
// finished work last, newest within each bucket.
const jobListOrder = `CASE status
	WHEN 'Paid' THEN 1
	WHEN 'Cash' THEN 2
	WHEN 'Pending' THEN 3
	WHEN 'Approved' THEN 4
	WHEN 'In Progress' THEN 5
	WHEN 'Declined' THEN 6
	WHEN 'Completed' THEN 7
	ELSE 8 END, created_at DESC`

// PrintJobFilter narrows admin job listings.
type PrintJobFilter struct {
	Status   model.JobStatus
	Username string
}

// UserJobStats untuk report aggregate per user
type UserJobStats struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	JobCount   int64  `json:"job_count"`
	TotalPages int64  `json:"total_pages"`
}

type PrintJobRepository interface {
	Create(tx *gorm.DB, job *model.PrintJob) error
	FindByID(id uint) (*model.PrintJob, error)
	FindByUser(userID uuid.UUID) ([]model.PrintJob, error)
	FindAll(filter PrintJobFilter) ([]model.PrintJob, error)
	CountByStatus() (map[model.JobStatus]int64, error)
	GetUserJobStats() ([]UserJobStats, error)

	// UpdateStatus menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
	UpdateStatus(tx *gorm.DB, id uint, status model.JobStatus, notes *string) error
	UpdateStatusPayment(tx *gorm.DB, id uint, status model.JobStatus, method model.PaymentMethod) (int64, error)
}

type printJobRepo struct {
	db *gorm.DB
}

func NewPrintJobRepo(db *gorm.DB) PrintJobRepository {
	return &printJobRepo{db}
}

func (r *printJobRepo) Create(tx *gorm.DB, job *model.PrintJob) error {
	return tx.Create(job).Error
}

func (r *printJobRepo) FindByID(id uint) (*model.PrintJob, error) {
	var job model.PrintJob
	err := r.db.Preload("User").Preload("File").First(&job, "job_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *printJobRepo) FindByUser(userID uuid.UUID) ([]model.PrintJob, error) {
	var jobs []model.PrintJob
	err := r.db.Preload("File").Where("user_id = ?", userID).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *printJobRepo) FindAll(filter PrintJobFilter) ([]model.PrintJob, error) {
	var jobs []model.PrintJob

	q := r.db.Preload("User").Preload("File")
	if filter.Status != "" {
		q = q.Where("print_jobs.status = ?", filter.Status)
	}
	if filter.Username != "" {
		q = q.Joins("JOIN users ON users.id = print_jobs.user_id").
			Where("users.username LIKE ?", "%"+filter.Username+"%")
	}

	err := q.Order(jobListOrder).Find(&jobs).Error
	return jobs, err
}

func (r *printJobRepo) CountByStatus() (map[model.JobStatus]int64, error) {
	type row struct {
		Status model.JobStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.PrintJob{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.JobStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *printJobRepo) GetUserJobStats() ([]UserJobStats, error) {
	var stats []UserJobStats
	err := r.db.Model(&model.PrintJob{}).
		Select(`print_jobs.user_id, users.username,
			COUNT(*) as job_count,
			COALESCE(SUM(print_jobs.pages * print_jobs.copies), 0) as total_pages`).
		Joins("JOIN users ON users.id = print_jobs.user_id").
		Group("print_jobs.user_id, users.username").
		Order("job_count DESC").
		Scan(&stats).Error
	return stats, err
}

func (r *printJobRepo) UpdateStatus(tx *gorm.DB, id uint, status model.JobStatus, notes *string) error {
	return tx.Model(&model.PrintJob{}).
		Where("job_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"notes":      notes,
			"updated_at": time.Now(),
		}).Error
}

// UpdateStatusPayment flips an Approved job to Paid/Cash. Jobs in any other
// status are left untouched; the affected row count tells the caller which.
func (r *printJobRepo) UpdateStatusPayment(tx *gorm.DB, id uint, status model.JobStatus, method model.PaymentMethod) (int64, error) {
	res := tx.Model(&model.PrintJob{}).
		Where("job_id = ? AND status = ?", id, model.StatusApproved).
		Updates(map[string]interface{}{
			"status":         status,
			"payment_method": method,
			"updated_at":     time.Now(),
		})
	return res.RowsAffected, res.Error
}
