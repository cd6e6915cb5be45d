package service

import (
	"time"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
)

// DashboardStats is the counter-screen summary: queue depth per status
// plus the paper stock position.
type DashboardStats struct {
	JobCounts map[model.JobStatus]int64  `json:"job_counts"`
	Inventory *repository.InventoryStats `json:"inventory"`
}

type ReportService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetRevenue(days int) (*repository.RevenueSummary, error)
	GetRevenueBetween(start, end time.Time) (*repository.RevenueSummary, error)
	GetUserActivity() ([]repository.UserJobStats, error)
}

type reportService struct {
	jobRepo     repository.PrintJobRepository
	paymentRepo repository.PaymentRepository
	productRepo repository.ProductRepository
}

func NewReportService(jobRepo repository.PrintJobRepository, paymentRepo repository.PaymentRepository, productRepo repository.ProductRepository) ReportService {
	return &reportService{
		jobRepo:     jobRepo,
		paymentRepo: paymentRepo,
		productRepo: productRepo,
	}
}

func (s *reportService) GetDashboardStats() (*DashboardStats, error) {
	counts, err := s.jobRepo.CountByStatus()
	if err != nil {
		return nil, err
	}

	inventory, err := s.productRepo.GetInventoryStats()
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		JobCounts: counts,
		Inventory: inventory,
	}, nil
}

func (s *reportService) GetRevenue(days int) (*repository.RevenueSummary, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.paymentRepo.RevenueBetween(startDate, endDate)
}

func (s *reportService) GetRevenueBetween(start, end time.Time) (*repository.RevenueSummary, error) {
	return s.paymentRepo.RevenueBetween(start, end)
}

// GetUserActivity ranks users by how much they print.
func (s *reportService) GetUserActivity() ([]repository.UserJobStats, error) {
	return s.jobRepo.GetUserJobStats()
}
