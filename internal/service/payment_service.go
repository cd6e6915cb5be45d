package service

import (
	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
	"go-printshop-ws/pkg/validator"

	"gorm.io/gorm"
)

type RecordPaymentRequest struct {
	JobID               uint                `json:"job_id" validate:"required"`
	Amount              int64               `json:"amount" validate:"required,gt=0"` // centavos
	Method              model.PaymentMethod `json:"method" validate:"required,oneof=Cash Gcash"`
	GcashName           *string             `json:"gcash_name,omitempty"`
	GcashNumber         *string             `json:"gcash_number,omitempty"`
	GcashScreenshotPath *string             `json:"gcash_screenshot_path,omitempty"`
}

// PaymentResult reports what happened: the payment row always lands, but
// the job status only moves when the job was Approved at the time.
type PaymentResult struct {
	Payment       *model.Payment  `json:"payment"`
	StatusChanged bool            `json:"status_changed"`
	NewStatus     model.JobStatus `json:"new_status,omitempty"`
}

type PaymentService interface {
	RecordPayment(req *RecordPaymentRequest) (*PaymentResult, error)
	ListJobPayments(jobID uint) ([]model.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	jobRepo     repository.PrintJobRepository
	db          TxRunner
}

func NewPaymentService(paymentRepo repository.PaymentRepository, jobRepo repository.PrintJobRepository, db TxRunner) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		jobRepo:     jobRepo,
		db:          db,
	}
}

// RecordPayment inserts the payment and, in the same transaction, moves an
// Approved job to Paid (Gcash) or Cash. A job in any other status keeps its
// status; the payment is still recorded so the counter can reconcile it.
func (s *paymentService) RecordPayment(req *RecordPaymentRequest) (*PaymentResult, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationErrf("%s", validator.FirstError(errs))
	}

	if _, err := s.jobRepo.FindByID(req.JobID); err != nil {
		return nil, resourceErrf("print job %d not found", req.JobID)
	}

	newStatus := model.StatusPaid
	if req.Method == model.PayCash {
		newStatus = model.StatusCash
	}

	payment := &model.Payment{
		JobID:         req.JobID,
		PaymentAmount: req.Amount,
		PaymentMethod: req.Method,
	}
	// Wallet details only make sense for Gcash
	if req.Method == model.PayGcash {
		payment.GcashName = req.GcashName
		payment.GcashNumber = req.GcashNumber
		payment.GcashScreenshotPath = req.GcashScreenshotPath
	}

	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(tx, payment); err != nil {
			return err
		}

		var err error
		affected, err = s.jobRepo.UpdateStatusPayment(tx, req.JobID, newStatus, req.Method)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{Payment: payment, StatusChanged: affected > 0}
	if result.StatusChanged {
		result.NewStatus = newStatus
	}
	return result, nil
}

func (s *paymentService) ListJobPayments(jobID uint) ([]model.Payment, error) {
	return s.paymentRepo.FindByJob(jobID)
}
