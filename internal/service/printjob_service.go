package service

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
	"go-printshop-ws/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner is the transaction boundary the engine runs its atomic
// operations inside. *gorm.DB satisfies it.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// CompletionNotifier delivers the pickup notice after a completed job has
// committed. It is best-effort: the engine logs a failure and moves on,
// the committed job and inventory state stand either way.
type CompletionNotifier interface {
	NotifyJobCompleted(job *model.PrintJob) error
}

type SubmitJobRequest struct {
	UserID      uuid.UUID         `json:"user_id" validate:"uuid_required"`
	FileName    string            `json:"file_name" validate:"required"`
	FilePath    string            `json:"file_path"`
	FileType    string            `json:"file_type" validate:"required,oneof=pdf docx"`
	Pages       int               `json:"pages" validate:"required,gt=0"`
	Copies      int               `json:"copies" validate:"required,gt=0"`
	PaperSize   model.PaperSize   `json:"paper_size" validate:"required,oneof=Short A4 Long"`
	ColorOption model.ColorOption `json:"color_option" validate:"required,oneof='Black & White' Color 'Partially Colored'"`
	Notes       string            `json:"notes"`
}

// PrintJobService owns every status transition of a print job. Nothing
// else writes the status column or deducts paper stock.
type PrintJobService interface {
	Submit(req *SubmitJobRequest) (*model.PrintJob, error)
	Approve(jobID uint) (*model.PrintJob, error)
	Decline(jobID uint, note string) (*model.PrintJob, error)
	StartPrint(jobID uint) (*model.PrintJob, error)
	ChangeStatus(jobID uint, newStatus model.JobStatus, note string) (*model.PrintJob, error)
	GetJob(jobID uint) (*model.PrintJob, error)
	ListJobs(filter repository.PrintJobFilter) ([]model.PrintJob, error)
	ListUserJobs(userID uuid.UUID) ([]model.PrintJob, error)
}

type printJobService struct {
	jobRepo     repository.PrintJobRepository
	productRepo repository.ProductRepository
	fileRepo    repository.FileRepository
	db          TxRunner
	notifier    CompletionNotifier
}

func NewPrintJobService(
	jobRepo repository.PrintJobRepository,
	productRepo repository.ProductRepository,
	fileRepo repository.FileRepository,
	db TxRunner,
	notifier CompletionNotifier,
) PrintJobService {
	return &printJobService{
		jobRepo:     jobRepo,
		productRepo: productRepo,
		fileRepo:    fileRepo,
		db:          db,
		notifier:    notifier,
	}
}

// Submit prices the request and creates the job in Pending, together with
// its file record, in one transaction.
func (s *printJobService) Submit(req *SubmitJobRequest) (*model.PrintJob, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationErrf("%s", validator.FirstError(errs))
	}

	total, err := QuoteTotal(req.Pages, req.Copies, req.PaperSize, req.ColorOption)
	if err != nil {
		return nil, err
	}

	var job *model.PrintJob
	err = s.db.Transaction(func(tx *gorm.DB) error {
		file := &model.File{
			UserID:   req.UserID,
			FileName: req.FileName,
			FilePath: req.FilePath,
			FileType: req.FileType,
		}
		if err := s.fileRepo.Create(tx, file); err != nil {
			return err
		}

		var notes *string
		if n := strings.TrimSpace(req.Notes); n != "" {
			notes = &n
		}

		job = &model.PrintJob{
			UserID:      req.UserID,
			FileID:      file.FileID,
			Pages:       req.Pages,
			Copies:      req.Copies,
			PaperSize:   req.PaperSize,
			ColorOption: req.ColorOption,
			TotalAmount: total,
			Status:      model.StatusPending,
			Notes:       notes,
		}
		return s.jobRepo.Create(tx, job)
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// Approve moves a Pending or Declined job to Approved. The stock check
// here is advisory only: nothing is reserved, so concurrent approvals can
// still outrun the stock. StartPrint re-checks under a row lock.
func (s *printJobService) Approve(jobID uint) (*model.PrintJob, error) {
	job, err := s.findJob(jobID)
	if err != nil {
		return nil, err
	}

	if !job.Status.CanApprove() {
		if job.Status.Terminal() {
			return nil, stateErrf("cannot approve a job that is already '%s'", job.Status)
		}
		return nil, stateErrf("this is already approved. This request is '%s'", job.Status)
	}
	if job.Pages <= 0 || job.Copies <= 0 {
		return nil, validationErrf("job has 0 pages or 0 copies, cannot approve")
	}

	productName := job.PaperSize.ProductName()
	required := job.SheetsRequired()

	product, err := s.productRepo.FindByName(productName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resourceErrf("'%s' not found in inventory, cannot approve this job", productName)
		}
		return nil, err
	}
	if product.Quantity < required {
		return nil, resourceErrf("not enough stock for '%s': required %d, available %d", productName, required, product.Quantity)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.jobRepo.UpdateStatus(tx, job.JobID, model.StatusApproved, nil)
	})
	if err != nil {
		return nil, err
	}

	job.Status = model.StatusApproved
	job.Notes = nil
	job.UpdatedAt = time.Now()
	return job, nil
}

// Decline rejects a job with a mandatory reason. Paid, Cash and Completed
// jobs cannot be declined; declining twice is a state error.
func (s *printJobService) Decline(jobID uint, note string) (*model.PrintJob, error) {
	job, err := s.findJob(jobID)
	if err != nil {
		return nil, err
	}

	if job.Status.Terminal() {
		return nil, stateErrf("cannot decline a job that is already '%s'", job.Status)
	}
	if job.Status == model.StatusDeclined {
		return nil, stateErrf("this request is already 'Declined'")
	}

	note = strings.TrimSpace(note)
	if note == "" {
		return nil, validationErrf("a note explaining the decline reason is required")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.jobRepo.UpdateStatus(tx, job.JobID, model.StatusDeclined, &note)
	})
	if err != nil {
		return nil, err
	}

	job.Status = model.StatusDeclined
	job.Notes = &note
	job.UpdatedAt = time.Now()
	return job, nil
}

// StartPrint is the only path to Completed. It locks the paper stock row,
// re-checks availability, deducts pages*copies sheets and flips the status
// in one transaction. Either everything commits or nothing does.
func (s *printJobService) StartPrint(jobID uint) (*model.PrintJob, error) {
	job, err := s.findJob(jobID)
	if err != nil {
		return nil, err
	}

	if !job.Status.CanStartPrint() {
		return nil, stateErrf("job must be 'Approved' or 'Paid' to start printing; status is '%s'", job.Status)
	}

	productName := job.PaperSize.ProductName()
	required := job.SheetsRequired()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if job.Pages <= 0 || job.Copies <= 0 {
			return validationErrf("invalid pages or copies count for inventory deduction")
		}

		product, err := s.productRepo.FindByNameForUpdate(tx, productName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return resourceErrf("'%s' not found in inventory, cannot complete job", productName)
			}
			return err
		}

		if product.Quantity < required {
			return resourceErrf("insufficient stock for '%s': required %d, available %d", productName, required, product.Quantity)
		}

		if err := s.productRepo.Deduct(tx, productName, required); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return resourceErrf("insufficient stock for '%s': required %d, available %d", productName, required, product.Quantity)
			}
			return err
		}

		return s.jobRepo.UpdateStatus(tx, job.JobID, model.StatusCompleted, nil)
	})
	if err != nil {
		return nil, err
	}

	job.Status = model.StatusCompleted
	job.Notes = nil
	job.UpdatedAt = time.Now()

	// The deduction is already committed; a failed notice must not undo it.
	if err := s.notifier.NotifyJobCompleted(job); err != nil {
		log.Printf("Warning: pickup notification for job %d failed: %v", job.JobID, err)
	}

	return job, nil
}

// ChangeStatus is the generic transition entry point for the admin UI.
// Completed is deliberately not reachable here: it would bypass the stock
// deduction, so only StartPrint may produce it.
func (s *printJobService) ChangeStatus(jobID uint, newStatus model.JobStatus, note string) (*model.PrintJob, error) {
	switch newStatus {
	case model.StatusApproved:
		return s.Approve(jobID)
	case model.StatusDeclined:
		return s.Decline(jobID, note)
	case model.StatusCompleted:
		return nil, stateErrf("jobs cannot be marked Completed directly; use the start-print operation")
	default:
		return nil, stateErrf("status '%s' cannot be requested directly", newStatus)
	}
}

func (s *printJobService) GetJob(jobID uint) (*model.PrintJob, error) {
	return s.findJob(jobID)
}

func (s *printJobService) ListJobs(filter repository.PrintJobFilter) ([]model.PrintJob, error) {
	return s.jobRepo.FindAll(filter)
}

func (s *printJobService) ListUserJobs(userID uuid.UUID) ([]model.PrintJob, error) {
	return s.jobRepo.FindByUser(userID)
}

func (s *printJobService) findJob(jobID uint) (*model.PrintJob, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resourceErrf("print job %d not found", jobID)
		}
		return nil, err
	}
	return job, nil
}
