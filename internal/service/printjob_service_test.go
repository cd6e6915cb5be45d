package service

import (
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeTxRunner serializes transactions with a mutex, mirroring the row
// lock the real engine takes, and hands the callback a nil tx that the
// fake repos ignore.
type fakeTxRunner struct {
	mu sync.Mutex
}

func (f *fakeTxRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fc(nil)
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*model.Product)}
}

func (f *fakeProductRepo) seed(name string, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[name] = &model.Product{
		ProductID:   uint(len(f.products) + 1),
		ProductName: name,
		Quantity:    quantity,
	}
}

func (f *fakeProductRepo) quantity(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[name].Quantity
}

func (f *fakeProductRepo) Create(product *model.Product) error { return nil }

func (f *fakeProductRepo) FindAll() ([]model.Product, error) { return nil, nil }

func (f *fakeProductRepo) FindByID(id uint) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ProductID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) FindByName(name string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) Search(query string) ([]model.Product, error) { return nil, nil }

func (f *fakeProductRepo) Update(product *model.Product) error { return nil }

func (f *fakeProductRepo) Delete(id uint) error { return nil }

func (f *fakeProductRepo) SeedDefaults() error { return nil }

func (f *fakeProductRepo) GetInventoryStats() (*repository.InventoryStats, error) {
	return &repository.InventoryStats{}, nil
}

func (f *fakeProductRepo) FindByNameForUpdate(tx *gorm.DB, name string) (*model.Product, error) {
	return f.FindByName(name)
}

func (f *fakeProductRepo) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Product, error) {
	return f.FindByID(id)
}

// Deduct mirrors the real guarded UPDATE: no row with enough quantity
// means nothing is deducted.
func (f *fakeProductRepo) Deduct(tx *gorm.DB, name string, sheets int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[name]
	if !ok || p.Quantity < sheets {
		return repository.ErrInsufficientStock
	}
	p.Quantity -= sheets
	return nil
}

func (f *fakeProductRepo) UpdateDetails(tx *gorm.DB, product *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, p := range f.products {
		if p.ProductID == product.ProductID {
			delete(f.products, name)
			cp := *product
			f.products[cp.ProductName] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) UpdateQuantity(tx *gorm.DB, id uint, newQuantity int, updatedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ProductID == id {
			p.Quantity = newQuantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeJobRepo struct {
	mu     sync.Mutex
	jobs   map[uint]*model.PrintJob
	nextID uint
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uint]*model.PrintJob), nextID: 1}
}

func (f *fakeJobRepo) seed(job *model.PrintJob) *model.PrintJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.JobID = f.nextID
	f.nextID++
	f.jobs[job.JobID] = job
	return job
}

func (f *fakeJobRepo) status(id uint) model.JobStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id].Status
}

func (f *fakeJobRepo) Create(tx *gorm.DB, job *model.PrintJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.JobID = f.nextID
	f.nextID++
	cp := *job
	f.jobs[job.JobID] = &cp
	return nil
}

func (f *fakeJobRepo) FindByID(id uint) (*model.PrintJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeJobRepo) FindByUser(userID uuid.UUID) ([]model.PrintJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []model.PrintJob
	for _, job := range f.jobs {
		if job.UserID == userID {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

func (f *fakeJobRepo) FindAll(filter repository.PrintJobFilter) ([]model.PrintJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []model.PrintJob
	for _, job := range f.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (f *fakeJobRepo) CountByStatus() (map[model.JobStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[model.JobStatus]int64)
	for _, job := range f.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

func (f *fakeJobRepo) GetUserJobStats() ([]repository.UserJobStats, error) { return nil, nil }

func (f *fakeJobRepo) UpdateStatus(tx *gorm.DB, id uint, status model.JobStatus, notes *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	job.Status = status
	job.Notes = notes
	job.UpdatedAt = time.Now()
	return nil
}

func (f *fakeJobRepo) UpdateStatusPayment(tx *gorm.DB, id uint, status model.JobStatus, method model.PaymentMethod) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.Status != model.StatusApproved {
		return 0, nil
	}
	job.Status = status
	job.PaymentMethod = &method
	job.UpdatedAt = time.Now()
	return 1, nil
}

type fakeFileRepo struct {
	mu     sync.Mutex
	nextID uint
}

func (f *fakeFileRepo) Create(tx *gorm.DB, file *model.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	file.FileID = f.nextID
	return nil
}

func (f *fakeFileRepo) FindByID(id uint) (*model.File, error) { return nil, gorm.ErrRecordNotFound }

func (f *fakeFileRepo) FindByUser(userID uuid.UUID) ([]model.File, error) { return nil, nil }

// recordingNotifier captures completion notices; failNext makes the next
// delivery fail once.
type recordingNotifier struct {
	mu       sync.Mutex
	notified []uint
	failNext bool
}

func (n *recordingNotifier) NotifyJobCompleted(job *model.PrintJob) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext {
		n.failNext = false
		return errors.New("notification store down")
	}
	n.notified = append(n.notified, job.JobID)
	return nil
}

type workflowFixture struct {
	svc      PrintJobService
	jobs     *fakeJobRepo
	products *fakeProductRepo
	notifier *recordingNotifier
}

func newWorkflowFixture(stock int) *workflowFixture {
	products := newFakeProductRepo()
	products.seed("Short Bond Paper", stock)
	products.seed("A4 Bond Paper", stock)
	products.seed("Long Bond Paper", stock)

	jobs := newFakeJobRepo()
	notifier := &recordingNotifier{}
	svc := NewPrintJobService(jobs, products, &fakeFileRepo{}, &fakeTxRunner{}, notifier)

	return &workflowFixture{svc: svc, jobs: jobs, products: products, notifier: notifier}
}

func (fx *workflowFixture) seedJob(status model.JobStatus, pages, copies int, size model.PaperSize) *model.PrintJob {
	return fx.jobs.seed(&model.PrintJob{
		UserID:      uuid.New(),
		FileID:      1,
		Pages:       pages,
		Copies:      copies,
		PaperSize:   size,
		ColorOption: model.ColorBlackAndWhite,
		Status:      status,
	})
}

func TestSubmitCreatesPendingJobWithQuote(t *testing.T) {
	fx := newWorkflowFixture(100)

	job, err := fx.svc.Submit(&SubmitJobRequest{
		UserID:      uuid.New(),
		FileName:    "thesis.pdf",
		FileType:    "pdf",
		Pages:       10,
		Copies:      2,
		PaperSize:   model.PaperA4,
		ColorOption: model.ColorBlackAndWhite,
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, job.Status)
	assert.Equal(t, int64(6000), job.TotalAmount)
	assert.NotZero(t, job.JobID)
	assert.NotZero(t, job.FileID)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	fx := newWorkflowFixture(100)

	_, err := fx.svc.Submit(&SubmitJobRequest{
		UserID:      uuid.New(),
		FileName:    "thesis.exe",
		FileType:    "exe",
		Pages:       10,
		Copies:      1,
		PaperSize:   model.PaperA4,
		ColorOption: model.ColorBlackAndWhite,
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestApproveHappyPath(t *testing.T) {
	fx := newWorkflowFixture(100)
	job := fx.seedJob(model.StatusPending, 5, 2, model.PaperA4)

	approved, err := fx.svc.Approve(job.JobID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, model.StatusApproved, fx.jobs.status(job.JobID))
	// Approval never consumes stock; only StartPrint does
	assert.Equal(t, 100, fx.products.quantity("A4 Bond Paper"))
}

func TestApproveInsufficientStock(t *testing.T) {
	fx := newWorkflowFixture(5)
	job := fx.seedJob(model.StatusPending, 5, 2, model.PaperLong)

	_, err := fx.svc.Approve(job.JobID)
	require.Error(t, err)

	assert.Equal(t, KindResource, KindOf(err))
	assert.Contains(t, err.Error(), "required 10, available 5")
	assert.Equal(t, model.StatusPending, fx.jobs.status(job.JobID))
}

func TestApprovePaidJobIsStateErrorNotStockError(t *testing.T) {
	// The state check fires before the stock check, so a Paid job with
	// zero stock still reports a state conflict.
	fx := newWorkflowFixture(0)
	job := fx.seedJob(model.StatusPaid, 5, 2, model.PaperA4)

	_, err := fx.svc.Approve(job.JobID)
	require.Error(t, err)

	assert.Equal(t, KindState, KindOf(err))
	assert.Contains(t, err.Error(), "Paid")
}

func TestApproveDeclinedJobReapproves(t *testing.T) {
	fx := newWorkflowFixture(100)
	note := "blurry scan"
	job := fx.seedJob(model.StatusDeclined, 2, 1, model.PaperShort)
	job.Notes = &note

	approved, err := fx.svc.Approve(job.JobID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Nil(t, approved.Notes)
}

func TestApproveMissingJob(t *testing.T) {
	fx := newWorkflowFixture(100)

	_, err := fx.svc.Approve(999)
	require.Error(t, err)
	assert.Equal(t, KindResource, KindOf(err))
}

func TestDeclineRequiresNote(t *testing.T) {
	fx := newWorkflowFixture(100)
	job := fx.seedJob(model.StatusPending, 2, 1, model.PaperA4)

	_, err := fx.svc.Decline(job.JobID, "   ")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, model.StatusPending, fx.jobs.status(job.JobID))
}

func TestDeclineStoresNoteAndIsNotIdempotent(t *testing.T) {
	fx := newWorkflowFixture(100)
	job := fx.seedJob(model.StatusPending, 2, 1, model.PaperA4)

	declined, err := fx.svc.Decline(job.JobID, "wrong file uploaded")
	require.NoError(t, err)
	require.NotNil(t, declined.Notes)
	assert.Equal(t, "wrong file uploaded", *declined.Notes)

	// Declining twice is a state error
	_, err = fx.svc.Decline(job.JobID, "still wrong")
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))
}

func TestDeclinePaidJobRejected(t *testing.T) {
	fx := newWorkflowFixture(100)
	job := fx.seedJob(model.StatusCash, 2, 1, model.PaperA4)

	_, err := fx.svc.Decline(job.JobID, "changed my mind")
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))
}

func TestStartPrintDeductsStockAndCompletes(t *testing.T) {
	fx := newWorkflowFixture(100)
	job := fx.seedJob(model.StatusApproved, 5, 2, model.PaperA4)

	done, err := fx.svc.StartPrint(job.JobID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, 90, fx.products.quantity("A4 Bond Paper"))
	assert.Equal(t, []uint{job.JobID}, fx.notifier.notified)
}

func TestStartPrintFromPaid(t *testing.T) {
	fx := newWorkflowFixture(20)
	job := fx.seedJob(model.StatusPaid, 4, 5, model.PaperShort)

	done, err := fx.svc.StartPrint(job.JobID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, 0, fx.products.quantity("Short Bond Paper"))
}

func TestStartPrintInsufficientStockIsAtomic(t *testing.T) {
	fx := newWorkflowFixture(9)
	job := fx.seedJob(model.StatusApproved, 5, 2, model.PaperA4)

	_, err := fx.svc.StartPrint(job.JobID)
	require.Error(t, err)

	assert.Equal(t, KindResource, KindOf(err))
	// Nothing moved: stock intact, status intact, no notice sent
	assert.Equal(t, 9, fx.products.quantity("A4 Bond Paper"))
	assert.Equal(t, model.StatusApproved, fx.jobs.status(job.JobID))
	assert.Empty(t, fx.notifier.notified)
}

// staleReadProductRepo over-reports the locked quantity, standing in for
// a reader that missed the row lock. The guarded deduction is the last
// line of defense and must refuse the oversell.
type staleReadProductRepo struct {
	*fakeProductRepo
	reportQuantity int
}

func (f *staleReadProductRepo) FindByNameForUpdate(tx *gorm.DB, name string) (*model.Product, error) {
	p, err := f.fakeProductRepo.FindByNameForUpdate(tx, name)
	if err != nil {
		return nil, err
	}
	p.Quantity = f.reportQuantity
	return p, nil
}

func TestStartPrintGuardedDeductRefusesOversell(t *testing.T) {
	products := newFakeProductRepo()
	products.seed("A4 Bond Paper", 5)
	stale := &staleReadProductRepo{fakeProductRepo: products, reportQuantity: 100}

	jobs := newFakeJobRepo()
	notifier := &recordingNotifier{}
	svc := NewPrintJobService(jobs, stale, &fakeFileRepo{}, &fakeTxRunner{}, notifier)

	job := jobs.seed(&model.PrintJob{
		UserID:      uuid.New(),
		FileID:      1,
		Pages:       5,
		Copies:      2,
		PaperSize:   model.PaperA4,
		ColorOption: model.ColorBlackAndWhite,
		Status:      model.StatusApproved,
	})

	_, err := svc.StartPrint(job.JobID)
	require.Error(t, err)

	assert.Equal(t, KindResource, KindOf(err))
	assert.Equal(t, 5, products.quantity("A4 Bond Paper"))
	assert.Equal(t, model.StatusApproved, jobs.status(job.JobID))
	assert.Empty(t, notifier.notified)
}

func TestStartPrintRequiresApprovedOrPaid(t *testing.T) {
	fx := newWorkflowFixture(100)

	for _, status := range []model.JobStatus{model.StatusPending, model.StatusDeclined, model.StatusCompleted} {
		job := fx.seedJob(status, 2, 1, model.PaperA4)
		_, err := fx.svc.StartPrint(job.JobID)
		require.Error(t, err, "status %s", status)
		assert.Equal(t, KindState, KindOf(err))
	}
	assert.Equal(t, 100, fx.products.quantity("A4 Bond Paper"))
}

func TestStartPrintSurvivesNotifierFailure(t *testing.T) {
	fx := newWorkflowFixture(100)
	fx.notifier.failNext = true
	job := fx.seedJob(model.StatusApproved, 5, 2, model.PaperA4)

	done, err := fx.svc.StartPrint(job.JobID)
	require.NoError(t, err)

	// Deduction and completion stand even though the notice failed
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, 90, fx.products.quantity("A4 Bond Paper"))
	assert.Equal(t, model.StatusCompleted, fx.jobs.status(job.JobID))
}

func TestChangeStatusBlocksDirectCompleted(t *testing.T) {
	fx := newWorkflowFixture(100)
	job := fx.seedJob(model.StatusApproved, 5, 2, model.PaperA4)

	_, err := fx.svc.ChangeStatus(job.JobID, model.StatusCompleted, "")
	require.Error(t, err)

	assert.Equal(t, KindState, KindOf(err))
	// Stock untouched, only StartPrint may deduct
	assert.Equal(t, 100, fx.products.quantity("A4 Bond Paper"))
	assert.Equal(t, model.StatusApproved, fx.jobs.status(job.JobID))
}

func TestChangeStatusDispatch(t *testing.T) {
	fx := newWorkflowFixture(100)

	job := fx.seedJob(model.StatusPending, 2, 1, model.PaperA4)
	approved, err := fx.svc.ChangeStatus(job.JobID, model.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)

	job2 := fx.seedJob(model.StatusPending, 2, 1, model.PaperA4)
	declined, err := fx.svc.ChangeStatus(job2.JobID, model.StatusDeclined, "out of scope")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeclined, declined.Status)

	_, err = fx.svc.ChangeStatus(job.JobID, model.StatusPaid, "")
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))
}

// Two approved jobs race for stock that only covers one of them. Exactly
// one may win and the stock must never go negative.
func TestConcurrentStartPrintNeverOversells(t *testing.T) {
	fx := newWorkflowFixture(10)
	jobA := fx.seedJob(model.StatusApproved, 5, 2, model.PaperA4) // needs 10
	jobB := fx.seedJob(model.StatusApproved, 2, 3, model.PaperA4) // needs 6

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint{jobA.JobID, jobB.JobID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = fx.svc.StartPrint(id)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, KindResource, KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.GreaterOrEqual(t, fx.products.quantity("A4 Bond Paper"), 0)
}
