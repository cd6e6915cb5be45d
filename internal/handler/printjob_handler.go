package handler

import (
	"strconv"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
	"go-printshop-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PrintJobHandler struct {
	service service.PrintJobService
}

func NewPrintJobHandler(s service.PrintJobService) *PrintJobHandler {
	return &PrintJobHandler{service: s}
}

// workflowStatus maps the engine's error kinds to HTTP codes so the
// frontend can tell a bad request from a lost race on stock.
func workflowStatus(err error) int {
	switch service.KindOf(err) {
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindState:
		return fiber.StatusConflict
	case service.KindResource:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func parseJobID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// Submit creates a new print job in Pending.
// POST /api/v1/jobs
func (h *PrintJobHandler) Submit(c *fiber.Ctx) error {
	var req service.SubmitJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	// Customers submit on their own behalf
	if userID, err := parseUUID(getUserID(c)); err == nil {
		req.UserID = userID
	}

	job, err := h.service.Submit(&req)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Print job submitted",
		"data":    job,
		"total":   service.FormatAmount(job.TotalAmount),
	})
}

// ChangeStatus is the admin transition endpoint. Approved and Declined go
// through here; Completed is rejected (use StartPrint).
// PATCH /api/v1/jobs/:id/status
func (h *PrintJobHandler) ChangeStatus(c *fiber.Ctx) error {
	jobID, err := parseJobID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job ID"})
	}

	var req struct {
		Status model.JobStatus `json:"status"`
		Note   string          `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	job, err := h.service.ChangeStatus(jobID, req.Status, req.Note)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Status updated", "data": job})
}

// StartPrint deducts paper stock and completes the job atomically.
// POST /api/v1/jobs/:id/print
func (h *PrintJobHandler) StartPrint(c *fiber.Ctx) error {
	jobID, err := parseJobID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job ID"})
	}

	job, err := h.service.StartPrint(jobID)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Job completed", "data": job})
}

// GetJobs lists all jobs in counter order, optionally filtered.
// GET /api/v1/jobs?status=Pending&username=juan
func (h *PrintJobHandler) GetJobs(c *fiber.Ctx) error {
	filter := repository.PrintJobFilter{
		Status:   model.JobStatus(c.Query("status")),
		Username: c.Query("username"),
	}

	jobs, err := h.service.ListJobs(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(jobs)
}

// GetJob returns one job with its file and owner preloaded.
// GET /api/v1/jobs/:id
func (h *PrintJobHandler) GetJob(c *fiber.Ctx) error {
	jobID, err := parseJobID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job ID"})
	}

	job, err := h.service.GetJob(jobID)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(job)
}

// GetMyJobs lists the authenticated user's own jobs.
// GET /api/v1/jobs/mine
func (h *PrintJobHandler) GetMyJobs(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	jobs, err := h.service.ListUserJobs(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(jobs)
}
