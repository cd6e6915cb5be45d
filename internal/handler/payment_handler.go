package handler

import (
	"strconv"

	"go-printshop-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

// RecordPayment stores the payment and moves an Approved job to Paid or
// Cash depending on the method.
// POST /api/v1/payments
func (h *PaymentHandler) RecordPayment(c *fiber.Ctx) error {
	var req service.RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.service.RecordPayment(&req)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	message := "Payment recorded"
	if !result.StatusChanged {
		message = "Payment recorded; job status unchanged (job was not Approved)"
	}

	return c.Status(201).JSON(fiber.Map{"message": message, "data": result})
}

// GetJobPayments lists every payment recorded against a job.
// GET /api/v1/payments/job/:id
func (h *PaymentHandler) GetJobPayments(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job ID"})
	}

	payments, err := h.service.ListJobPayments(uint(id))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(payments)
}
