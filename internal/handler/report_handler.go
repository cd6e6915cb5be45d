package handler

import (
	"time"

	"go-printshop-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetDashboardStats returns the queue counts and stock position for the
// admin landing page.
// GET /api/v1/reports/dashboard
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

// GetRevenue summarizes payments over a preset range.
// GET /api/v1/reports/revenue?range=7d
func (h *ReportHandler) GetRevenue(c *fiber.Ctx) error {
	rangeParam := c.Query("range", "7d") // Default 7 days

	var days int
	switch rangeParam {
	case "7d":
		days = 7
	case "1m":
		days = 30
	case "3m":
		days = 90
	case "6m":
		days = 180
	case "12m":
		days = 365
	default:
		days = 7
	}

	summary, err := h.service.GetRevenue(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}

// GetRevenueBetween summarizes payments over an explicit date range.
// GET /api/v1/reports/revenue/custom?start=2026-08-01&end=2026-08-31
func (h *ReportHandler) GetRevenueBetween(c *fiber.Ctx) error {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid start date, use YYYY-MM-DD"})
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid end date, use YYYY-MM-DD"})
	}
	if end.Before(start) {
		return c.Status(400).JSON(fiber.Map{"error": "End date cannot be before start date"})
	}

	// Include the whole end day
	summary, err := h.service.GetRevenueBetween(start, end.Add(24*time.Hour-time.Second))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}

// GetUserActivity ranks users by job count for the admin report page.
// GET /api/v1/reports/users
func (h *ReportHandler) GetUserActivity(c *fiber.Ctx) error {
	stats, err := h.service.GetUserActivity()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}
