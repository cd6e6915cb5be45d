package handler

import (
	"strconv"

	"go-printshop-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// GetMyNotifications lists the authenticated user's notifications,
// broadcasts included.
// GET /api/v1/notifications
func (h *NotificationHandler) GetMyNotifications(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	notifications, err := h.service.ListForUser(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(notifications)
}

// GetUnreadCount returns the badge count for the bell icon.
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	count, err := h.service.UnreadCount(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkRead flags a single notification as read.
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	if err := h.service.MarkRead(uint(id)); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllRead flags every notification of the user as read.
// PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := h.service.MarkAllRead(userID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

// Clear deletes all of the user's own notifications.
// DELETE /api/v1/notifications
func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := h.service.ClearForUser(userID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Notifications cleared"})
}

// MessageDeclinedUser sends a follow-up notice to the owner of a Declined
// job.
// POST /api/v1/notifications/declined/:id
func (h *NotificationHandler) MessageDeclinedUser(c *fiber.Ctx) error {
	jobID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid job ID"})
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.MessageDeclinedUser(uint(jobID), req.Message); err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Message sent"})
}

// Broadcast fans a notice out to every active account.
// POST /api/v1/notifications/broadcast
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	count, err := h.service.BroadcastToActive(req.Subject, req.Message)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Broadcast sent", "recipients": count})
}
