package handler

import (
	"strconv"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	// Extract from JWT context (set by RequireAuth middleware)
	userID := c.Locals("user_id")
	if userID == nil {
		return "system" // Fallback jika tidak ada (shouldn't happen in protected routes)
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

// Helper untuk parse UUID dari string
func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

func parseProductID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID := getUserID(c)
	userName := getUserName(c)

	if err := h.service.CreateProduct(&product, userID, userName); err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID := getUserID(c)
	userName := getUserName(c)

	updated, err := h.service.UpdateProduct(productID, &product, userID, userName)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// Restock adds sheets to an existing product.
// POST /api/v1/products/:id/restock
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	productID, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req struct {
		Sheets int `json:"sheets"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID := getUserID(c)
	userName := getUserName(c)

	updated, err := h.service.Restock(productID, req.Sheets, userID, userName)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Product restocked", "data": updated})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.service.DeleteProduct(productID); err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	// Optional name search
	if query := c.Query("q"); query != "" {
		products, err := h.service.SearchProducts(query)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
		return c.JSON(products)
	}

	products, err := h.service.GetAllProducts()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.GetProduct(productID)
	if err != nil {
		return c.Status(workflowStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(product)
}
