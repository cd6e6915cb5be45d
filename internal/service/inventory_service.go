package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
	"go-printshop-ws/internal/ws"
	"go-printshop-ws/pkg/validator"

	"gorm.io/gorm"
)

// InventoryService manages the paper stock catalog. Deductions tied to job
// completion are NOT here; only PrintJobService may consume stock.
type InventoryService interface {
	CreateProduct(req *model.Product, userID, userName string) error
	UpdateProduct(id uint, req *model.Product, userID, userName string) (*model.Product, error)
	Restock(id uint, sheets int, userID, userName string) (*model.Product, error)
	DeleteProduct(id uint) error
	GetAllProducts() ([]model.Product, error)
	SearchProducts(query string) ([]model.Product, error)
	GetProduct(id uint) (*model.Product, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	db          TxRunner
	wsHub       *ws.Hub
}

func NewInventoryService(pRepo repository.ProductRepository, db TxRunner, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		db:          db,
		wsHub:       hub,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product, userID, userName string) error {
	// 1. Validasi Struct Dasar
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationErrf("%s", validator.FirstError(errs))
	}

	// 2. Cek Duplikasi Nama (Business Logic Validation)
	existing, err := s.productRepo.FindByName(req.ProductName)
	if err == nil && existing.ProductID != 0 {
		return validationErrf("product '%s' already exists", req.ProductName)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// 3. Set Audit Fields
	req.UpdatedBy = userID

	// 4. Simpan ke Database
	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	// 5. Broadcast ke WebSocket dengan user info
	s.broadcastStock("product_created", req, req.Quantity, userName,
		fmt.Sprintf("%s created product '%s'", userName, req.ProductName))

	return nil
}

func (s *inventoryService) UpdateProduct(id uint, req *model.Product, userID, userName string) (*model.Product, error) {
	var updated *model.Product
	var oldQuantity int

	// Gunakan Transaction Block dengan Locking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Cari & Lock Product (Pessimistic Locking)
		existing, err := s.productRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			return resourceErrf("product %d not found", id)
		}

		oldQuantity = existing.Quantity

		if req.Quantity < 0 {
			return validationErrf("quantity cannot be negative")
		}

		// 2. Update fields
		existing.ProductName = req.ProductName
		existing.Quantity = req.Quantity
		existing.Price = req.Price
		existing.UpdatedBy = userID

		if err := s.productRepo.UpdateDetails(tx, existing); err != nil {
			return err
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 3. Broadcast setelah commit; rollback tidak boleh bocor ke client
	s.broadcastStock("product_updated", updated, oldQuantity, userName,
		fmt.Sprintf("%s updated product '%s'", userName, updated.ProductName))

	return updated, nil
}

// Restock adds sheets to a product under the same row lock the deduction
// path takes, so a restock and a completion never interleave.
func (s *inventoryService) Restock(id uint, sheets int, userID, userName string) (*model.Product, error) {
	if sheets <= 0 {
		return nil, validationErrf("restock amount must be positive")
	}

	var updated *model.Product
	var oldQuantity int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			return resourceErrf("product %d not found", id)
		}

		oldQuantity = existing.Quantity
		newQuantity := existing.Quantity + sheets

		if err := s.productRepo.UpdateQuantity(tx, existing.ProductID, newQuantity, userID); err != nil {
			return err
		}

		existing.Quantity = newQuantity
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock("product_restocked", updated, oldQuantity, userName,
		fmt.Sprintf("%s added %d sheets of '%s'", userName, sheets, updated.ProductName))

	return updated, nil
}

func (s *inventoryService) DeleteProduct(id uint) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		return resourceErrf("product %d not found", id)
	}
	return s.productRepo.Delete(id)
}

func (s *inventoryService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *inventoryService) SearchProducts(query string) ([]model.Product, error) {
	return s.productRepo.Search(query)
}

func (s *inventoryService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, resourceErrf("product %d not found", id)
	}
	return product, nil
}

// broadcastStock pushes a stock_update event to every connected client.
// Dipanggil setelah commit; goroutine agar tidak block request handler.
func (s *inventoryService) broadcastStock(action string, product *model.Product, oldQuantity int, userName, message string) {
	if s.wsHub == nil {
		return
	}

	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"product": map[string]interface{}{
				"product_id":   product.ProductID,
				"product_name": product.ProductName,
				"old_quantity": oldQuantity,
				"new_quantity": product.Quantity,
				"price":        product.Price,
			},
			"user":    userName,
			"message": message,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
