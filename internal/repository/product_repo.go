package repository

import (
	"errors"

	"go-printshop-ws/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned by Deduct when the guarded update
// matches no row, i.e. the remaining quantity no longer covers the
// requested sheets.
var ErrInsufficientStock = errors.New("insufficient stock for deduction")

// InventoryStats untuk overview stats
type InventoryStats struct {
	TotalProducts  int64 `json:"total_products"`
	LowStockCount  int64 `json:"low_stock_count"`
	TotalValuation int64 `json:"total_valuation"`
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindByName(name string) (*model.Product, error)
	Search(query string) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	SeedDefaults() error
	GetInventoryStats() (*InventoryStats, error)

	// Locking variants menerima *gorm.DB (tx) agar row tetap terkunci
	// sampai transaksi engine commit.
	FindByNameForUpdate(tx *gorm.DB, name string) (*model.Product, error)
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Product, error)
	Deduct(tx *gorm.DB, name string, sheets int) error
	UpdateDetails(tx *gorm.DB, product *model.Product) error
	UpdateQuantity(tx *gorm.DB, id uint, newQuantity int, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("product_id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "product_id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindByName(name string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "product_name = ?", name).Error
	return &product, err
}

func (r *productRepo) Search(query string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("product_name LIKE ?", "%"+query+"%").Order("product_id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Delete(id uint) error {
	return r.db.Delete(&model.Product{}, "product_id = ?", id).Error
}

// SeedDefaults creates the default paper products if they don't exist
func (r *productRepo) SeedDefaults() error {
	for _, p := range model.DefaultProducts {
		var existing model.Product
		if err := r.db.Where("product_name = ?", p.ProductName).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := r.db.Create(&p).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *productRepo) GetInventoryStats() (*InventoryStats, error) {
	var stats InventoryStats

	// Total Products
	r.db.Model(&model.Product{}).Count(&stats.TotalProducts)

	// Low Stock Count (quantity < 10)
	r.db.Model(&model.Product{}).Where("quantity < ?", 10).Count(&stats.LowStockCount)

	// Total Valuation (SUM of quantity * price)
	r.db.Model(&model.Product{}).Select("COALESCE(SUM(quantity * price), 0)").Scan(&stats.TotalValuation)

	return &stats, nil
}

func (r *productRepo) FindByNameForUpdate(tx *gorm.DB, name string) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "product_name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "product_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Deduct mengurangi stok secara atomik. Caller wajib sudah memegang row
// lock; guard quantity >= sheets menolak oversell kalaupun tidak.
func (r *productRepo) Deduct(tx *gorm.DB, name string, sheets int) error {
	res := tx.Model(&model.Product{}).
		Where("product_name = ? AND quantity >= ?", name, sheets).
		Update("quantity", gorm.Expr("quantity - ?", sheets))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// UpdateDetails menyimpan perubahan field product di dalam transaksi caller
func (r *productRepo) UpdateDetails(tx *gorm.DB, product *model.Product) error {
	return tx.Save(product).Error
}

func (r *productRepo) UpdateQuantity(tx *gorm.DB, id uint, newQuantity int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("product_id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   newQuantity,
			"updated_by": updatedBy,
		}).Error
}
