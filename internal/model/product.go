package model

import "time"

// Product is a stock-keeping record for a consumable, keyed by name
// (e.g. "A4 Bond Paper"). Quantity is counted in sheets and must never
// go negative; the only code allowed to subtract from it is the print
// job engine's deduction path.
type Product struct {
	ProductID   uint   `gorm:"primaryKey;column:product_id" json:"product_id"`
	ProductName string `gorm:"type:varchar(100);uniqueIndex;not null" json:"product_name" validate:"required"`
	Quantity    int    `gorm:"not null;default:0" json:"quantity" validate:"gte=0"`
	Price       int64  `gorm:"not null;default:0" json:"price"` // centavos per sheet

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `gorm:"type:varchar(255)" json:"updated_by"`
}

func (Product) TableName() string {
	return "products"
}

// DefaultProducts seeds the paper stock buckets the job workflow deducts from.
var DefaultProducts = []Product{
	{ProductName: "Short Bond Paper", Quantity: 0, Price: 100},
	{ProductName: "A4 Bond Paper", Quantity: 0, Price: 100},
	{ProductName: "Long Bond Paper", Quantity: 0, Price: 150},
}
