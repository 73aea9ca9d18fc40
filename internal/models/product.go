package models

import (
	"time"

	"github.com/lib/pq"
)

// Product is one catalog entry. Price is free text on purpose: store owners
// enter values like "1200 دولار", so arithmetic happens only where a numeric
// token can be pulled out of it.
type Product struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      string         `gorm:"column:user_id;type:uuid;index:idx_products_user_created" json:"user_id"`
	Name        string         `gorm:"column:name;type:text" json:"name"`
	Price       string         `gorm:"column:price;type:text" json:"price"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Category    string         `gorm:"column:category;type:text" json:"category"`
	Image       string         `gorm:"column:image;type:text" json:"image"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	InStock     bool           `gorm:"column:in_stock;default:true" json:"in_stock"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index:idx_products_user_created" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
