package models

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the canonical status values.
// Updates accept exactly this set.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type OrderSource string

const (
	SourceChat   OrderSource = "chat"
	SourceManual OrderSource = "manual"
	SourceAPI    OrderSource = "api"
	SourceTest   OrderSource = "test"
)

// UnknownProductID is the sentinel used when a chat order names a product
// the catalog cannot match.
const UnknownProductID = "unknown"

// OrderItem is one line of an order. Price carries the catalog's price text
// at creation time.
type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

// Order is created by the chat orchestrator (source=chat) or by direct API
// calls. Items and TotalAmount are derived once at creation and never
// recomputed on later edits.
type Order struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      string `gorm:"column:user_id;type:uuid;index:idx_orders_user_created" json:"user_id"`
	ProductID   string `gorm:"column:product_id;type:text" json:"product_id"`
	ProductName string `gorm:"column:product_name;type:text" json:"product_name"`
	Quantity    int    `gorm:"column:quantity;default:1" json:"quantity"`

	CustomerName    string `gorm:"column:customer_name;type:text" json:"customer_name"`
	CustomerPhone   string `gorm:"column:customer_phone;type:text" json:"customer_phone"`
	CustomerAddress string `gorm:"column:customer_address;type:text" json:"customer_address"`

	TotalAmount   string         `gorm:"column:total_amount;type:text" json:"total_amount"`
	Notes         string         `gorm:"column:notes;type:text" json:"notes"`
	Status        OrderStatus    `gorm:"column:status;type:text;index;default:pending" json:"status"`
	Source        OrderSource    `gorm:"column:source;type:text;default:manual" json:"source"`
	PaymentMethod string         `gorm:"column:payment_method;type:text;default:cash" json:"payment_method"`
	Items         datatypes.JSON `gorm:"column:items;type:jsonb" json:"items"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index:idx_orders_user_created" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
