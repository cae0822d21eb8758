package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Order status values, in lifecycle order.
const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderDelivered = "DELIVERED"
)

type Order struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	TotalAmount float64        `gorm:"not null" json:"totalAmount"`
	Status      string         `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Reference   string         `gorm:"size:100;not null;uniqueIndex" json:"reference"`
	Shipping    datatypes.JSON `json:"shipping"`
	Items       []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"-"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"productId"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unitPrice"`
	Subtotal  float64   `gorm:"not null" json:"subtotal"`
}
