package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus labels. No transition rules are attached to them.
const (
	OrderStatusDraft      = "DRAFT"
	OrderStatusPlaced     = "PLACED"
	OrderStatusDispatched = "DISPATCHED"
	OrderStatusInTransit  = "IN_TRANSIT"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCanceled   = "CANCELED"
)

// OrderStatuses in display order
var OrderStatuses = []string{
	OrderStatusDraft,
	OrderStatusPlaced,
	OrderStatusDispatched,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

func IsOrderStatus(s string) bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Order is a shipment bought from a supplier and moved by a forwarder
type Order struct {
	ID                    uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RefNumber             string      `gorm:"type:varchar(100);uniqueIndex;not null" json:"refNumber"`
	SupplierID            uuid.UUID   `gorm:"type:uuid;not null;index" json:"supplierId"`
	Supplier              *Supplier   `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
	ForwarderID           uuid.UUID   `gorm:"type:uuid;not null;index" json:"forwarderId"`
	Forwarder             *Forwarder  `gorm:"foreignKey:ForwarderID;constraint:OnDelete:RESTRICT" json:"forwarder,omitempty"`
	Status                string      `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	OrderDate             time.Time   `gorm:"not null" json:"orderDate"`
	EstimatedDeliveryDate *time.Time  `json:"estimatedDeliveryDate"`
	Notes                 string      `gorm:"type:text" json:"notes"`
	Items                 []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt             time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	newID(&o.ID)
	return nil
}

// Total sums the line totals
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total)
	}
	return total
}

// OrderItem is a line within an Order; Total = Quantity * UnitPrice
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"orderId"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unitPrice"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	newID(&i.ID)
	return nil
}
