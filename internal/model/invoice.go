package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice is the billing document of one order
type Invoice struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"orderId"`
	Order         *Order            `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"order,omitempty"`
	InvoiceNumber string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"invoiceNumber"`
	InvoiceDate   time.Time         `gorm:"not null" json:"invoiceDate"`
	Documents     []InvoiceDocument `gorm:"foreignKey:InvoiceID" json:"documents,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	newID(&i.ID)
	return nil
}

// InvoiceDocument is a file attached to an invoice. Filename is generated and is the only
// name used on disk; OriginalName is client metadata.
type InvoiceDocument struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID    uuid.UUID `gorm:"type:uuid;not null;index" json:"invoiceId"`
	Filename     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"filename"`
	OriginalName string    `gorm:"type:varchar(255);not null" json:"originalName"`
	Filepath     string    `gorm:"type:text;not null" json:"filepath"`
	Mimetype     string    `gorm:"type:varchar(150);not null" json:"mimetype"`
	Size         int64     `gorm:"not null" json:"size"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

func (d *InvoiceDocument) BeforeCreate(*gorm.DB) error {
	newID(&d.ID)
	return nil
}
