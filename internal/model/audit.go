package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog tracks who changed what, and when. Action is the domain event type.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId"` // nil for system actions
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Action    string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID  string     `gorm:"type:varchar(50);index" json:"entityId"`
	Details   string     `gorm:"type:text" json:"details"` // JSON snapshot of the event payload
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	newID(&a.ID)
	return nil
}
