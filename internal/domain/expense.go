package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is a ledger entry. Rows are never updated after creation.
type Expense struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name              string          `gorm:"column:name;not null" json:"name"`
	Amount            decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null" json:"amount"`
	Date              time.Time       `gorm:"column:date;not null;index" json:"date"`
	Category          string          `gorm:"column:category;not null;index" json:"category"`
	Subcategory       *string         `gorm:"column:subcategory" json:"subcategory,omitempty"`
	AssignedFounderID *uuid.UUID      `gorm:"column:assigned_founder_id;type:uuid;index" json:"assignedTo,omitempty"`
	Notes             *string         `gorm:"column:notes" json:"notes,omitempty"`
	AttachmentURL     *string         `gorm:"column:attachment_url" json:"attachmentUrl,omitempty"`
	CreatedBy         uuid.UUID       `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
