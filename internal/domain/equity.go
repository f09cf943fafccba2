package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EquityRegistryKey is the primary key of the one active equity split.
const EquityRegistryKey = "global"

// EquitySplit is the singleton header row of the equity registry. The
// per-founder percentages live in EquityShare rows keyed by RegistryKey.
type EquitySplit struct {
	RegistryKey string     `gorm:"column:registry_key;primaryKey;size:32" json:"-"`
	CreatedBy   *uuid.UUID `gorm:"column:created_by;type:uuid" json:"createdBy,omitempty"`
	UpdatedBy   *uuid.UUID `gorm:"column:updated_by;type:uuid" json:"updatedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (EquitySplit) TableName() string {
	return "equity_splits"
}

type EquityShare struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	RegistryKey   string          `gorm:"column:registry_key;size:32;not null;index" json:"-"`
	FounderID     uuid.UUID       `gorm:"column:founder_id;type:uuid;not null" json:"userId"`
	EquityPercent decimal.Decimal `gorm:"column:equity_percent;type:numeric(5,2);not null" json:"equity"`
	Position      int             `gorm:"column:position;not null" json:"-"`
}

func (EquityShare) TableName() string {
	return "equity_shares"
}

func (s *EquityShare) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// FounderShare is a registry entry joined with the founder's display name.
type FounderShare struct {
	FounderID     uuid.UUID       `json:"userId"`
	Name          string          `json:"name"`
	EquityPercent decimal.Decimal `json:"equity"`
}
