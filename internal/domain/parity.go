package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusEven            = "Even"
	StatusNeedsCollection = "Needs Collection"
	StatusOwesMoney       = "Owes Money"
)

// ParityStatus labels a founder's disparity for display.
func ParityStatus(disparity decimal.Decimal) string {
	switch disparity.Sign() {
	case 0:
		return StatusEven
	case 1:
		return StatusNeedsCollection
	default:
		return StatusOwesMoney
	}
}

type FounderParity struct {
	FounderID            uuid.UUID       `json:"founderId"`
	Name                 string          `json:"name"`
	ExpectedContribution decimal.Decimal `json:"expectedContribution"`
	ActualContribution   decimal.Decimal `json:"actualContribution"`
	Disparity            decimal.Decimal `json:"disparity"`
	Status               string          `json:"status,omitempty"`
}

// MonthlyParity is the persisted parity snapshot for one calendar month.
// PerFounder is stored as JSON in Founders; Status is filled on read and
// never persisted.
type MonthlyParity struct {
	ID                     uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Year                   int             `gorm:"column:year;not null;uniqueIndex:idx_monthly_parity_period,priority:1" json:"year"`
	Month                  int             `gorm:"column:month;not null;uniqueIndex:idx_monthly_parity_period,priority:2" json:"month"`
	TotalSpent             decimal.Decimal `gorm:"column:total_spent;type:numeric(18,2);not null" json:"totalSpent"`
	UnassignedSpent        decimal.Decimal `gorm:"column:unassigned_spent;type:numeric(18,2);not null" json:"unassignedSpent"`
	Founders               datatypes.JSON  `gorm:"column:founders;not null" json:"-"`
	PerFounder             []FounderParity `gorm:"-" json:"founders"`
	Settled                bool            `gorm:"column:settled;not null;default:false" json:"settled"`
	SettledAt              *time.Time      `gorm:"column:settled_at" json:"settledAt,omitempty"`
	AmendedAfterSettlement bool            `gorm:"column:amended_after_settlement;not null;default:false" json:"amendedAfterSettlement"`
	AmendedAt              *time.Time      `gorm:"column:amended_at" json:"amendedAt,omitempty"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

func (MonthlyParity) TableName() string {
	return "monthly_parities"
}

func (p *MonthlyParity) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *MonthlyParity) AfterFind(tx *gorm.DB) error {
	p.PerFounder = nil
	if len(p.Founders) > 0 {
		if err := json.Unmarshal(p.Founders, &p.PerFounder); err != nil {
			return err
		}
	}
	for i := range p.PerFounder {
		p.PerFounder[i].Status = ParityStatus(p.PerFounder[i].Disparity)
	}
	return nil
}

// SetPerFounder replaces the per-founder breakdown and its JSON column.
func (p *MonthlyParity) SetPerFounder(rows []FounderParity) error {
	stored := make([]FounderParity, len(rows))
	for i, r := range rows {
		r.Status = ""
		stored[i] = r
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	p.Founders = datatypes.JSON(b)
	p.PerFounder = make([]FounderParity, len(rows))
	for i, r := range stored {
		r.Status = ParityStatus(r.Disparity)
		p.PerFounder[i] = r
	}
	return nil
}
