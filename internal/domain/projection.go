package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Recurrence string

const (
	RecurrenceDaily     Recurrence = "daily"
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceMonthly   Recurrence = "monthly"
	RecurrenceQuarterly Recurrence = "quarterly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceQuarterly:
		return true
	}
	return false
}

// MonthlyExpense is one projected expense normalised to a monthly figure.
type MonthlyExpense struct {
	ExpenseName    string          `json:"expenseName"`
	Category       string          `json:"category"`
	Subcategory    string          `json:"subCategory"`
	Amount         decimal.Decimal `json:"amount"`
	Recurrence     Recurrence      `json:"recurrence"`
	Notes          string          `json:"notes,omitempty"`
	MonthlyExpense decimal.Decimal `json:"monthlyExpense"`
	Total          decimal.Decimal `json:"total"`
}

type FounderContribution struct {
	FounderID            uuid.UUID       `json:"founderId"`
	Name                 string          `json:"name"`
	ContributionPerMonth decimal.Decimal `json:"contributionPerMonth"`
	TotalContribution    decimal.Decimal `json:"totalContribution"`
}

type Projection struct {
	ID                    uuid.UUID                                 `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name                  string                                    `gorm:"column:name;not null" json:"name"`
	DurationMonths        int                                       `gorm:"column:duration_months;not null" json:"durationMonths"`
	TotalProjectedExpense decimal.Decimal                           `gorm:"column:total_projected_expense;type:numeric(18,2);not null;default:0" json:"totalProjectedExpense"`
	MonthlyExpenses       datatypes.JSONType[[]MonthlyExpense]      `gorm:"column:monthly_expenses" json:"monthlyExpenses"`
	FounderContributions  datatypes.JSONType[[]FounderContribution] `gorm:"column:founder_contributions" json:"founderContributions"`
	Expenses              []ProjectedExpense                        `gorm:"-" json:"expenses"`
	CreatedBy             uuid.UUID                                 `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	CreatedAt             time.Time                                 `json:"createdAt"`
	UpdatedAt             time.Time                                 `json:"updatedAt"`
}

func (Projection) TableName() string {
	return "projections"
}

func (p *Projection) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ProjectedExpense struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectionID uuid.UUID       `gorm:"column:projection_id;type:uuid;not null;index" json:"projectionId"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	Category     string          `gorm:"column:category;not null" json:"category"`
	Subcategory  string          `gorm:"column:subcategory" json:"subcategory"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null" json:"amount"`
	Recurrence   Recurrence      `gorm:"column:recurrence;size:16;not null" json:"recurrence"`
	Notes        *string         `gorm:"column:notes" json:"notes,omitempty"`
}

func (ProjectedExpense) TableName() string {
	return "projected_expenses"
}

func (e *ProjectedExpense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
