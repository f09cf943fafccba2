package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is an expense category/subcategory pair.
type Category struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CategoryName    string    `gorm:"column:category_name;not null;uniqueIndex:idx_category_pair" json:"category_name"`
	SubcategoryName string    `gorm:"column:subcategory_name;not null;uniqueIndex:idx_category_pair" json:"subcategory_name"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TaskCategory groups tasks; subcategories are a free-form string list.
type TaskCategory struct {
	ID            uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CategoryName  string                      `gorm:"column:category_name;not null;uniqueIndex" json:"categoryName"`
	Subcategories datatypes.JSONType[[]string] `gorm:"column:subcategories" json:"subcategories"`
}

func (TaskCategory) TableName() string {
	return "task_categories"
}

func (c *TaskCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
