package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskToDo, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	CategoryID  uuid.UUID  `gorm:"column:category_id;type:uuid;not null;index" json:"category"`
	Subcategory string     `gorm:"column:subcategory;not null" json:"subcategory"`
	Deadline    time.Time  `gorm:"column:deadline;not null;index" json:"deadline"`
	Status      TaskStatus `gorm:"column:status;size:16;not null;default:'To Do'" json:"status"`
	AssignedTo  uuid.UUID  `gorm:"column:assigned_to;type:uuid;not null;index" json:"assignedTo"`
	CreatedBy   uuid.UUID  `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	Notes       []TaskNote `gorm:"-" json:"notes"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TaskNote struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TaskID        uuid.UUID `gorm:"column:task_id;type:uuid;not null;index" json:"-"`
	Content       string    `gorm:"column:content;not null" json:"content"`
	CreatedBy     uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	CreatedByName string    `gorm:"column:created_by_name" json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (TaskNote) TableName() string {
	return "task_notes"
}

func (n *TaskNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
