package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationExpenseAdded NotificationType = "expense_added"
	NotificationTaskDue      NotificationType = "task_due"
	NotificationTaskOverdue  NotificationType = "task_overdue"
)

type Notification struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Type      NotificationType `gorm:"column:type;size:32;not null" json:"type"`
	Message   string           `gorm:"column:message;not null" json:"message"`
	Read      bool             `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
