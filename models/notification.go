package models

import "time"

// Notification types emitted by the document entry workflow.
const (
	NotificationDocumentEntryPending   = "document_entry_pending"
	NotificationDocumentEntryCompleted = "document_entry_completed"
)

// Notification is one in-app notification row. Creation is always
// best-effort: a failed insert never fails the operation that triggered it.
type Notification struct {
	ID                string     `gorm:"primaryKey;column:id" json:"id"`
	UserID            string     `gorm:"column:user_id" json:"user_id"`
	Type              string     `gorm:"column:type" json:"type"`
	Category          string     `gorm:"column:category" json:"category"`
	Priority          string     `gorm:"column:priority" json:"priority"`
	Title             string     `gorm:"column:title" json:"title"`
	Message           string     `gorm:"column:message" json:"message"`
	Icon              string     `gorm:"column:icon" json:"icon"`
	Color             string     `gorm:"column:color" json:"color"`
	ActionURL         string     `gorm:"column:action_url" json:"action_url"`
	ActionLabel       string     `gorm:"column:action_label" json:"action_label"`
	RelatedUserID     *string    `gorm:"column:related_user_id" json:"related_user_id,omitempty"`
	RelatedEntityType *string    `gorm:"column:related_entity_type" json:"related_entity_type,omitempty"`
	RelatedEntityID   *string    `gorm:"column:related_entity_id" json:"related_entity_id,omitempty"`
	Metadata          *string    `gorm:"column:metadata" json:"metadata,omitempty"`
	IsRead            bool       `gorm:"column:is_read" json:"is_read"`
	ExpiresAt         *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt         *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
