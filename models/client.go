package models

import "time"

// Client represents the clients table (company master data). The document
// entry core only reads it for display metadata.
type Client struct {
	ID                    int        `gorm:"primaryKey;column:id" json:"id"`
	Build                 string     `gorm:"column:build" json:"build"`
	CompanyName           string     `gorm:"column:company_name" json:"company_name"`
	TaxRegistrationStatus *string    `gorm:"column:tax_registration_status" json:"tax_registration_status,omitempty"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt             *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (Client) TableName() string {
	return "clients"
}
