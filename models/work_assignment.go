package models

import "time"

// WorkAssignment holds the month-by-month staffing plan. When present it is
// the priority source of the accounting responsible for notifications, with
// monthly_tax_data as fallback.
type WorkAssignment struct {
	ID                    string     `gorm:"primaryKey;column:id" json:"id"`
	Build                 string     `gorm:"column:build" json:"build"`
	AssignmentYear        int        `gorm:"column:assignment_year" json:"assignment_year"`
	AssignmentMonth       int        `gorm:"column:assignment_month" json:"assignment_month"`
	AccountingResponsible *string    `gorm:"column:accounting_responsible" json:"accounting_responsible,omitempty"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt             *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (WorkAssignment) TableName() string {
	return "work_assignments"
}
