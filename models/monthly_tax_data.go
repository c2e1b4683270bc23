package models

import "time"

// MonthlyTaxData is the per-period tax record maintained by the filing
// workflow. The document entry core reads the responsible-employee columns
// and never mutates this table.
type MonthlyTaxData struct {
	ID                       string     `gorm:"primaryKey;column:id" json:"id"`
	Build                    string     `gorm:"column:build" json:"build"`
	TaxYear                  int        `gorm:"column:tax_year" json:"tax_year"`
	TaxMonth                 int        `gorm:"column:tax_month" json:"tax_month"`
	DocumentEntryResponsible *string    `gorm:"column:document_entry_responsible" json:"document_entry_responsible,omitempty"`
	AccountingResponsible    *string    `gorm:"column:accounting_responsible" json:"accounting_responsible,omitempty"`
	CreatedAt                time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt                *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (MonthlyTaxData) TableName() string {
	return "monthly_tax_data"
}
