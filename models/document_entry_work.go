package models

import "time"

// สถานะการคีย์เอกสาร (ตรงกับค่าในคอลัมน์ *_entry_status)
const (
	EntryStatusNotStarted = "ยังไม่ดำเนินการ"
	EntryStatusInProgress = "กำลังดำเนินการ"
	EntryStatusCompleted  = "ดำเนินการเสร็จแล้ว"
)

// Document categories keyed per submission.
const (
	DocumentTypeWHT    = "wht"
	DocumentTypeVAT    = "vat"
	DocumentTypeNonVAT = "non_vat"
)

// DocumentTypes lists the categories in display order.
var DocumentTypes = []string{DocumentTypeWHT, DocumentTypeVAT, DocumentTypeNonVAT}

// Bot sources that can submit documents without a category breakdown.
const (
	BotTypeShopee     = "Shopee (Thailand)"
	BotTypeSPXExpress = "SPX Express (Thailand)"
	BotTypeLazada     = "Lazada Limited (Head Office)"
	BotTypeLazadaExp  = "Lazada Express Limited"
	BotTypeOCR        = "ระบบ OCR"
)

// KnownBotTypes is the closed set accepted on submission payloads.
var KnownBotTypes = []string{
	BotTypeShopee,
	BotTypeSPXExpress,
	BotTypeLazada,
	BotTypeLazadaExp,
	BotTypeOCR,
}

// DocumentEntryWork represents one submission version of the document keying
// work for a company (build) and tax period. Rows are append-only per
// (build, work_year, work_month): a new submit creates a new version with the
// next submission_count instead of overwriting history.
type DocumentEntryWork struct {
	ID              string    `gorm:"primaryKey;column:id" json:"id"`
	Build           string    `gorm:"column:build" json:"build"`
	WorkYear        int       `gorm:"column:work_year" json:"work_year"`
	WorkMonth       int       `gorm:"column:work_month" json:"work_month"`
	EntryTimestamp  time.Time `gorm:"column:entry_timestamp" json:"entry_timestamp"`
	SubmissionCount int       `gorm:"column:submission_count" json:"submission_count"`

	ResponsibleEmployeeID        string  `gorm:"column:responsible_employee_id" json:"responsible_employee_id"`
	CurrentResponsibleEmployeeID *string `gorm:"column:current_responsible_employee_id" json:"current_responsible_employee_id,omitempty"`

	WHTDocumentCount      int        `gorm:"column:wht_document_count" json:"wht_document_count"`
	WHTEntryStatus        *string    `gorm:"column:wht_entry_status" json:"wht_entry_status"`
	WHTEntryStart         *time.Time `gorm:"column:wht_entry_start_datetime" json:"wht_entry_start_datetime"`
	WHTEntryCompleted     *time.Time `gorm:"column:wht_entry_completed_datetime" json:"wht_entry_completed_datetime"`
	WHTStatusUpdatedBy    *string    `gorm:"column:wht_status_updated_by" json:"wht_status_updated_by"`
	VATDocumentCount      int        `gorm:"column:vat_document_count" json:"vat_document_count"`
	VATEntryStatus        *string    `gorm:"column:vat_entry_status" json:"vat_entry_status"`
	VATEntryStart         *time.Time `gorm:"column:vat_entry_start_datetime" json:"vat_entry_start_datetime"`
	VATEntryCompleted     *time.Time `gorm:"column:vat_entry_completed_datetime" json:"vat_entry_completed_datetime"`
	VATStatusUpdatedBy    *string    `gorm:"column:vat_status_updated_by" json:"vat_status_updated_by"`
	NonVATDocumentCount   int        `gorm:"column:non_vat_document_count" json:"non_vat_document_count"`
	NonVATEntryStatus     *string    `gorm:"column:non_vat_entry_status" json:"non_vat_entry_status"`
	NonVATEntryStart      *time.Time `gorm:"column:non_vat_entry_start_datetime" json:"non_vat_entry_start_datetime"`
	NonVATEntryCompleted  *time.Time `gorm:"column:non_vat_entry_completed_datetime" json:"non_vat_entry_completed_datetime"`
	NonVATStatusUpdatedBy *string    `gorm:"column:non_vat_status_updated_by" json:"non_vat_status_updated_by"`

	SubmissionComment *string `gorm:"column:submission_comment" json:"submission_comment"`
	ReturnComment     *string `gorm:"column:return_comment" json:"return_comment"`

	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Populated from joins; not columns of document_entry_work.
	CompanyName string `gorm:"->;column:company_name" json:"company_name,omitempty"`
	BotCount    int    `gorm:"->;column:bot_count" json:"bot_count,omitempty"`

	Bots []DocumentEntryWorkBot `gorm:"-" json:"bots,omitempty"`
}

// DocumentEntryWorkBot is one automated submission source attached to a
// submission version. ocr_additional_info is meaningful only for ระบบ OCR.
type DocumentEntryWorkBot struct {
	ID                  string     `gorm:"primaryKey;column:id" json:"id"`
	DocumentEntryWorkID string     `gorm:"column:document_entry_work_id" json:"document_entry_work_id"`
	BotType             string     `gorm:"column:bot_type" json:"bot_type"`
	DocumentCount       int        `gorm:"column:document_count" json:"document_count"`
	OCRAdditionalInfo   *string    `gorm:"column:ocr_additional_info" json:"ocr_additional_info"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt           *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (DocumentEntryWork) TableName() string {
	return "document_entry_work"
}

func (DocumentEntryWorkBot) TableName() string {
	return "document_entry_work_bots"
}

// DocumentCount returns the document count for one category.
func (w *DocumentEntryWork) DocumentCount(documentType string) int {
	switch documentType {
	case DocumentTypeWHT:
		return w.WHTDocumentCount
	case DocumentTypeVAT:
		return w.VATDocumentCount
	case DocumentTypeNonVAT:
		return w.NonVATDocumentCount
	}
	return 0
}

// EntryStatus returns the keying status for one category. A missing status is
// reported as ยังไม่ดำเนินการ, matching how the history view treats NULL.
func (w *DocumentEntryWork) EntryStatus(documentType string) string {
	var status *string
	switch documentType {
	case DocumentTypeWHT:
		status = w.WHTEntryStatus
	case DocumentTypeVAT:
		status = w.VATEntryStatus
	case DocumentTypeNonVAT:
		status = w.NonVATEntryStatus
	}
	if status == nil || *status == "" {
		return EntryStatusNotStarted
	}
	return *status
}

// HasData reports whether the category carries any manually keyed documents.
func (w *DocumentEntryWork) HasData(documentType string) bool {
	return w.DocumentCount(documentType) > 0
}

// ResponsibleEmployee returns the employee currently answering for the keying
// work: the override wins over the original assignee when present.
func (w *DocumentEntryWork) ResponsibleEmployee() string {
	if w.CurrentResponsibleEmployeeID != nil && *w.CurrentResponsibleEmployeeID != "" {
		return *w.CurrentResponsibleEmployeeID
	}
	return w.ResponsibleEmployeeID
}

// IsValidEntryStatus reports whether s is one of the three keying statuses.
func IsValidEntryStatus(s string) bool {
	return s == EntryStatusNotStarted || s == EntryStatusInProgress || s == EntryStatusCompleted
}

// IsValidDocumentType reports whether s names a document category.
func IsValidDocumentType(s string) bool {
	return s == DocumentTypeWHT || s == DocumentTypeVAT || s == DocumentTypeNonVAT
}

// IsKnownBotType reports whether s is one of the supported bot sources.
func IsKnownBotType(s string) bool {
	for _, t := range KnownBotTypes {
		if s == t {
			return true
		}
	}
	return false
}
