package services

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"document-entry-api/config"
	"document-entry-api/models"
	"document-entry-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentEntryWorkService owns persistence for submissions, their bots and
// the collaborator lookups (clients, monthly_tax_data, work_assignments).
type DocumentEntryWorkService struct {
	db *gorm.DB
}

func NewDocumentEntryWorkService(db *gorm.DB) *DocumentEntryWorkService {
	if db == nil {
		db = config.DB
	}
	return &DocumentEntryWorkService{db: db}
}

// classifyDBError folds driver-level failures into the shared taxonomy so
// read paths can decide on their single retry.
func classifyDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &utils.NotFoundError{Message: "ไม่พบข้อมูลงานคีย์เอกสาร"}
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return &utils.TransientNetworkError{Err: err}
	}
	return err
}

// ListFilter narrows the submission listing.
type ListFilter struct {
	Build                    string
	Year                     int
	Month                    int
	AccountingResponsible    string
	DocumentEntryResponsible string
	Page                     int
	Limit                    int
}

// ListResult is one page of submissions plus pagination metadata.
type ListResult struct {
	Items      []models.DocumentEntryWork
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// List returns submissions ordered by entry_timestamp DESC, each row joined
// with its company name and bot count.
func (s *DocumentEntryWorkService) List(filter ListFilter) (*ListResult, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	base := s.db.Table("document_entry_work dew").
		Where("dew.deleted_at IS NULL")

	if filter.Build != "" {
		base = base.Where("dew.build = ?", filter.Build)
	}
	if filter.Year != 0 {
		base = base.Where("dew.work_year = ?", filter.Year)
	}
	if filter.Month != 0 {
		base = base.Where("dew.work_month = ?", filter.Month)
	}
	if filter.AccountingResponsible != "" {
		base = base.
			Joins("LEFT JOIN monthly_tax_data mtd ON dew.build = mtd.build AND dew.work_year = mtd.tax_year AND dew.work_month = mtd.tax_month AND mtd.deleted_at IS NULL").
			Where("mtd.accounting_responsible = ?", filter.AccountingResponsible)
	}
	if filter.DocumentEntryResponsible != "" {
		// current_responsible_employee_id overrides responsible_employee_id
		base = base.Where(
			"(dew.current_responsible_employee_id IS NOT NULL AND dew.current_responsible_employee_id = ?) OR (dew.current_responsible_employee_id IS NULL AND dew.responsible_employee_id = ?)",
			filter.DocumentEntryResponsible, filter.DocumentEntryResponsible,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("dew.id").Count(&total).Error; err != nil {
		return nil, classifyDBError(err)
	}

	var items []models.DocumentEntryWork
	err := base.Session(&gorm.Session{}).
		Select("dew.*, c.company_name AS company_name, COALESCE(bot_counts.bot_count, 0) AS bot_count").
		Joins("LEFT JOIN clients c ON dew.build = c.build AND c.deleted_at IS NULL").
		Joins("LEFT JOIN (SELECT document_entry_work_id, COUNT(*) AS bot_count FROM document_entry_work_bots WHERE deleted_at IS NULL GROUP BY document_entry_work_id) bot_counts ON dew.id = bot_counts.document_entry_work_id").
		Order("dew.entry_timestamp DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error
	if err != nil {
		return nil, classifyDBError(err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// MaxSubmissionCount returns the highest finalized submission_count for the
// company+period, 0 when nothing has been submitted yet.
func (s *DocumentEntryWorkService) MaxSubmissionCount(build string, year, month int) (int, error) {
	var maxCount *int
	err := s.db.Table("document_entry_work").
		Select("MAX(submission_count)").
		Where("build = ? AND work_year = ? AND work_month = ? AND deleted_at IS NULL", build, year, month).
		Scan(&maxCount).Error
	if err != nil {
		return 0, classifyDBError(err)
	}
	if maxCount == nil {
		return 0, nil
	}
	return *maxCount, nil
}

// LatestResult bundles everything the entry form needs when a company+period
// is opened.
type LatestResult struct {
	Record                   *models.DocumentEntryWork
	Bots                     []models.DocumentEntryWorkBot
	SubmissionCount          int
	TaxRegistrationStatus    *string
	DocumentEntryResponsible *string
	DraftMode                DraftMode
}

// Latest loads the most recent submission for (build, year, month) together
// with its bots, the company's tax registration status and the responsible
// keyer from monthly_tax_data. A fetched row whose build does not match the
// request is discarded as a stale response.
func (s *DocumentEntryWorkService) Latest(build string, year, month int) (*LatestResult, error) {
	var record models.DocumentEntryWork
	err := s.db.Table("document_entry_work dew").
		Select("dew.*, c.company_name AS company_name").
		Joins("LEFT JOIN clients c ON dew.build = c.build AND c.deleted_at IS NULL").
		Where("dew.build = ? AND dew.work_year = ? AND dew.work_month = ? AND dew.deleted_at IS NULL", build, year, month).
		Order("dew.submission_count DESC").
		Limit(1).
		Take(&record).Error

	var found *models.DocumentEntryWork
	switch {
	case err == nil:
		found = &record
	case errors.Is(err, gorm.ErrRecordNotFound):
		found = nil
	default:
		return nil, classifyDBError(err)
	}

	if !MatchesSelection(build, found) {
		found = nil
	}

	submissionCount, err := s.MaxSubmissionCount(build, year, month)
	if err != nil {
		return nil, err
	}

	result := &LatestResult{
		Record:          found,
		Bots:            []models.DocumentEntryWorkBot{},
		SubmissionCount: submissionCount,
		DraftMode:       LoadDraft(found, submissionCount),
	}

	if found != nil {
		bots, err := s.botsFor(found.ID)
		if err != nil {
			return nil, err
		}
		result.Bots = bots
		found.Bots = bots
	}

	// Missing side rows leave the fields nil; any other failure surfaces so
	// the caller never mistakes a transient fault for absent data.
	var notFound *utils.NotFoundError
	status, err := s.TaxRegistrationStatus(build)
	if err != nil {
		if !errors.As(err, &notFound) {
			return nil, err
		}
	} else {
		result.TaxRegistrationStatus = status
	}
	responsible, err := s.DocumentEntryResponsible(build, year, month)
	if err != nil {
		if !errors.As(err, &notFound) {
			return nil, err
		}
	} else {
		result.DocumentEntryResponsible = responsible
	}

	return result, nil
}

// GetByID loads one submission and its bots.
func (s *DocumentEntryWorkService) GetByID(id string) (*models.DocumentEntryWork, error) {
	var record models.DocumentEntryWork
	err := s.db.Table("document_entry_work dew").
		Select("dew.*, c.company_name AS company_name").
		Joins("LEFT JOIN clients c ON dew.build = c.build AND c.deleted_at IS NULL").
		Where("dew.id = ? AND dew.deleted_at IS NULL", id).
		Limit(1).
		Take(&record).Error
	if err != nil {
		return nil, classifyDBError(err)
	}

	bots, err := s.botsFor(record.ID)
	if err != nil {
		return nil, err
	}
	record.Bots = bots
	return &record, nil
}

func (s *DocumentEntryWorkService) botsFor(workID string) ([]models.DocumentEntryWorkBot, error) {
	var bots []models.DocumentEntryWorkBot
	err := s.db.
		Where("document_entry_work_id = ? AND deleted_at IS NULL", workID).
		Order("created_at ASC").
		Find(&bots).Error
	if err != nil {
		return nil, classifyDBError(err)
	}
	return bots, nil
}

// BotInput is one bot entry on a submission payload.
type BotInput struct {
	ID                *string `json:"id"`
	BotType           string  `json:"bot_type" binding:"required"`
	DocumentCount     int     `json:"document_count"`
	OCRAdditionalInfo *string `json:"ocr_additional_info"`
}

// SubmissionInput is the payload for creating a submission version.
type SubmissionInput struct {
	Build                 string     `json:"build" binding:"required"`
	WorkYear              int        `json:"work_year" binding:"required"`
	WorkMonth             int        `json:"work_month" binding:"required"`
	ResponsibleEmployeeID string     `json:"responsible_employee_id"`
	WHTDocumentCount      int        `json:"wht_document_count"`
	VATDocumentCount      int        `json:"vat_document_count"`
	NonVATDocumentCount   int        `json:"non_vat_document_count"`
	SubmissionComment     *string    `json:"submission_comment"`
	ReturnComment         *string    `json:"return_comment"`
	Bots                  []BotInput `json:"bots"`
}

// Validate rejects a malformed payload before anything is persisted.
func (in *SubmissionInput) Validate() error {
	if strings.TrimSpace(in.Build) == "" {
		return &utils.ValidationError{Message: "Missing required field: build"}
	}
	if in.WorkMonth < 1 || in.WorkMonth > 12 {
		return &utils.ValidationError{Message: "work_month must be between 1 and 12"}
	}
	if strings.TrimSpace(in.ResponsibleEmployeeID) == "" {
		// The record must carry the assigned keyer, not whoever is logged in.
		return &utils.ValidationError{Message: "Missing required field: responsible_employee_id"}
	}
	if in.WHTDocumentCount < 0 || in.VATDocumentCount < 0 || in.NonVATDocumentCount < 0 {
		return &utils.ValidationError{Message: "document counts must not be negative"}
	}
	for i := range in.Bots {
		if !models.IsKnownBotType(in.Bots[i].BotType) {
			return &utils.ValidationError{Message: fmt.Sprintf("unknown bot_type: %s", in.Bots[i].BotType)}
		}
		if in.Bots[i].DocumentCount < 0 {
			return &utils.ValidationError{Message: "bot document_count must not be negative"}
		}
	}
	return nil
}

// ocrInfoFor clears ocr_additional_info on non-OCR bots instead of rejecting
// the payload.
func ocrInfoFor(bot *BotInput) *string {
	if bot.BotType != models.BotTypeOCR {
		return nil
	}
	return utils.SanitizeComment(bot.OCRAdditionalInfo)
}

// Create persists a new submission version with submission_count = MAX+1 for
// the company+period, inserting bots in the same transaction.
func (s *DocumentEntryWorkService) Create(in *SubmissionInput) (*models.DocumentEntryWork, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	record := models.DocumentEntryWork{
		ID:                    uuid.New().String(),
		Build:                 in.Build,
		WorkYear:              in.WorkYear,
		WorkMonth:             in.WorkMonth,
		EntryTimestamp:        now,
		ResponsibleEmployeeID: in.ResponsibleEmployeeID,
		WHTDocumentCount:      in.WHTDocumentCount,
		VATDocumentCount:      in.VATDocumentCount,
		NonVATDocumentCount:   in.NonVATDocumentCount,
		SubmissionComment:     utils.SanitizeComment(in.SubmissionComment),
		ReturnComment:         utils.SanitizeComment(in.ReturnComment),
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxCount *int
		if err := tx.Table("document_entry_work").
			Select("MAX(submission_count)").
			Where("build = ? AND work_year = ? AND work_month = ? AND deleted_at IS NULL", in.Build, in.WorkYear, in.WorkMonth).
			Scan(&maxCount).Error; err != nil {
			return err
		}
		record.SubmissionCount = 1
		if maxCount != nil {
			record.SubmissionCount = *maxCount + 1
		}

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		for i := range in.Bots {
			bot := models.DocumentEntryWorkBot{
				ID:                  uuid.New().String(),
				DocumentEntryWorkID: record.ID,
				BotType:             in.Bots[i].BotType,
				DocumentCount:       in.Bots[i].DocumentCount,
				OCRAdditionalInfo:   ocrInfoFor(&in.Bots[i]),
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			if err := tx.Create(&bot).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	return s.GetByID(record.ID)
}

// UpdateInput carries the editable surface of a draft. Nil fields are left
// unchanged; bots are always replaced.
type UpdateInput struct {
	WHTDocumentCount    *int       `json:"wht_document_count"`
	VATDocumentCount    *int       `json:"vat_document_count"`
	NonVATDocumentCount *int       `json:"non_vat_document_count"`
	SubmissionComment   *string    `json:"submission_comment"`
	ReturnComment       *string    `json:"return_comment"`
	Bots                []BotInput `json:"bots"`
}

// UpdateResult reports the persisted record and whether the return comment
// actually changed (drives the return-comment notification).
type UpdateResult struct {
	Record               *models.DocumentEntryWork
	ReturnCommentChanged bool
}

// Update mutates an existing submission in place. It is allowed only while
// the record is still editable: every category status null/ยังไม่ดำเนินการ.
func (s *DocumentEntryWorkService) Update(id string, in *UpdateInput) (*UpdateResult, error) {
	for _, count := range []*int{in.WHTDocumentCount, in.VATDocumentCount, in.NonVATDocumentCount} {
		if count != nil && *count < 0 {
			return nil, &utils.ValidationError{Message: "document counts must not be negative"}
		}
	}
	for i := range in.Bots {
		if !models.IsKnownBotType(in.Bots[i].BotType) {
			return nil, &utils.ValidationError{Message: fmt.Sprintf("unknown bot_type: %s", in.Bots[i].BotType)}
		}
		if in.Bots[i].DocumentCount < 0 {
			return nil, &utils.ValidationError{Message: "bot document_count must not be negative"}
		}
	}

	var existing models.DocumentEntryWork
	if err := s.db.Where("id = ? AND deleted_at IS NULL", id).Take(&existing).Error; err != nil {
		return nil, classifyDBError(err)
	}

	if !CanEditSubmission(&existing) {
		return nil, &utils.EditNotAllowedError{
			Message: `สามารถแก้ไขได้เฉพาะเมื่อสถานะทั้งหมดเป็น "ยังไม่ดำเนินการ" เท่านั้น`,
		}
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if in.WHTDocumentCount != nil {
		updates["wht_document_count"] = *in.WHTDocumentCount
	}
	if in.VATDocumentCount != nil {
		updates["vat_document_count"] = *in.VATDocumentCount
	}
	if in.NonVATDocumentCount != nil {
		updates["non_vat_document_count"] = *in.NonVATDocumentCount
	}
	if in.SubmissionComment != nil {
		updates["submission_comment"] = utils.SanitizeComment(in.SubmissionComment)
	}

	returnCommentChanged := false
	if in.ReturnComment != nil {
		newComment := utils.SanitizeComment(in.ReturnComment)
		oldComment := utils.SanitizeComment(existing.ReturnComment)
		returnCommentChanged = commentText(newComment) != commentText(oldComment)
		if returnCommentChanged {
			updates["return_comment"] = newComment
		}
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DocumentEntryWork{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		// Replace bots: soft-delete the current set, then reinsert.
		if err := tx.Model(&models.DocumentEntryWorkBot{}).
			Where("document_entry_work_id = ? AND deleted_at IS NULL", id).
			Update("deleted_at", now).Error; err != nil {
			return err
		}

		for i := range in.Bots {
			bot := models.DocumentEntryWorkBot{
				ID:                  uuid.New().String(),
				DocumentEntryWorkID: id,
				BotType:             in.Bots[i].BotType,
				DocumentCount:       in.Bots[i].DocumentCount,
				OCRAdditionalInfo:   ocrInfoFor(&in.Bots[i]),
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			if err := tx.Create(&bot).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	record, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Record: record, ReturnCommentChanged: returnCommentChanged}, nil
}

func commentText(c *string) string {
	if c == nil {
		return ""
	}
	return *c
}

// TaxRegistrationStatus reads the company's VAT registration flag from
// clients.
func (s *DocumentEntryWorkService) TaxRegistrationStatus(build string) (*string, error) {
	var client models.Client
	err := s.db.Where("build = ? AND deleted_at IS NULL", build).Limit(1).Take(&client).Error
	if err != nil {
		return nil, classifyDBError(err)
	}
	return client.TaxRegistrationStatus, nil
}

// DocumentEntryResponsible resolves the assigned keyer for the period from
// monthly_tax_data.
func (s *DocumentEntryWorkService) DocumentEntryResponsible(build string, year, month int) (*string, error) {
	var taxData models.MonthlyTaxData
	err := s.db.Where("build = ? AND tax_year = ? AND tax_month = ? AND deleted_at IS NULL", build, year, month).
		Limit(1).Take(&taxData).Error
	if err != nil {
		return nil, classifyDBError(err)
	}
	return taxData.DocumentEntryResponsible, nil
}

// AccountingResponsible resolves the accountant for the period, preferring
// work_assignments over monthly_tax_data.
func (s *DocumentEntryWorkService) AccountingResponsible(build string, year, month int) (*string, error) {
	var assignment models.WorkAssignment
	err := s.db.Where("build = ? AND assignment_year = ? AND assignment_month = ? AND deleted_at IS NULL", build, year, month).
		Limit(1).Take(&assignment).Error
	if err == nil && assignment.AccountingResponsible != nil && *assignment.AccountingResponsible != "" {
		return assignment.AccountingResponsible, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, classifyDBError(err)
	}

	var taxData models.MonthlyTaxData
	err = s.db.Where("build = ? AND tax_year = ? AND tax_month = ? AND deleted_at IS NULL", build, year, month).
		Limit(1).Take(&taxData).Error
	if err != nil {
		return nil, classifyDBError(err)
	}
	return taxData.AccountingResponsible, nil
}

// CompanyName resolves a build to its display name, falling back to the
// build code itself.
func (s *DocumentEntryWorkService) CompanyName(build string) string {
	var client models.Client
	err := s.db.Where("build = ? AND deleted_at IS NULL", build).Limit(1).Take(&client).Error
	if err != nil || client.CompanyName == "" {
		return build
	}
	return client.CompanyName
}
