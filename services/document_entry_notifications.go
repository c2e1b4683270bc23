package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"document-entry-api/config"
	"document-entry-api/models"
	"document-entry-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// documentTypeLabels maps category codes to the Thai labels shown in
// notifications.
var documentTypeLabels = map[string]string{
	models.DocumentTypeWHT:    "เอกสารหัก ณ ที่จ่าย",
	models.DocumentTypeVAT:    "เอกสารมีภาษีมูลค่าเพิ่ม",
	models.DocumentTypeNonVAT: "เอกสารไม่มีภาษีมูลค่าเพิ่ม",
}

// EntryNotificationService writes in-app notification rows for submission
// events. Every method is best-effort: errors are logged and swallowed so a
// notification failure never fails the submission it announces.
type EntryNotificationService struct {
	db   *gorm.DB
	work *DocumentEntryWorkService
}

func NewEntryNotificationService(db *gorm.DB) *EntryNotificationService {
	if db == nil {
		db = config.DB
	}
	return &EntryNotificationService{db: db, work: NewDocumentEntryWorkService(db)}
}

// userByEmployeeID resolves an employee code to a user account.
func (s *EntryNotificationService) userByEmployeeID(employeeID string) (*models.User, error) {
	var user models.User
	err := s.db.Where("employee_id = ? AND deleted_at IS NULL", employeeID).Limit(1).Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// accountingUser resolves the accountant for the period (work_assignments
// first, monthly_tax_data fallback) to a user account, nil when absent.
func (s *EntryNotificationService) accountingUser(w *models.DocumentEntryWork) *models.User {
	responsible, err := s.work.AccountingResponsible(w.Build, w.WorkYear, w.WorkMonth)
	if err != nil || responsible == nil || *responsible == "" {
		return nil
	}
	user, err := s.userByEmployeeID(*responsible)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("notification: resolve accountant %s failed: %v", *responsible, err)
		}
		return nil
	}
	return user
}

func (s *EntryNotificationService) insert(n *models.Notification) {
	now := time.Now()
	n.ID = uuid.New().String()
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := s.db.Create(n).Error; err != nil {
		log.Printf("notification insert failed (type=%s user=%s): %v", n.Type, n.UserID, err)
	}
}

func entryMetadata(w *models.DocumentEntryWork, extra map[string]interface{}) *string {
	payload := map[string]interface{}{
		"build":            w.Build,
		"work_year":        w.WorkYear,
		"work_month":       w.WorkMonth,
		"submission_count": w.SubmissionCount,
	}
	for k, v := range extra {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	metadata := string(raw)
	return &metadata
}

func entryActionURL(w *models.DocumentEntryWork) string {
	return fmt.Sprintf("/document-entry-work?build=%s&year=%d&month=%d", w.Build, w.WorkYear, w.WorkMonth)
}

func periodLabel(w *models.DocumentEntryWork) string {
	return fmt.Sprintf("%s %d", utils.ThaiMonthName(w.WorkMonth), w.WorkYear)
}

// completedAtFor returns the completion timestamp of one category.
func completedAtFor(w *models.DocumentEntryWork, documentType string) *time.Time {
	switch documentType {
	case models.DocumentTypeWHT:
		return w.WHTEntryCompleted
	case models.DocumentTypeVAT:
		return w.VATEntryCompleted
	case models.DocumentTypeNonVAT:
		return w.NonVATEntryCompleted
	}
	return nil
}

// NotifySubmissionCreated tells the assigned keyer that a new submission
// version is waiting, and tells the accountant for the period once per
// category that carries documents.
func (s *EntryNotificationService) NotifySubmissionCreated(w *models.DocumentEntryWork) {
	companyName := s.work.CompanyName(w.Build)
	entryDate := utils.FormatThaiDate(w.EntryTimestamp)

	user, err := s.userByEmployeeID(w.ResponsibleEmployee())
	switch {
	case err == nil:
		s.insert(&models.Notification{
			UserID:            user.ID,
			Type:              models.NotificationDocumentEntryPending,
			Category:          "งานคีย์เอกสาร",
			Priority:          "normal",
			Title:             "มีงานคีย์เอกสารใหม่",
			Message:           fmt.Sprintf("บริษัท %s งวด %s ส่งเอกสารรอบที่ %d เมื่อ %s รอการคีย์ข้อมูล", companyName, periodLabel(w), w.SubmissionCount, entryDate),
			Icon:              "description",
			Color:             "info",
			ActionURL:         entryActionURL(w),
			ActionLabel:       "เปิดงานคีย์เอกสาร",
			RelatedEntityType: strPtr("document_entry_work"),
			RelatedEntityID:   &w.ID,
			Metadata:          entryMetadata(w, nil),
		})
		s.sendDigestEmail(user, "มีงานคีย์เอกสารใหม่",
			fmt.Sprintf("<p>บริษัท <b>%s</b> งวด %s ส่งเอกสารรอบที่ %d เมื่อ %s รอการคีย์ข้อมูล</p>", companyName, periodLabel(w), w.SubmissionCount, entryDate))
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Printf("notification: resolve keyer %s failed: %v", w.ResponsibleEmployee(), err)
	}

	// The accountant also learns of the new version, once per category that
	// actually carries documents.
	accountant := s.accountingUser(w)
	if accountant == nil {
		return
	}
	for _, documentType := range models.DocumentTypes {
		if !w.HasData(documentType) {
			continue
		}
		s.insertAccountingCategory(w, accountant, documentType, models.EntryStatusInProgress, companyName)
	}
}

// NotifyStatusChanged tells the accountant for the period that a category
// with documents moved to a new status.
func (s *EntryNotificationService) NotifyStatusChanged(w *models.DocumentEntryWork, documentType, newStatus string) {
	if !w.HasData(documentType) {
		return
	}
	accountant := s.accountingUser(w)
	if accountant == nil {
		return
	}
	s.insertAccountingCategory(w, accountant, documentType, newStatus, s.work.CompanyName(w.Build))
}

// insertAccountingCategory writes one per-category notification row for the
// accountant.
func (s *EntryNotificationService) insertAccountingCategory(w *models.DocumentEntryWork, user *models.User, documentType, status, companyName string) {
	label := documentTypeLabels[documentType]
	notificationType := models.NotificationDocumentEntryPending
	color := "warning"
	message := fmt.Sprintf("บริษัท %s งวด %s %s เปลี่ยนสถานะเป็น %s", companyName, periodLabel(w), label, status)
	if status == models.EntryStatusCompleted {
		notificationType = models.NotificationDocumentEntryCompleted
		color = "success"
		if completed := utils.FormatThaiDatePtr(completedAtFor(w, documentType)); completed != "" {
			message = fmt.Sprintf("%s เมื่อ %s", message, completed)
		}
	}

	s.insert(&models.Notification{
		UserID:            user.ID,
		Type:              notificationType,
		Category:          "งานคีย์เอกสาร",
		Priority:          "normal",
		Title:             fmt.Sprintf("%s: %s", label, status),
		Message:           message,
		Icon:              "fact_check",
		Color:             color,
		ActionURL:         entryActionURL(w),
		ActionLabel:       "ดูรายละเอียด",
		RelatedEntityType: strPtr("document_entry_work"),
		RelatedEntityID:   &w.ID,
		Metadata: entryMetadata(w, map[string]interface{}{
			"document_type": documentType,
			"new_status":    status,
		}),
	})
}

// NotifyReturnCommentUpdated tells the accountant for the period that the
// submission came back with a comment, previewing up to 100 characters.
func (s *EntryNotificationService) NotifyReturnCommentUpdated(w *models.DocumentEntryWork) {
	if w.ReturnComment == nil || *w.ReturnComment == "" {
		return
	}
	accountant := s.accountingUser(w)
	if accountant == nil {
		return
	}

	preview := []rune(*w.ReturnComment)
	if len(preview) > 100 {
		preview = append(preview[:100], '…')
	}

	companyName := s.work.CompanyName(w.Build)
	s.insert(&models.Notification{
		UserID:            accountant.ID,
		Type:              models.NotificationDocumentEntryPending,
		Category:          "งานคีย์เอกสาร",
		Priority:          "high",
		Title:             "มีหมายเหตุส่งคืนเอกสาร",
		Message:           fmt.Sprintf("บริษัท %s งวด %s: %s", companyName, periodLabel(w), string(preview)),
		Icon:              "assignment_return",
		Color:             "warning",
		ActionURL:         entryActionURL(w),
		ActionLabel:       "ดูหมายเหตุ",
		RelatedEntityType: strPtr("document_entry_work"),
		RelatedEntityID:   &w.ID,
		Metadata: entryMetadata(w, map[string]interface{}{
			"return_comment": *w.ReturnComment,
		}),
	})
}

// sendDigestEmail mirrors the in-app notification over SMTP when a mailer is
// configured. Runs in its own goroutine; failures are logged only.
func (s *EntryNotificationService) sendDigestEmail(user *models.User, subject, html string) {
	if !config.MailConfigured() || user.Email == "" {
		return
	}
	go func(to, subject, html string) {
		if err := config.SendMail([]string{to}, subject, html); err != nil {
			log.Printf("notification email to %s failed: %v", to, err)
		}
	}(user.Email, subject, html)
}

func strPtr(s string) *string { return &s }
