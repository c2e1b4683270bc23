package services

import (
	"fmt"
	"sync"
	"time"

	"document-entry-api/models"
	"document-entry-api/utils"
)

// statusColumns maps a document category to its status-tracking columns.
func statusColumns(documentType string) (status, start, completed, updatedBy string) {
	switch documentType {
	case models.DocumentTypeWHT:
		return "wht_entry_status", "wht_entry_start_datetime", "wht_entry_completed_datetime", "wht_status_updated_by"
	case models.DocumentTypeVAT:
		return "vat_entry_status", "vat_entry_start_datetime", "vat_entry_completed_datetime", "vat_status_updated_by"
	case models.DocumentTypeNonVAT:
		return "non_vat_entry_status", "non_vat_entry_start_datetime", "non_vat_entry_completed_datetime", "non_vat_status_updated_by"
	}
	return "", "", "", ""
}

// validateTransition enforces the forward-only status machine for one
// category: ยังไม่ดำเนินการ -> กำลังดำเนินการ -> ดำเนินการเสร็จแล้ว. Starting
// requires documents in the category; completed is terminal.
func validateTransition(w *models.DocumentEntryWork, documentType, newStatus string) error {
	current := w.EntryStatus(documentType)

	switch newStatus {
	case models.EntryStatusInProgress:
		if !w.HasData(documentType) {
			return &utils.ValidationError{Message: "ไม่สามารถเริ่มดำเนินการได้ เนื่องจากไม่มีเอกสารในหมวดนี้"}
		}
		if current != models.EntryStatusNotStarted {
			return &utils.ValidationError{Message: fmt.Sprintf("ไม่สามารถเปลี่ยนสถานะจาก %s เป็น %s ได้", current, newStatus)}
		}
	case models.EntryStatusCompleted:
		if current != models.EntryStatusInProgress {
			return &utils.ValidationError{Message: fmt.Sprintf("ไม่สามารถเปลี่ยนสถานะจาก %s เป็น %s ได้", current, newStatus)}
		}
	case models.EntryStatusNotStarted:
		return &utils.ValidationError{Message: "ไม่สามารถย้อนสถานะกลับเป็นยังไม่ดำเนินการได้"}
	default:
		return &utils.ValidationError{Message: fmt.Sprintf("สถานะไม่ถูกต้อง: %s", newStatus)}
	}
	return nil
}

// UpdateEntryStatus moves one category of a submission through the status
// machine and stamps who made the change.
func (s *DocumentEntryWorkService) UpdateEntryStatus(id, documentType, newStatus, employeeID string) (*models.DocumentEntryWork, error) {
	if !models.IsValidDocumentType(documentType) {
		return nil, &utils.ValidationError{Message: fmt.Sprintf("ประเภทเอกสารไม่ถูกต้อง: %s", documentType)}
	}
	if !models.IsValidEntryStatus(newStatus) {
		return nil, &utils.ValidationError{Message: fmt.Sprintf("สถานะไม่ถูกต้อง: %s", newStatus)}
	}

	var record models.DocumentEntryWork
	if err := s.db.Where("id = ? AND deleted_at IS NULL", id).Take(&record).Error; err != nil {
		return nil, classifyDBError(err)
	}

	if err := validateTransition(&record, documentType, newStatus); err != nil {
		return nil, err
	}

	statusCol, startCol, completedCol, updatedByCol := statusColumns(documentType)
	now := time.Now()
	updates := map[string]interface{}{
		statusCol:    newStatus,
		updatedByCol: employeeID,
		"updated_at": now,
	}
	switch newStatus {
	case models.EntryStatusInProgress:
		updates[startCol] = now
	case models.EntryStatusCompleted:
		updates[completedCol] = now
	}

	if err := s.db.Model(&models.DocumentEntryWork{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, classifyDBError(err)
	}

	return s.GetByID(id)
}

// CategoryTransitionResult is the per-category outcome of a bulk operation.
type CategoryTransitionResult struct {
	DocumentType string `json:"document_type"`
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
}

// bulkTransition fires one status update per eligible category concurrently
// and reports per-category outcomes. Failures do not roll back sibling
// categories.
func (s *DocumentEntryWorkService) bulkTransition(id, employeeID, targetStatus string, eligible func(*models.DocumentEntryWork, string) bool) ([]CategoryTransitionResult, error) {
	var record models.DocumentEntryWork
	if err := s.db.Where("id = ? AND deleted_at IS NULL", id).Take(&record).Error; err != nil {
		return nil, classifyDBError(err)
	}

	var candidates []string
	for _, documentType := range models.DocumentTypes {
		if eligible(&record, documentType) {
			candidates = append(candidates, documentType)
		}
	}
	if len(candidates) == 0 {
		return []CategoryTransitionResult{}, nil
	}

	results := make([]CategoryTransitionResult, len(candidates))
	var wg sync.WaitGroup
	for i, documentType := range candidates {
		wg.Add(1)
		go func(i int, documentType string) {
			defer wg.Done()
			_, err := s.UpdateEntryStatus(id, documentType, targetStatus, employeeID)
			results[i] = CategoryTransitionResult{DocumentType: documentType, OK: err == nil}
			if err != nil {
				results[i].Error = err.Error()
			}
		}(i, documentType)
	}
	wg.Wait()

	return results, nil
}

// StartAllPending begins keying for every category that has documents and has
// not been started.
func (s *DocumentEntryWorkService) StartAllPending(id, employeeID string) ([]CategoryTransitionResult, error) {
	return s.bulkTransition(id, employeeID, models.EntryStatusInProgress,
		func(w *models.DocumentEntryWork, documentType string) bool {
			return w.HasData(documentType) && w.EntryStatus(documentType) == models.EntryStatusNotStarted
		})
}

// CompleteAllPending finishes every category currently being keyed.
func (s *DocumentEntryWorkService) CompleteAllPending(id, employeeID string) ([]CategoryTransitionResult, error) {
	return s.bulkTransition(id, employeeID, models.EntryStatusCompleted,
		func(w *models.DocumentEntryWork, documentType string) bool {
			return w.EntryStatus(documentType) == models.EntryStatusInProgress
		})
}
