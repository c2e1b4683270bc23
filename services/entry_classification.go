package services

import (
	"math"

	"document-entry-api/models"
)

// Badge labels shown on a submission, in precedence order.
const (
	BadgeBotData            = "ข้อมูลบอท"
	BadgeCompleted          = "เสร็จสิ้น"
	BadgePartiallyCompleted = "เสร็จบางส่วน"
	BadgeInProgress         = "กำลังดำเนินการ"
	BadgePending            = "รอดำเนินการ"
)

// EntryClassification is the derived completion state of one submission.
type EntryClassification struct {
	HasAnyData     bool   `json:"has_any_data"`
	IsBotOnly      bool   `json:"is_bot_only"`
	IsAllCompleted bool   `json:"is_all_completed"`
	Badge          string `json:"badge"`
}

// CategoryCompleted reports whether a category no longer blocks overall
// completion: either it was actually completed, or it has no documents and
// counts as vacuously complete.
func CategoryCompleted(w *models.DocumentEntryWork, documentType string) bool {
	if !w.HasData(documentType) {
		return true
	}
	return w.EntryStatus(documentType) == models.EntryStatusCompleted
}

// ClassifyEntry derives the badge and completion flags for one submission.
//
// ประเภทที่ไม่มีเอกสาร (count = 0) จะไม่นับเข้าเงื่อนไข — a submission with
// zero documents in every category is bot data, never "completed", no matter
// how many bot documents it carries.
func ClassifyEntry(w *models.DocumentEntryWork) EntryClassification {
	hasAnyData := false
	anyCompletedWithData := false
	anyInProgress := false
	allCompleted := true

	for _, documentType := range models.DocumentTypes {
		hasData := w.HasData(documentType)
		status := w.EntryStatus(documentType)

		if hasData {
			hasAnyData = true
			if status == models.EntryStatusCompleted {
				anyCompletedWithData = true
			}
		}
		if status == models.EntryStatusInProgress {
			anyInProgress = true
		}
		if !CategoryCompleted(w, documentType) {
			allCompleted = false
		}
	}

	cls := EntryClassification{
		HasAnyData:     hasAnyData,
		IsBotOnly:      !hasAnyData,
		IsAllCompleted: hasAnyData && allCompleted,
	}

	switch {
	case cls.IsBotOnly:
		cls.Badge = BadgeBotData
	case cls.IsAllCompleted:
		cls.Badge = BadgeCompleted
	case anyCompletedWithData:
		cls.Badge = BadgePartiallyCompleted
	case anyInProgress:
		cls.Badge = BadgeInProgress
	default:
		cls.Badge = BadgePending
	}
	return cls
}

// CategoryProgress accumulates keyed-document totals for one category.
type CategoryProgress struct {
	DoneDocuments  int `json:"done_documents"`
	TotalDocuments int `json:"total_documents"`
}

// PeriodProgress is the done/total rollup across a set of submissions.
type PeriodProgress struct {
	WHT            CategoryProgress `json:"wht"`
	VAT            CategoryProgress `json:"vat"`
	NonVAT         CategoryProgress `json:"non_vat"`
	DoneDocuments  int              `json:"done_documents"`
	TotalDocuments int              `json:"total_documents"`
	Percent        int              `json:"percent"`
}

// SummarizeProgress sums per-category document counts over the given
// submissions. A category's documents count as done only once its status is
// ดำเนินการเสร็จแล้ว. An empty input yields an all-zero rollup with 0%.
func SummarizeProgress(entries []models.DocumentEntryWork) PeriodProgress {
	var progress PeriodProgress

	for i := range entries {
		w := &entries[i]
		for _, documentType := range models.DocumentTypes {
			count := w.DocumentCount(documentType)
			if count == 0 {
				continue
			}
			done := 0
			if w.EntryStatus(documentType) == models.EntryStatusCompleted {
				done = count
			}
			switch documentType {
			case models.DocumentTypeWHT:
				progress.WHT.TotalDocuments += count
				progress.WHT.DoneDocuments += done
			case models.DocumentTypeVAT:
				progress.VAT.TotalDocuments += count
				progress.VAT.DoneDocuments += done
			case models.DocumentTypeNonVAT:
				progress.NonVAT.TotalDocuments += count
				progress.NonVAT.DoneDocuments += done
			}
		}
	}

	progress.TotalDocuments = progress.WHT.TotalDocuments + progress.VAT.TotalDocuments + progress.NonVAT.TotalDocuments
	progress.DoneDocuments = progress.WHT.DoneDocuments + progress.VAT.DoneDocuments + progress.NonVAT.DoneDocuments
	progress.Percent = Percentage(progress.DoneDocuments, progress.TotalDocuments)
	return progress
}

// Percentage returns round(100*done/total), with 0 for an empty total so the
// rollup never divides by zero.
func Percentage(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// StatusCounts partitions submissions of one category by status.
type StatusCounts struct {
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	NotStarted int `json:"not_started"`
}

// PeriodStatusCounts is the per-category status partition for a period.
type PeriodStatusCounts struct {
	WHT    StatusCounts `json:"wht"`
	VAT    StatusCounts `json:"vat"`
	NonVAT StatusCounts `json:"non_vat"`
}

// CountStatuses partitions the given submissions per category. NULL or absent
// statuses land in the not-started bucket.
func CountStatuses(entries []models.DocumentEntryWork) PeriodStatusCounts {
	var counts PeriodStatusCounts
	total := len(entries)

	tally := func(bucket *StatusCounts, documentType string) {
		for i := range entries {
			switch entries[i].EntryStatus(documentType) {
			case models.EntryStatusCompleted:
				bucket.Completed++
			case models.EntryStatusInProgress:
				bucket.InProgress++
			}
		}
		bucket.NotStarted = total - bucket.Completed - bucket.InProgress
	}

	tally(&counts.WHT, models.DocumentTypeWHT)
	tally(&counts.VAT, models.DocumentTypeVAT)
	tally(&counts.NonVAT, models.DocumentTypeNonVAT)
	return counts
}
