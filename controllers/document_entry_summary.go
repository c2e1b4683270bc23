package controllers

import (
	"net/http"
	"sort"
	"strconv"

	"document-entry-api/config"
	"document-entry-api/models"
	"document-entry-api/services"
	"document-entry-api/utils"

	"github.com/gin-gonic/gin"
)

// GetDocumentEntrySummary returns a per-day or per-month rollup of the latest
// submission of every company handled by one keyer.
func GetDocumentEntrySummary(c *gin.Context) {
	year, errYear := strconv.Atoi(c.Query("year"))
	month, errMonth := strconv.Atoi(c.Query("month"))
	responsible := c.Query("document_entry_responsible")
	if errYear != nil || errMonth != nil || month < 1 || month > 12 || responsible == "" {
		respondError(c, &utils.ValidationError{Message: "กรุณาระบุ year, month และ document_entry_responsible"})
		return
	}

	groupBy := c.DefaultQuery("group_by", "day")
	if groupBy != "day" && groupBy != "month" {
		respondError(c, &utils.ValidationError{Message: "group_by ต้องเป็น day หรือ month"})
		return
	}

	var entries []models.DocumentEntryWork
	err := utils.WithReadRetry(func() error {
		// Latest submission per company for the period, restricted to the
		// keyer (override wins over the original assignee).
		return config.DB.Table("document_entry_work dew").
			Select("dew.*, c.company_name AS company_name").
			Joins("LEFT JOIN clients c ON dew.build = c.build AND c.deleted_at IS NULL").
			Joins(`JOIN (
				SELECT build, MAX(submission_count) AS max_count
				FROM document_entry_work
				WHERE work_year = ? AND work_month = ? AND deleted_at IS NULL
				GROUP BY build
			) latest ON dew.build = latest.build AND dew.submission_count = latest.max_count`, year, month).
			Where("dew.work_year = ? AND dew.work_month = ? AND dew.deleted_at IS NULL", year, month).
			Where(
				"(dew.current_responsible_employee_id IS NOT NULL AND dew.current_responsible_employee_id = ?) OR (dew.current_responsible_employee_id IS NULL AND dew.responsible_employee_id = ?)",
				responsible, responsible,
			).
			Find(&entries).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	groups := make(map[string][]models.DocumentEntryWork)
	for _, entry := range entries {
		key := entry.EntryTimestamp.Format("2006-01-02")
		if groupBy == "month" {
			key = entry.EntryTimestamp.Format("2006-01")
		}
		groups[key] = append(groups[key], entry)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]gin.H, 0, len(keys))
	for _, key := range keys {
		groupEntries := groups[key]

		companies := make([]gin.H, 0, len(groupEntries))
		for i := range groupEntries {
			w := &groupEntries[i]
			companies = append(companies, gin.H{
				"build":                  w.Build,
				"company_name":           w.CompanyName,
				"submission_count":       w.SubmissionCount,
				"wht_document_count":     w.WHTDocumentCount,
				"vat_document_count":     w.VATDocumentCount,
				"non_vat_document_count": w.NonVATDocumentCount,
				"wht_entry_status":       w.EntryStatus(models.DocumentTypeWHT),
				"vat_entry_status":       w.EntryStatus(models.DocumentTypeVAT),
				"non_vat_entry_status":   w.EntryStatus(models.DocumentTypeNonVAT),
				"badge":                  services.ClassifyEntry(w).Badge,
			})
		}

		progress := services.SummarizeProgress(groupEntries)
		rows = append(rows, gin.H{
			"group":               key,
			"companies":           companies,
			"total_documents":     progress.TotalDocuments,
			"completed_documents": progress.DoneDocuments,
			"pending_documents":   progress.TotalDocuments - progress.DoneDocuments,
			"percent":             progress.Percent,
			"status_counts":       services.CountStatuses(groupEntries),
		})
	}

	overall := services.SummarizeProgress(entries)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"year":     year,
			"month":    month,
			"group_by": groupBy,
			"groups":   rows,
			"overall": gin.H{
				"total_documents":     overall.TotalDocuments,
				"completed_documents": overall.DoneDocuments,
				"pending_documents":   overall.TotalDocuments - overall.DoneDocuments,
				"percent":             overall.Percent,
				"status_counts":       services.CountStatuses(entries),
			},
		},
	})
}
