package controllers

import (
	"net/http"
	"strconv"

	"document-entry-api/services"
	"document-entry-api/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the shared status taxonomy.
func respondError(c *gin.Context, err error) {
	c.JSON(utils.HTTPStatus(err), gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func employeeIDFrom(c *gin.Context) string {
	if v, ok := c.Get("employeeID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ListDocumentEntryWork returns a filtered, paginated history of submission
// versions.
func ListDocumentEntryWork(c *gin.Context) {
	filter := services.ListFilter{
		Build:                    c.Query("build"),
		AccountingResponsible:    c.Query("accounting_responsible"),
		DocumentEntryResponsible: c.Query("document_entry_responsible"),
	}
	filter.Year, _ = strconv.Atoi(c.Query("year"))
	filter.Month, _ = strconv.Atoi(c.Query("month"))
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	service := services.NewDocumentEntryWorkService(nil)

	var result *services.ListResult
	err := utils.WithReadRetry(func() error {
		var e error
		result, e = service.List(filter)
		return e
	})
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(result.Items))
	for i := range result.Items {
		w := &result.Items[i]
		items = append(items, gin.H{
			"record": w,
			"badge":  services.ClassifyEntry(w).Badge,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// GetLatestDocumentEntryWork returns the newest submission for a
// company+period plus everything the entry form needs: draft mode, bots, tax
// registration status and the assigned keyer.
func GetLatestDocumentEntryWork(c *gin.Context) {
	build := c.Param("build")
	year, errYear := strconv.Atoi(c.Param("year"))
	month, errMonth := strconv.Atoi(c.Param("month"))
	if build == "" || errYear != nil || errMonth != nil || month < 1 || month > 12 {
		respondError(c, &utils.ValidationError{Message: "กรุณาระบุ build ปี และเดือนให้ถูกต้อง"})
		return
	}

	service := services.NewDocumentEntryWorkService(nil)

	var latest *services.LatestResult
	err := utils.WithReadRetry(func() error {
		var e error
		latest, e = service.Latest(build, year, month)
		return e
	})
	if err != nil {
		respondError(c, err)
		return
	}

	data := gin.H{
		"record":                     latest.Record,
		"bots":                       latest.Bots,
		"submission_count":           latest.SubmissionCount,
		"draft_mode":                 latest.DraftMode,
		"tax_registration_status":    latest.TaxRegistrationStatus,
		"document_entry_responsible": latest.DocumentEntryResponsible,
	}
	if latest.Record != nil {
		data["badge"] = services.ClassifyEntry(latest.Record).Badge
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// GetDocumentEntryWork returns one submission version by id.
func GetDocumentEntryWork(c *gin.Context) {
	service := services.NewDocumentEntryWorkService(nil)

	id := c.Param("id")
	record, err := service.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"record": record,
			"badge":  services.ClassifyEntry(record).Badge,
		},
	})
}

// CreateDocumentEntryWork records a new submission version. History is
// append-only: the new row gets the next submission_count for the
// company+period.
func CreateDocumentEntryWork(c *gin.Context) {
	var input services.SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &utils.ValidationError{Message: err.Error()})
		return
	}

	service := services.NewDocumentEntryWorkService(nil)
	record, err := service.Create(&input)
	if err != nil {
		respondError(c, err)
		return
	}

	go services.NewEntryNotificationService(nil).NotifySubmissionCreated(record)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "บันทึกการส่งเอกสารเรียบร้อยแล้ว",
		"data":    record,
	})
}

// UpdateDocumentEntryWork edits a submission that has not entered keying yet.
func UpdateDocumentEntryWork(c *gin.Context) {
	var input services.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &utils.ValidationError{Message: err.Error()})
		return
	}

	service := services.NewDocumentEntryWorkService(nil)
	result, err := service.Update(c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.ReturnCommentChanged {
		go services.NewEntryNotificationService(nil).NotifyReturnCommentUpdated(result.Record)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "แก้ไขข้อมูลเรียบร้อยแล้ว",
		"data":    result.Record,
	})
}

// UpdateEntryStatus moves one document category through the keying status
// machine.
func UpdateEntryStatus(c *gin.Context) {
	var input struct {
		DocumentType string `json:"document_type" binding:"required"`
		Status       string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &utils.ValidationError{Message: err.Error()})
		return
	}

	service := services.NewDocumentEntryWorkService(nil)
	record, err := service.UpdateEntryStatus(c.Param("id"), input.DocumentType, input.Status, employeeIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	go services.NewEntryNotificationService(nil).NotifyStatusChanged(record, input.DocumentType, input.Status)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "อัปเดตสถานะเรียบร้อยแล้ว",
		"data": gin.H{
			"record": record,
			"badge":  services.ClassifyEntry(record).Badge,
		},
	})
}

// StartAllEntryStatuses starts keying for every category that has documents
// and has not been started. Partial success is reported per category.
func StartAllEntryStatuses(c *gin.Context) {
	bulkEntryStatus(c, func(s *services.DocumentEntryWorkService, id, employeeID string) ([]services.CategoryTransitionResult, error) {
		return s.StartAllPending(id, employeeID)
	})
}

// CompleteAllEntryStatuses completes every category currently being keyed.
func CompleteAllEntryStatuses(c *gin.Context) {
	bulkEntryStatus(c, func(s *services.DocumentEntryWorkService, id, employeeID string) ([]services.CategoryTransitionResult, error) {
		return s.CompleteAllPending(id, employeeID)
	})
}

func bulkEntryStatus(c *gin.Context, run func(*services.DocumentEntryWorkService, string, string) ([]services.CategoryTransitionResult, error)) {
	service := services.NewDocumentEntryWorkService(nil)

	id := c.Param("id")
	results, err := run(service, id, employeeIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	record, err := service.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	notifier := services.NewEntryNotificationService(nil)
	for _, r := range results {
		if r.OK {
			go notifier.NotifyStatusChanged(record, r.DocumentType, record.EntryStatus(r.DocumentType))
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.OK {
			succeeded++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ดำเนินการแล้ว " + strconv.Itoa(succeeded) + "/" + strconv.Itoa(len(results)) + " หมวด",
		"data": gin.H{
			"results": results,
			"record":  record,
			"badge":   services.ClassifyEntry(record).Badge,
		},
	})
}
