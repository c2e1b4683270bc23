package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"document-entry-api/models"
	"document-entry-api/utils"

	"gorm.io/gorm"
)

func TestClassifyDBError(t *testing.T) {
	if classifyDBError(nil) != nil {
		t.Fatalf("nil error should stay nil")
	}

	var notFound *utils.NotFoundError
	if err := classifyDBError(gorm.ErrRecordNotFound); !errors.As(err, &notFound) {
		t.Fatalf("record-not-found should map to NotFoundError, got %v", err)
	}

	if err := classifyDBError(driver.ErrBadConn); !utils.IsTransient(err) {
		t.Fatalf("bad connection should be transient, got %v", err)
	}

	plain := errors.New("syntax error")
	if err := classifyDBError(plain); err != plain {
		t.Fatalf("unknown errors should pass through, got %v", err)
	}
}

func TestMaxSubmissionCount(t *testing.T) {
	maxPattern := regexp.MustCompile("SELECT MAX\\(submission_count\\) FROM .*document_entry_work.*")

	t.Run("no submissions yet", func(t *testing.T) {
		steps := []*queryStep{
			{
				pattern: maxPattern,
				args:    []driver.Value{"B001", int64(2025), int64(7)},
				columns: []string{"MAX(submission_count)"},
				rows:    [][]driver.Value{{nil}},
			},
		}
		gormDB, state, cleanup := newScriptedGormDB(t, steps)
		defer cleanup()

		service := NewDocumentEntryWorkService(gormDB)
		got, err := service.MaxSubmissionCount("B001", 2025, 7)
		if err != nil {
			t.Fatalf("MaxSubmissionCount returned error: %v", err)
		}
		if got != 0 {
			t.Fatalf("expected 0 for empty period, got %d", got)
		}
		if err := state.verifyComplete(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("existing submissions", func(t *testing.T) {
		steps := []*queryStep{
			{
				pattern: maxPattern,
				args:    []driver.Value{"B001", int64(2025), int64(7)},
				columns: []string{"MAX(submission_count)"},
				rows:    [][]driver.Value{{int64(3)}},
			},
		}
		gormDB, state, cleanup := newScriptedGormDB(t, steps)
		defer cleanup()

		service := NewDocumentEntryWorkService(gormDB)
		got, err := service.MaxSubmissionCount("B001", 2025, 7)
		if err != nil {
			t.Fatalf("MaxSubmissionCount returned error: %v", err)
		}
		if got != 3 {
			t.Fatalf("expected 3, got %d", got)
		}
		if err := state.verifyComplete(); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLatestSideLookupErrors(t *testing.T) {
	latestPattern := regexp.MustCompile("SELECT dew\\..*FROM .*document_entry_work dew.*")
	maxPattern := regexp.MustCompile("SELECT MAX\\(submission_count\\) FROM .*document_entry_work.*")

	t.Run("missing rows leave fields empty", func(t *testing.T) {
		steps := []*queryStep{
			{pattern: latestPattern, columns: []string{"id"}, rows: [][]driver.Value{}},
			{pattern: maxPattern, columns: []string{"MAX(submission_count)"}, rows: [][]driver.Value{{nil}}},
			{pattern: regexp.MustCompile("SELECT \\* FROM .clients."), columns: []string{"id"}, rows: [][]driver.Value{}},
			{pattern: regexp.MustCompile("SELECT \\* FROM .monthly_tax_data."), columns: []string{"id"}, rows: [][]driver.Value{}},
		}
		gormDB, state, cleanup := newScriptedGormDB(t, steps)
		defer cleanup()

		service := NewDocumentEntryWorkService(gormDB)
		result, err := service.Latest("B001", 2025, 7)
		if err != nil {
			t.Fatalf("Latest returned error: %v", err)
		}
		if result.TaxRegistrationStatus != nil || result.DocumentEntryResponsible != nil {
			t.Fatalf("expected nil side fields, got %+v", result)
		}
		if err := state.verifyComplete(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("lookup failure surfaces", func(t *testing.T) {
		lookupErr := errors.New("connection lost")
		steps := []*queryStep{
			{pattern: latestPattern, columns: []string{"id"}, rows: [][]driver.Value{}},
			{pattern: maxPattern, columns: []string{"MAX(submission_count)"}, rows: [][]driver.Value{{nil}}},
			{pattern: regexp.MustCompile("SELECT \\* FROM .clients."), err: lookupErr},
		}
		gormDB, state, cleanup := newScriptedGormDB(t, steps)
		defer cleanup()

		service := NewDocumentEntryWorkService(gormDB)
		if _, err := service.Latest("B001", 2025, 7); err == nil {
			t.Fatal("expected lookup failure to surface, got nil error")
		}
		if err := state.verifyComplete(); err != nil {
			t.Fatal(err)
		}
	})
}

func TestCreateAssignsNextSubmissionCount(t *testing.T) {
	now := time.Now()
	steps := []*queryStep{
		{
			// MAX inside the transaction
			pattern: regexp.MustCompile("SELECT MAX\\(submission_count\\) FROM .*document_entry_work.*"),
			columns: []string{"MAX(submission_count)"},
			rows:    [][]driver.Value{{int64(2)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO .document_entry_work."),
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO .document_entry_work_bots."),
		},
		{
			// reload in GetByID
			pattern: regexp.MustCompile("SELECT dew\\..*FROM .*document_entry_work dew.*"),
			columns: []string{"id", "build", "work_year", "work_month", "submission_count", "responsible_employee_id", "wht_document_count", "vat_document_count", "non_vat_document_count", "entry_timestamp", "created_at", "updated_at", "company_name"},
			rows: [][]driver.Value{
				{"w-1", "B001", int64(2025), int64(7), int64(3), "EMP01", int64(5), int64(2), int64(0), now, now, now, "บริษัท ทดสอบ จำกัด"},
			},
		},
		{
			pattern: regexp.MustCompile("SELECT \\* FROM .document_entry_work_bots."),
			columns: []string{"id", "document_entry_work_id", "bot_type", "document_count", "created_at", "updated_at"},
			rows: [][]driver.Value{
				{"b-1", "w-1", models.BotTypeShopee, int64(4), now, now},
			},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewDocumentEntryWorkService(gormDB)
	record, err := service.Create(&SubmissionInput{
		Build:                 "B001",
		WorkYear:              2025,
		WorkMonth:             7,
		ResponsibleEmployeeID: "EMP01",
		WHTDocumentCount:      5,
		VATDocumentCount:      2,
		Bots: []BotInput{
			{BotType: models.BotTypeShopee, DocumentCount: 4},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if record.SubmissionCount != 3 {
		t.Fatalf("expected submission_count 3, got %d", record.SubmissionCount)
	}
	if len(record.Bots) != 1 || record.Bots[0].BotType != models.BotTypeShopee {
		t.Fatalf("expected one Shopee bot, got %+v", record.Bots)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	service := NewDocumentEntryWorkService(&gorm.DB{})

	cases := []struct {
		name  string
		input SubmissionInput
	}{
		{"missing build", SubmissionInput{WorkYear: 2025, WorkMonth: 7, ResponsibleEmployeeID: "EMP01"}},
		{"missing responsible", SubmissionInput{Build: "B001", WorkYear: 2025, WorkMonth: 7}},
		{"bad month", SubmissionInput{Build: "B001", WorkYear: 2025, WorkMonth: 13, ResponsibleEmployeeID: "EMP01"}},
		{"negative count", SubmissionInput{Build: "B001", WorkYear: 2025, WorkMonth: 7, ResponsibleEmployeeID: "EMP01", WHTDocumentCount: -1}},
		{"unknown bot type", SubmissionInput{Build: "B001", WorkYear: 2025, WorkMonth: 7, ResponsibleEmployeeID: "EMP01", Bots: []BotInput{{BotType: "TikTok Shop"}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(&tc.input)
			var validation *utils.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestOCRInfoClearedForNonOCRBots(t *testing.T) {
	info := "หมายเหตุจากระบบ"

	if got := ocrInfoFor(&BotInput{BotType: models.BotTypeShopee, OCRAdditionalInfo: &info}); got != nil {
		t.Fatalf("non-OCR bot must not keep ocr_additional_info, got %q", *got)
	}
	if got := ocrInfoFor(&BotInput{BotType: models.BotTypeOCR, OCRAdditionalInfo: &info}); got == nil || *got != info {
		t.Fatalf("OCR bot should keep its info, got %v", got)
	}
	empty := "   "
	if got := ocrInfoFor(&BotInput{BotType: models.BotTypeOCR, OCRAdditionalInfo: &empty}); got != nil {
		t.Fatalf("blank info should collapse to nil, got %q", *got)
	}
}

func TestUpdateRejectedOnceKeyingStarted(t *testing.T) {
	now := time.Now()
	steps := []*queryStep{
		{
			pattern: regexp.MustCompile("SELECT \\* FROM .document_entry_work."),
			columns: []string{"id", "build", "work_year", "work_month", "submission_count", "wht_document_count", "wht_entry_status", "created_at", "updated_at"},
			rows: [][]driver.Value{
				{"w-1", "B001", int64(2025), int64(7), int64(1), int64(5), models.EntryStatusInProgress, now, now},
			},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewDocumentEntryWorkService(gormDB)
	count := 9
	_, err := service.Update("w-1", &UpdateInput{WHTDocumentCount: &count})

	var editErr *utils.EditNotAllowedError
	if !errors.As(err, &editErr) {
		t.Fatalf("expected EditNotAllowedError once keying started, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	steps := []*queryStep{
		{
			pattern: regexp.MustCompile("SELECT \\* FROM .document_entry_work."),
			columns: []string{"id"},
			rows:    [][]driver.Value{},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewDocumentEntryWorkService(gormDB)
	_, err := service.Update("missing", &UpdateInput{})

	var notFound *utils.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}
