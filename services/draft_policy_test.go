package services

import (
	"sync"
	"testing"

	"document-entry-api/models"
)

func TestLoadDraft(t *testing.T) {
	record := &models.DocumentEntryWork{Build: "B001"}

	if got := LoadDraft(record, 0); got != DraftModePrefill {
		t.Fatalf("unfinished first entry should prefill, got %s", got)
	}
	if got := LoadDraft(record, 1); got != DraftModeBlank {
		t.Fatalf("finalized period should start blank, got %s", got)
	}
	if got := LoadDraft(record, 4); got != DraftModeBlank {
		t.Fatalf("later versions should start blank, got %s", got)
	}
	if got := LoadDraft(nil, 0); got != DraftModeBlank {
		t.Fatalf("no record at all should start blank, got %s", got)
	}
}

func TestCanEditSubmission(t *testing.T) {
	if !CanEditSubmission(&models.DocumentEntryWork{}) {
		t.Fatal("untouched submission should be editable")
	}
	if !CanEditSubmission(&models.DocumentEntryWork{
		WHTEntryStatus: strp(models.EntryStatusNotStarted),
		VATEntryStatus: strp(""),
	}) {
		t.Fatal("explicit not-started statuses should stay editable")
	}
	if CanEditSubmission(&models.DocumentEntryWork{
		VATEntryStatus: strp(models.EntryStatusInProgress),
	}) {
		t.Fatal("in-progress category must lock the submission")
	}
	if CanEditSubmission(&models.DocumentEntryWork{
		NonVATEntryStatus: strp(models.EntryStatusCompleted),
	}) {
		t.Fatal("completed category must lock the submission")
	}
}

func TestMatchesSelection(t *testing.T) {
	if !MatchesSelection("B001", nil) {
		t.Fatal("missing record matches any selection")
	}
	if !MatchesSelection("B001", &models.DocumentEntryWork{Build: "B001"}) {
		t.Fatal("same build should match")
	}
	if MatchesSelection("B001", &models.DocumentEntryWork{Build: "B002"}) {
		t.Fatal("response for another company must be discarded")
	}
}

func TestSelectionTracker(t *testing.T) {
	var tracker SelectionTracker

	first := tracker.Select()
	if tracker.IsStale(first) {
		t.Fatal("fresh token must not be stale")
	}

	second := tracker.Select()
	if !tracker.IsStale(first) {
		t.Fatal("superseded token must be stale")
	}
	if tracker.IsStale(second) {
		t.Fatal("current token must not be stale")
	}
	if tracker.Current() != second {
		t.Fatalf("current generation should be %d, got %d", second, tracker.Current())
	}
}

func TestSelectionTrackerConcurrentSelects(t *testing.T) {
	var tracker SelectionTracker
	var wg sync.WaitGroup

	const selects = 100
	for i := 0; i < selects; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Select()
		}()
	}
	wg.Wait()

	if tracker.Current() != selects {
		t.Fatalf("expected generation %d, got %d", selects, tracker.Current())
	}
}
