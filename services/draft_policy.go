package services

import (
	"sync"

	"document-entry-api/models"
)

// DraftMode tells the entry form whether to pre-fill the latest record or
// start from a blank draft.
type DraftMode string

const (
	DraftModePrefill DraftMode = "prefill"
	DraftModeBlank   DraftMode = "blank"
)

// LoadDraft decides the draft surface for a company+period.
//
// A record is pre-filled only while nothing has been finalized for the period
// (latestSubmissionCount == 0): the clerk is continuing an unfinished first
// entry. Once any submission_count >= 1 exists, a new submit is a new
// version, so the draft starts blank and prior counts are not carried over.
func LoadDraft(latest *models.DocumentEntryWork, latestSubmissionCount int) DraftMode {
	if latest != nil && latestSubmissionCount == 0 {
		return DraftModePrefill
	}
	return DraftModeBlank
}

// CanEditSubmission reports whether a persisted submission may still be
// mutated: all three category statuses must be null or ยังไม่ดำเนินการ. Once
// any category has progressed the version is immutable history.
func CanEditSubmission(w *models.DocumentEntryWork) bool {
	for _, documentType := range models.DocumentTypes {
		if w.EntryStatus(documentType) != models.EntryStatusNotStarted {
			return false
		}
	}
	return true
}

// MatchesSelection guards against a stale fetch overwriting the active
// draft: a response whose build differs from the requested company is
// discarded rather than surfaced.
func MatchesSelection(requestedBuild string, record *models.DocumentEntryWork) bool {
	if record == nil {
		return true
	}
	return record.Build == requestedBuild
}

// SelectionTracker is a monotonic generation counter for company selection.
// Each new selection invalidates every in-flight response tagged with an
// earlier generation.
type SelectionTracker struct {
	mu         sync.Mutex
	generation uint64
}

// Select records a new selection and returns its generation token.
func (t *SelectionTracker) Select() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	return t.generation
}

// Current returns the latest generation token.
func (t *SelectionTracker) Current() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// IsStale reports whether a response carrying token belongs to a superseded
// selection and must be discarded.
func (t *SelectionTracker) IsStale(token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token != t.generation
}
