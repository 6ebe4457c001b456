package vote

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidateSelected means the ballot contained no candidates.
	ErrNoCandidateSelected = errors.New("no candidate selected")

	// ErrTooManySelections means the ballot alone exceeds the per-voter quota.
	ErrTooManySelections = errors.New("too many candidates selected")

	// ErrUnknownCandidate means a selected candidate id does not exist.
	ErrUnknownCandidate = errors.New("unknown candidate selected")

	// ErrStoreUnavailable marks a transient storage failure. Reads behind it
	// were already retried; the caller must resubmit writes explicitly.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// QuotaError reports that a ballot would push the voter past the vote quota.
// Remaining is how many votes the voter may still cast.
type QuotaError struct {
	Remaining int
}

func (e *QuotaError) Error() string {
	if e.Remaining <= 0 {
		return "vote quota exhausted"
	}
	return fmt.Sprintf("vote quota exceeded, %d vote(s) remaining", e.Remaining)
}
