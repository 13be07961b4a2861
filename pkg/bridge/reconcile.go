package bridge

import "strings"

// TextReconciler folds overlapping text fragments from the server into a
// single monotonically growing buffer. The transport emits both incremental
// deltas and periodic full-text re-sends for the same logical turn; without
// reconciliation the same text would be delivered twice.
type TextReconciler struct {
	accumulated string
}

// Apply decides what part of candidate is net-new and returns it. The empty
// return with ok=false means the candidate added nothing (duplicate or echo
// of an earlier partial). Rules are evaluated in order:
//
//  1. first fragment: take it whole
//  2. candidate extends the accumulation: emit only the suffix
//  3. candidate is a tail of what was already emitted: ignore
//  4. anything else is independent new content: take it whole
//
// Re-applying the same candidate is a no-op (rule 2 with an empty suffix, or
// rule 3).
func (r *TextReconciler) Apply(candidate string) (string, bool) {
	if candidate == "" {
		return "", false
	}

	switch {
	case r.accumulated == "":
		r.accumulated = candidate
		return candidate, true

	case strings.HasPrefix(candidate, r.accumulated):
		delta := candidate[len(r.accumulated):]
		r.accumulated = candidate
		if delta == "" {
			return "", false
		}
		return delta, true

	case strings.HasSuffix(r.accumulated, candidate):
		return "", false

	default:
		r.accumulated += candidate
		return candidate, true
	}
}

// Accumulated returns the full text reconciled so far.
func (r *TextReconciler) Accumulated() string {
	return r.accumulated
}

// Reset clears the buffer at the start of a new send operation.
func (r *TextReconciler) Reset() {
	r.accumulated = ""
}
