package browser

import "time"

// Driver is the set of browser primitives the sequencer needs. The chromedp
// Session implements it; tests substitute a fake so step ordering and gating
// can be verified without launching Chrome.
type Driver interface {
	// Navigate loads a URL and waits for the page to be ready.
	Navigate(url string) error

	// WaitAny waits until any candidate in the fallback chain becomes
	// visible, bounded by timeout.
	WaitAny(field string, timeout time.Duration, candidates ...Candidate) (Candidate, error)

	// FillFirst clears and types into the first candidate that resolves.
	FillFirst(field, value string, timeout time.Duration, candidates ...Candidate) (Candidate, error)

	// SelectFirst sets the value of the first select control that resolves.
	SelectFirst(field, value string, timeout time.Duration, candidates ...Candidate) (Candidate, error)

	// ClickFirst clicks the first candidate that resolves.
	ClickFirst(field string, timeout time.Duration, candidates ...Candidate) (Candidate, error)

	// FillLastPassword types into the password input chosen by the
	// last-in-document-order policy.
	FillLastPassword(value string, timeout time.Duration) error

	// ClickButton clicks a button whose text contains label,
	// case-insensitively.
	ClickButton(label string, timeout time.Duration) error

	// BodyText returns the visible text of the page body.
	BodyText() (string, error)

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot() ([]byte, error)
}
