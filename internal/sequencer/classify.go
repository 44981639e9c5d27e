package sequencer

import "strings"

// TestVerdict is the interpretation of the page body after clicking the
// test-connection control
type TestVerdict int

const (
	TestUnknown TestVerdict = iota
	TestPassed
	TestFailed
)

// ClassifyTestResult interprets the page body for a test result. The markers
// match what the Sharp emulator and device firmware render: uppercase
// pass/fail banners, plus a lowercase "error" catch-all. Pass markers are
// checked first so a body like "ALL TESTS PASSED (0 errors)" reads as a pass.
func ClassifyTestResult(body string) TestVerdict {
	if strings.Contains(body, "ALL TESTS PASSED") || strings.Contains(body, "SUCCESSFUL") {
		return TestPassed
	}
	if strings.Contains(body, "FAILED") || strings.Contains(strings.ToLower(body), "error") {
		return TestFailed
	}
	return TestUnknown
}

// ConfirmsSubmit reports whether the page body shows the submit confirmation
func ConfirmsSubmit(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range []string{"submitted", "saved", "success", "applied"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
