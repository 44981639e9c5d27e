package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTestResult(t *testing.T) {
	tests := []struct {
		name string
		body string
		want TestVerdict
	}{
		{"all tests passed banner", "SMTP Test Results\nALL TESTS PASSED", TestPassed},
		{"successful banner", "Connection SUCCESSFUL", TestPassed},
		{"pass banner wins over error word", "ALL TESTS PASSED (0 errors)", TestPassed},
		{"failed banner", "SMTP Test FAILED: connection refused", TestFailed},
		{"lowercase error", "An error occurred while connecting", TestFailed},
		{"no signal yet", "Testing connection, please wait", TestUnknown},
		{"empty body", "", TestUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTestResult(tt.body))
		})
	}
}

func TestConfirmsSubmit(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"submitted", "Configuration Submitted", true},
		{"saved", "Settings saved", true},
		{"success", "SUCCESS - restart required", true},
		{"applied", "Changes applied", true},
		{"no confirmation", "SMTP Settings", false},
		{"empty body", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfirmsSubmit(tt.body))
		})
	}
}
