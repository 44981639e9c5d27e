package sequencer

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/justinreed270/sharp-automation/internal/browser"
	"github.com/justinreed270/sharp-automation/internal/common"
)

var (
	// ErrLogin indicates the post-login UI signal never appeared.
	ErrLogin = errors.New("login failed")
	// ErrTestConnection indicates the SMTP connection test did not pass.
	ErrTestConnection = errors.New("smtp connection test failed")
	// ErrSubmit indicates the submit confirmation was not observed.
	ErrSubmit = errors.New("submit failed")
)

// Step names, used for logging and screenshot filenames
const (
	StepLogin    = "login"
	StepPopulate = "populate_smtp"
	StepTest     = "test_connection"
	StepSubmit   = "submit"
)

// Outcome is the result of one executed step
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// StepResult records one executed step for logging and evidence capture
type StepResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// pollInterval is how often body text is re-read while waiting for a test
// or submit result signal
var pollInterval = 500 * time.Millisecond

// Sequencer executes the fixed, ordered browser-interaction steps against
// the printer web interface. It holds no browser state of its own; all
// interaction goes through the injected Driver.
type Sequencer struct {
	driver browser.Driver
	config *common.Config
	logger arbor.ILogger
}

// New creates a sequencer over the given driver
func New(driver browser.Driver, config *common.Config, logger arbor.ILogger) *Sequencer {
	return &Sequencer{
		driver: driver,
		config: config,
		logger: logger,
	}
}

// Login navigates to the printer web interface, fills the login form, and
// waits for the SMTP settings form to appear as the post-login signal.
func (s *Sequencer) Login() error {
	timeout := s.config.Settings.WaitDuration()

	s.logger.Info().
		Str("url", s.config.Target.URL).
		Msg("Navigating to printer web interface")

	if err := s.driver.Navigate(s.config.Target.URL); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}

	if _, err := s.driver.FillFirst("login username", s.config.Target.Username, timeout,
		browser.ByQuery("username input by name", `input[name*="user"]`),
		browser.ByQuery("first text input", `input[type="text"]`),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}

	if _, err := s.driver.FillFirst("login password", s.config.Target.Password, timeout,
		browser.ByQuery("password input", `input[type="password"]`),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}

	if _, err := s.driver.ClickFirst("login button", timeout,
		browser.ByQuery("submit button", `button[type="submit"]`),
		browser.ByQuery("first button", `button`),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}

	// The settings form appearing is the signal that login completed
	signal, err := s.driver.WaitAny("post-login settings form", timeout,
		browser.ByQuery("reply address input", `input[type="email"]`),
		browser.ByQuery("ssl mode select", `select`),
	)
	if err != nil {
		return fmt.Errorf("%w: settings form not visible after login: %v", ErrLogin, err)
	}

	s.logger.Info().
		Str("signal", signal.Desc).
		Msg("Logged in, settings form visible")
	return nil
}

// Populate fills the SMTP settings form. Every field resolves through its
// fallback chain; the device password goes through the last-password policy.
func (s *Sequencer) Populate() error {
	timeout := s.config.Settings.WaitDuration()
	smtp := s.config.SMTP
	creds := s.config.Credentials

	fields := []struct {
		name       string
		value      string
		selectCtrl bool
		candidates []browser.Candidate
	}{
		{
			name:  "smtp gateway",
			value: smtp.Gateway,
			candidates: []browser.Candidate{
				browser.ByQuery("known gateway placeholders", `input[placeholder="smtp.gmail.com"], input[placeholder="smtp.example.com"]`),
				browser.ByQuery("smtp placeholder match", `input[placeholder*="smtp"]`),
				browser.ByQuery("gateway input by name", `input[name*="gateway"]`),
				browser.ByQuery("first text input", `input[type="text"]`),
			},
		},
		{
			name:  "smtp port",
			value: strconv.Itoa(smtp.Port),
			candidates: []browser.Candidate{
				browser.ByQuery("port input by name", `input[name*="port"]`),
				browser.ByQuery("number input", `input[type="number"]`),
				browser.ByQuery("input holding a default smtp port", `input[value="25"], input[value="587"], input[value="465"]`),
			},
		},
		{
			name:  "reply address",
			value: smtp.ReplyAddress,
			candidates: []browser.Candidate{
				browser.ByQuery("email input", `input[type="email"]`),
				browser.ByQuery("reply input by name", `input[name*="reply"]`),
			},
		},
		{
			name:       "ssl mode",
			value:      smtp.UseSSL,
			selectCtrl: true,
			candidates: []browser.Candidate{
				browser.ByQuery("ssl select by name", `select[name*="ssl"]`),
				browser.ByQuery("first select", `select`),
			},
		},
		{
			name:       "auth method",
			value:      smtp.AuthMethod,
			selectCtrl: true,
			candidates: []browser.Candidate{
				browser.ByQuery("auth select by name", `select[name*="auth"]`),
				browser.ByQuery("second select", `select:nth-of-type(2)`),
			},
		},
		{
			name:  "device userid",
			value: creds.UserID,
			candidates: []browser.Candidate{
				browser.ByQuery("address-like placeholder", `input[placeholder*="@"]`),
				browser.ByQuery("userid input by name", `input[name*="user"]`),
			},
		},
	}

	for _, f := range fields {
		var used browser.Candidate
		var err error
		if f.selectCtrl {
			used, err = s.driver.SelectFirst(f.name, f.value, timeout, f.candidates...)
		} else {
			used, err = s.driver.FillFirst(f.name, f.value, timeout, f.candidates...)
		}
		if err != nil {
			return err
		}
		s.logger.Info().
			Str("field", f.name).
			Str("selector", used.Desc).
			Msg("Form field set")
	}

	if err := s.driver.FillLastPassword(creds.Password, timeout); err != nil {
		return err
	}
	s.logger.Info().Str("field", "device password").Msg("Form field set")

	return nil
}

// TestConnection clicks the device's test affordance and waits for a pass or
// fail signal in the page body. An unclear result after the wait window
// counts as failure so the submission gate stays closed.
func (s *Sequencer) TestConnection() (Outcome, error) {
	timeout := s.config.Settings.WaitDuration()

	s.logger.Info().Msg("Running SMTP connection test")

	if err := s.driver.ClickButton("test", timeout); err != nil {
		return OutcomeFailure, fmt.Errorf("%w: %v", ErrTestConnection, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		body, err := s.driver.BodyText()
		if err != nil {
			return OutcomeFailure, fmt.Errorf("%w: %v", ErrTestConnection, err)
		}

		switch ClassifyTestResult(body) {
		case TestPassed:
			s.logger.Info().Msg("SMTP connection test passed")
			return OutcomeSuccess, nil
		case TestFailed:
			s.logger.Error().Msg("SMTP connection test failed")
			return OutcomeFailure, fmt.Errorf("%w: device reported failure", ErrTestConnection)
		}

		time.Sleep(pollInterval)
	}

	s.logger.Error().
		Dur("waited", timeout).
		Msg("SMTP connection test result unclear")
	return OutcomeFailure, fmt.Errorf("%w: no result signal within %s", ErrTestConnection, timeout)
}

// Submit clicks the submit control and waits for the confirmation signal
func (s *Sequencer) Submit() error {
	timeout := s.config.Settings.WaitDuration()

	s.logger.Info().Msg("Submitting configuration")

	if err := s.driver.ClickButton("submit", timeout); err != nil {
		// Real hardware labels the control "Apply" on some firmware versions
		if err := s.driver.ClickButton("apply", timeout); err != nil {
			return fmt.Errorf("%w: %v", ErrSubmit, err)
		}
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		body, err := s.driver.BodyText()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSubmit, err)
		}

		if ConfirmsSubmit(body) {
			s.logger.Info().Msg("Configuration submitted")
			return nil
		}

		time.Sleep(pollInterval)
	}

	return fmt.Errorf("%w: no confirmation signal within %s", ErrSubmit, timeout)
}
