package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/justinreed270/sharp-automation/internal/common"
)

// ErrDriverInit indicates the browser could not be launched. Fatal; no run
// is attempted.
var ErrDriverInit = errors.New("browser driver init failed")

const (
	startupTimeout = 30 * time.Second
	navTimeout     = 30 * time.Second
	readTimeout    = 5 * time.Second
	captureTimeout = 10 * time.Second

	// probeTimeout bounds a single candidate try inside a fallback chain
	probeTimeout = 1 * time.Second
)

// Session owns a single Chrome instance for the duration of one run. It is
// created by the run orchestrator and released via Close on every exit path.
type Session struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	logger        arbor.ILogger
	closeOnce     sync.Once
}

// NewSession launches a browser configured for deterministic automation:
// fixed window size for screenshot consistency, sandboxing disabled, headless
// per configuration. The instance is verified with a startup probe before
// being handed to the sequencer.
func NewSession(settings common.SettingsConfig, logger arbor.ILogger) (*Session, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", settings.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	probeCtx, cancelProbe := context.WithTimeout(browserCtx, startupTimeout)
	defer cancelProbe()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: startup probe: %v", ErrDriverInit, err)
	}

	logger.Info().
		Bool("headless", settings.Headless).
		Msg("Browser session started")

	return &Session{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		logger:        logger,
	}, nil
}

// Close terminates the browser process. Idempotent; the orchestrator defers
// it so the browser is released even when a step fails mid-run.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Browser cancel returned error")
		}
		s.cancelBrowser()
		s.cancelAlloc()
		s.logger.Info().Msg("Browser session closed")
	})
}

// Navigate loads a URL
func (s *Session) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, navTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// tryCandidates walks the fallback chain in rounds, giving each candidate a
// short probe, until one resolves or the wait window is exhausted. A missing
// element after the window is a terminal failure; there are no retries
// beyond this single bounded wait.
func (s *Session) tryCandidates(field string, timeout time.Duration, candidates []Candidate, visit func(ctx context.Context, c Candidate) error) (Candidate, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, c := range candidates {
			probe := time.Until(deadline)
			if probe <= 0 {
				break
			}
			if probe > probeTimeout {
				probe = probeTimeout
			}

			ctx, cancel := context.WithTimeout(s.ctx, probe)
			err := visit(ctx, c)
			cancel()

			if err == nil {
				s.logger.Debug().
					Str("field", field).
					Str("selector", c.Desc).
					Msg("Element located")
				return c, nil
			}
		}
	}
	return Candidate{}, fmt.Errorf("%w: %s (waited %s)", ErrElementNotFound, field, timeout)
}

// WaitAny waits for any candidate to become visible
func (s *Session) WaitAny(field string, timeout time.Duration, candidates ...Candidate) (Candidate, error) {
	return s.tryCandidates(field, timeout, candidates, func(ctx context.Context, c Candidate) error {
		return chromedp.Run(ctx, chromedp.WaitVisible(c.Query, c.By))
	})
}

// FillFirst clears and types into the first candidate that resolves
func (s *Session) FillFirst(field, value string, timeout time.Duration, candidates ...Candidate) (Candidate, error) {
	return s.tryCandidates(field, timeout, candidates, func(ctx context.Context, c Candidate) error {
		return chromedp.Run(ctx,
			chromedp.WaitVisible(c.Query, c.By),
			chromedp.Clear(c.Query, c.By),
			chromedp.SendKeys(c.Query, value, c.By),
		)
	})
}

// SelectFirst sets the value of the first select control that resolves
func (s *Session) SelectFirst(field, value string, timeout time.Duration, candidates ...Candidate) (Candidate, error) {
	return s.tryCandidates(field, timeout, candidates, func(ctx context.Context, c Candidate) error {
		return chromedp.Run(ctx,
			chromedp.WaitVisible(c.Query, c.By),
			chromedp.SetValue(c.Query, value, c.By),
		)
	})
}

// ClickFirst clicks the first candidate that resolves
func (s *Session) ClickFirst(field string, timeout time.Duration, candidates ...Candidate) (Candidate, error) {
	return s.tryCandidates(field, timeout, candidates, func(ctx context.Context, c Candidate) error {
		return chromedp.Run(ctx,
			chromedp.WaitVisible(c.Query, c.By),
			chromedp.Click(c.Query, c.By),
		)
	})
}

// FillLastPassword queries all password-typed inputs and types into the one
// chosen by LastPasswordNode.
func (s *Session) FillLastPassword(value string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx,
		chromedp.Nodes(`input[type="password"]`, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return fmt.Errorf("failed to query password inputs: %w", err)
	}

	node, err := LastPasswordNode(nodes)
	if err != nil {
		return err
	}

	ids := []cdp.NodeID{node.NodeID}
	if err := chromedp.Run(ctx,
		chromedp.Clear(ids, chromedp.ByNodeID),
		chromedp.SendKeys(ids, value, chromedp.ByNodeID),
	); err != nil {
		return fmt.Errorf("failed to fill password input: %w", err)
	}

	s.logger.Debug().
		Int("password_inputs", len(nodes)).
		Msg("Device password set on last password input")
	return nil
}

// ClickButton clicks a button whose text contains label, case-insensitively
func (s *Session) ClickButton(label string, timeout time.Duration) error {
	xpath := ButtonTextXPath(label)

	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(xpath, chromedp.BySearch),
		chromedp.Click(xpath, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("%w: button containing %q (waited %s)", ErrElementNotFound, label, timeout)
	}
	return nil
}

// BodyText returns the visible text of the page body
func (s *Session) BodyText() (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, readTimeout)
	defer cancel()

	var text string
	if err := chromedp.Run(ctx, chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}
	return text, nil
}

// Screenshot captures the current viewport as PNG bytes
func (s *Session) Screenshot() ([]byte, error) {
	ctx, cancel := context.WithTimeout(s.ctx, captureTimeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}
