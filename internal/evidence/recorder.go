package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/justinreed270/sharp-automation/internal/common"
	"github.com/justinreed270/sharp-automation/internal/sequencer"
)

// ShotFunc captures the current browser viewport as PNG bytes. The session's
// Screenshot method in production; injectable for tests.
type ShotFunc func() ([]byte, error)

// Recorder writes a timestamped screenshot after designated steps, keyed by
// step name and outcome. Output is write-once evidence for a human reviewer;
// nothing in the run reads it back.
type Recorder struct {
	dir       string
	onSuccess bool
	onFailure bool
	shoot     ShotFunc
	logger    arbor.ILogger
	ordinal   int
}

// NewRecorder creates a recorder writing under settings.ScreenshotDir
func NewRecorder(settings common.SettingsConfig, shoot ShotFunc, logger arbor.ILogger) *Recorder {
	return &Recorder{
		dir:       settings.ScreenshotDir,
		onSuccess: settings.ScreenshotOnSuccess,
		onFailure: settings.ScreenshotOnFailure,
		shoot:     shoot,
		logger:    logger,
	}
}

// Capture saves a screenshot for the step if the outcome's flag allows it.
// The ordinal advances for every executed step so filenames sort in step
// order and never collide within a run. A failed capture is logged and
// swallowed: losing a screenshot must not override the step's own outcome.
func (r *Recorder) Capture(step string, outcome sequencer.Outcome) {
	r.ordinal++

	if outcome == sequencer.OutcomeSuccess && !r.onSuccess {
		return
	}
	if outcome == sequencer.OutcomeFailure && !r.onFailure {
		return
	}

	buf, err := r.shoot()
	if err != nil {
		r.logger.Warn().Err(err).Str("step", step).Msg("Screenshot capture failed")
		return
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		r.logger.Warn().Err(err).Str("dir", r.dir).Msg("Failed to create screenshot directory")
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%02d_%s_%s_%s.png", r.ordinal, step, outcome, timestamp)
	path := filepath.Join(r.dir, filename)

	if err := os.WriteFile(path, buf, 0644); err != nil {
		r.logger.Warn().Err(err).Str("file", path).Msg("Failed to save screenshot")
		return
	}

	r.logger.Info().Str("file", path).Msg("Screenshot saved")
}
