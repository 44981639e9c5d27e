package runner

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/justinreed270/sharp-automation/internal/browser"
	"github.com/justinreed270/sharp-automation/internal/common"
	"github.com/justinreed270/sharp-automation/internal/evidence"
	"github.com/justinreed270/sharp-automation/internal/sequencer"
)

// Run opens the browser session, executes the step sequence for the given
// mode, and guarantees the session is closed on every exit path. The session
// handle stays owned here; the sequencer and recorder only borrow it.
func Run(config *common.Config, mode Mode, logger arbor.ILogger) error {
	runID := uuid.NewString()[:8]
	logger.Info().
		Str("run_id", runID).
		Str("mode", mode.String()).
		Str("target", config.Target.URL).
		Msg("Starting configuration run")

	session, err := browser.NewSession(config.Settings, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	seq := sequencer.New(session, config, logger)
	recorder := evidence.NewRecorder(config.Settings, session.Screenshot, logger)

	if err := Execute(seq, recorder, mode, logger); err != nil {
		return err
	}

	logger.Info().Str("run_id", runID).Msg("Configuration run completed")
	return nil
}

// Execute runs login -> populate, then applies the mode's gating rules for
// the test and submit steps. Any step failure aborts the remaining steps; a
// failed or unclear test in normal mode short-circuits before any submit
// attempt.
func Execute(seq *sequencer.Sequencer, recorder *evidence.Recorder, mode Mode, logger arbor.ILogger) error {
	if err := runStep(sequencer.StepLogin, seq.Login, recorder, logger); err != nil {
		return err
	}
	if err := runStep(sequencer.StepPopulate, seq.Populate, recorder, logger); err != nil {
		return err
	}

	switch mode {
	case ModeTestOnly:
		outcome, err := seq.TestConnection()
		recorder.Capture(sequencer.StepTest, outcome)
		if err != nil {
			return fmt.Errorf("step %s: %w", sequencer.StepTest, err)
		}
		logger.Info().Msg("Test-only mode: configuration not submitted")
		return nil

	case ModeSkipTest:
		logger.Warn().Msg("Skipping connection test")
		return runStep(sequencer.StepSubmit, seq.Submit, recorder, logger)

	default:
		outcome, err := seq.TestConnection()
		recorder.Capture(sequencer.StepTest, outcome)
		if outcome != sequencer.OutcomeSuccess {
			if err == nil {
				err = sequencer.ErrTestConnection
			}
			logger.Error().Err(err).Msg("Connection test did not pass; configuration not submitted")
			return fmt.Errorf("step %s: %w", sequencer.StepTest, err)
		}
		return runStep(sequencer.StepSubmit, seq.Submit, recorder, logger)
	}
}

func runStep(name string, fn func() error, recorder *evidence.Recorder, logger arbor.ILogger) error {
	if err := fn(); err != nil {
		recorder.Capture(name, sequencer.OutcomeFailure)
		logger.Error().Err(err).Str("step", name).Msg("Step failed")
		return fmt.Errorf("step %s: %w", name, err)
	}
	recorder.Capture(name, sequencer.OutcomeSuccess)
	logger.Info().Str("step", name).Msg("Step completed")
	return nil
}
