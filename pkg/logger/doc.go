// Package logger provides a structured logging interface for liscraper.
//
// It wraps the zerolog library with:
// - Log levels (Debug, Info, Warn, Error)
// - Structured logging with fields
// - An append-only, human-readable log file
// - Optional coloured console output
//
// There is no package-level logger. Each run constructs its own instance and
// closes it when the run ends:
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//
//	log.WithField("run_id", id).Info("Collection started")
//	log.InfoWithFields("Profile collected", map[string]interface{}{
//	    "identifier": "linkedin.com/in/jane-smith",
//	    "connections": 812,
//	})
//
// NewNopLogger and NewTestLogger are provided for tests.
package logger
