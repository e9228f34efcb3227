// Package retry re-attempts failed record generations with a backoff.
//
// Retrying is opt-in. The default configuration makes a single attempt, so a
// failing identifier is skipped rather than re-attempted unless max_attempts
// is raised in the retry settings.
//
// Features:
//   - Exponential (with jitter) and constant backoff strategies
//   - Configurable retry predicates; generation errors are retryable,
//     config and io errors are not
//   - Injectable sleep for tests
//
// Basic usage:
//
//	cfg := retry.FromSettings(settings.Retry, log)
//	record, err := retry.DoWithResult(func() (models.ProfileRecord, error) {
//		return gen.Generate(identifier)
//	}, cfg)
package retry
