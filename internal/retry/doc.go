// Package retry executes remote calls with exponential backoff.
//
// A Runner classifies every failure through services.IsPermanent: confirmed
// absences (not found) return after a single attempt, while network faults,
// rate limits, per-attempt timeouts, and malformed payloads are retried up to
// Policy.MaxRetries times. Each retry is logged with the error and the delay
// that precedes the next attempt. The metadata adapters share one Runner so
// every lookup follows the same policy.
package retry
