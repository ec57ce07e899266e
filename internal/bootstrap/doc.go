// Package bootstrap implements the template-initialization pipeline behind
// `sprout init`.
//
// The pipeline is an ordered list of named steps. Every step carries an
// applied-check alongside its mutation, so the whole pipeline is idempotent:
// re-running after success (or after a partial failure) skips the steps
// whose effect is already present and resumes at the first pending one.
// Execution stops at the first failure, and the failing step is named in
// the returned error — there is no rollback.
//
// Completion is recorded as a marker file under .git/ instead of the
// self-deletion a shell-script bootstrapper would use, which keeps repeated
// invocations safe.
package bootstrap
