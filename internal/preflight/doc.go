// Package preflight provides readiness checks for the metadata services,
// filesystem paths, and optical drives disclabel depends on.
//
// The CLI "disclabel doctor" command runs RunAll, ProbeDrives, and
// CheckSystemDeps and renders the results as a table. Credentials are
// resolved without prompting so the command never blocks on input.
package preflight
