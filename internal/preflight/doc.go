// Package preflight provides readiness checks for the paths and external
// services animatch depends on.
//
// The CLI "animatch status" command runs RunAll and renders each Result as a
// status line. Checks for optional features report Passed with a
// "disabled" detail instead of failing.
package preflight
