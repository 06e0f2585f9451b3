// Package model defines the data the sign-up controller works with: the raw
// FormInput collected from the user, the field catalogue renderers consume
// (FormModel/Field), the per-field ValidationResult, and the submission state
// machine (Phase, SubmissionState, Outcome) captured in a Snapshot. Nothing in
// this package performs I/O; controllers own the mutable copies and hand out
// Snapshots so renderers stay pure functions of state.
package model
