// Package validator checks step envelopes structurally (against JSON schema)
// and semantically (cross-field consistency the shape alone cannot express).
// Non-asserting validators return violations as data so callers can batch
// report every problem; the asserting variants exist for call sites that want
// fail-fast behaviour.
package validator
