// Package step defines the typed input/output envelope exchanged between the
// pipeline orchestrator and individual step executors, together with the
// result-code tables that drive orchestrator control flow.
package step
