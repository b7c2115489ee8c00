// Package approval implements the human-in-the-loop control plane: approval
// requests, decision records, timeout-driven escalation and the blocking
// gate a pipeline step waits on before sensitive work may proceed.
package approval
