// Package stepgate provides the step execution contract and human-approval
// control plane of a multi-agent automation pipeline.
//
// Every unit of work a pipeline agent performs is wrapped in a typed
// input/output envelope (model/step), validated structurally and
// semantically (service/validator), and – when a step is flagged as
// sensitive – routed through a blocking approval gate with timeout-driven
// escalation (service/approval) before the pipeline may proceed.
//
// The package layers are pluggable service interfaces:
//
//   - validator – structural (JSON schema) and semantic envelope checks
//   - approval  – request store, escalation engine and the blocking gate
//   - notify    – transport-agnostic approver/admin notification contract
//
// End-users typically interact through the high-level Service façade:
//
//	svc := stepgate.New()
//	gate := svc.NewGate(&approval.Request{
//	    RunID: "run-1", StepID: "apply", TenantID: "acme",
//	    Approvers: []string{"alice"}, Policy: approval.PolicyAny,
//	})
//	result, _ := gate.WaitForApproval(ctx)
//
// For more details see the individual sub-packages.
package stepgate
