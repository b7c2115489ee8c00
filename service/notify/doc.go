// Package notify defines the transport-agnostic delivery contract used to
// alert approvers and admins. The reference notifier only logs; production
// delivery (Slack, email, webhooks) is an external collaborator implementing
// the same contract.
package notify
