package approval

import (
	"context"
	"time"

	"github.com/viant/stepgate/service/notify"
)

// DecisionFunc decides what to do with a pending request.
// Return (true,  "") to approve
//
//	(false, "…") to reject with reason.
type DecisionFunc func(r *Request) (approved bool, reason string)

// AutoDecider starts a goroutine that polls ListPending for the tenant and
// applies fn to every request. It returns stop() – call it (or cancel ctx)
// to exit. Intended for unattended tenants and tests.
func AutoDecider(ctx context.Context,
	store Store,
	notifier notify.Notifier,
	tenantID string,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				pending, _ := store.ListPending(ctx, tenantID)
				for _, request := range pending {
					ok, reason := fn(request)
					if ok {
						_, _ = Approve(ctx, store, notifier, request.ID, "auto", reason)
					} else {
						_, _ = Reject(ctx, store, notifier, request.ID, "auto", reason)
					}
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending requests for the tenant.
func AutoApprove(ctx context.Context,
	store Store,
	notifier notify.Notifier,
	tenantID string,
	interval time.Duration) func() {
	return AutoDecider(ctx, store, notifier, tenantID,
		func(*Request) (bool, string) { return true, "" }, interval)
}

// AutoReject automatically rejects all pending requests with the given
// reason.
func AutoReject(ctx context.Context,
	store Store,
	notifier notify.Notifier,
	tenantID string,
	reason string,
	interval time.Duration) func() {
	return AutoDecider(ctx, store, notifier, tenantID,
		func(*Request) (bool, string) { return false, reason }, interval)
}
