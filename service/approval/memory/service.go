// Package memory provides the reference in-memory approval.Store: a single
// table keyed by request id with tenant/run/step scanned linearly.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/stepgate/internal/clock"
	"github.com/viant/stepgate/internal/idgen"
	"github.com/viant/stepgate/service/approval"
	"github.com/viant/stepgate/service/dao"
	"github.com/viant/stepgate/service/dao/criteria"
	"github.com/viant/stepgate/service/dao/store"
	"github.com/viant/stepgate/service/messaging"
	qmem "github.com/viant/stepgate/service/messaging/memory"
)

type service struct {
	requests *store.MemoryStore[string, approval.Request]
	events   messaging.Queue[approval.Event]
}

func requestKey(r *approval.Request) string { return r.ID }

// New creates the reference store. Events for every request mutation are
// published to the store's queue so observers (audit, webhooks) can follow
// along without polling.
func New(options ...Option) approval.Store {
	ret := &service{
		requests: store.NewMemoryStore[string, approval.Request](requestKey),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.events == nil {
		ret.events = qmem.NewQueue[approval.Event](qmem.DefaultConfig())
	}
	return ret
}

// Queue exposes the event feed.
func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

// publish is best-effort: the event feed must never stall a mutation, so a
// full queue with no consumer drops the event instead of blocking.
func (s *service) publish(ctx context.Context, topic string, request *approval.Request) {
	_, _ = s.events.TryPublish(ctx, &approval.Event{
		Topic:   topic,
		Request: request,
		Headers: map[string]string{"tenantId": request.TenantID},
	})
}

func (s *service) CreateRequest(ctx context.Context, request *approval.Request) (*approval.Request, error) {
	if request == nil {
		return nil, dao.ErrNilEntity
	}
	stored := request.Clone()
	if stored.ID == "" {
		stored.ID = idgen.New()
	}
	stored.CreatedAt = clock.Now()
	if stored.Status == "" {
		stored.Status = approval.StatusPending
	}
	// Clone before Save: once stored is in the table a concurrent Mutate may
	// write it, so the returned copy has to be taken ahead of publication.
	created := stored.Clone()
	if err := s.requests.Save(ctx, stored); err != nil {
		return nil, err
	}
	s.publish(ctx, approval.TopicRequestCreated, created)
	return created, nil
}

func (s *service) GetRequest(ctx context.Context, id string) (*approval.Request, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	var clone *approval.Request
	err := s.requests.View(ctx, id, func(request *approval.Request) {
		clone = request.Clone()
	})
	if err == dao.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return clone, nil
}

func (s *service) GetRequestByRunAndStep(ctx context.Context, runID, stepID string) (*approval.Request, error) {
	matched, err := s.list(ctx, dao.NewParameter("runId", runID), dao.NewParameter("stepId", stepID))
	if err != nil || len(matched) == 0 {
		return nil, err
	}
	return matched[0], nil
}

// mutate wraps the underlying atomic mutation, rejecting writes against
// terminal requests unless allowResolved is set.
func (s *service) mutate(ctx context.Context, id string, allowResolved bool, fn func(*approval.Request) error) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	err := s.requests.Mutate(ctx, id, func(request *approval.Request) error {
		if !allowResolved && request.ResolvedAt != nil {
			return approval.ErrAlreadyResolved
		}
		return fn(request)
	})
	if err == dao.ErrNotFound {
		return fmt.Errorf("approval request %v: %w", id, dao.ErrNotFound)
	}
	return err
}

func (s *service) UpdateStatus(ctx context.Context, id string, status approval.Status) error {
	err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.Status = status
		return nil
	})
	if err != nil {
		return err
	}
	s.publishCurrent(ctx, approval.TopicRequestUpdated, id)
	return nil
}

func (s *service) AddDecision(ctx context.Context, id string, decision approval.Decision) error {
	err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.Decisions = append(request.Decisions, decision)
		return nil
	})
	if err != nil {
		return err
	}
	s.publishCurrent(ctx, approval.TopicDecisionCreated, id)
	return nil
}

func (s *service) IncrementEscalation(ctx context.Context, id string) (int, error) {
	var count int
	err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.EscalationCount++
		count = request.EscalationCount
		return nil
	})
	return count, err
}

func (s *service) UpdateApprovers(ctx context.Context, id string, approvers []string) error {
	return s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.Approvers = append([]string(nil), approvers...)
		return nil
	})
}

func (s *service) UpdateExpiresAt(ctx context.Context, id string, expiresAt time.Time) error {
	return s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.ExpiresAt = &expiresAt
		return nil
	})
}

func (s *service) Escalate(ctx context.Context, id string, approvers []string, expiresAt time.Time) (int, error) {
	var count int
	err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.Approvers = append([]string(nil), approvers...)
		request.ExpiresAt = &expiresAt
		request.EscalationCount++
		request.Status = approval.StatusEscalated
		count = request.EscalationCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.publishCurrent(ctx, approval.TopicRequestEscalated, id)
	return count, nil
}

func (s *service) SetResolved(ctx context.Context, id string, status approval.Status) (*approval.Request, error) {
	err := s.mutate(ctx, id, true, func(request *approval.Request) error {
		// Idempotent on terminal requests: ResolvedAt is never rewritten.
		if request.ResolvedAt != nil {
			return nil
		}
		resolvedAt := clock.Now()
		request.Status = status
		request.ResolvedAt = &resolvedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	resolved, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, approval.TopicRequestResolved, resolved)
	return resolved, nil
}

func (s *service) ListPending(ctx context.Context, tenantID string) ([]*approval.Request, error) {
	var parameters []*dao.Parameter
	if tenantID != "" {
		parameters = append(parameters, dao.NewParameter("tenantId", tenantID))
	}
	all, err := s.list(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	pending := make([]*approval.Request, 0, len(all))
	for _, request := range all {
		if request.ResolvedAt != nil {
			continue
		}
		pending = append(pending, request)
	}
	return pending, nil
}

func (s *service) ListByRunID(ctx context.Context, runID string) ([]*approval.Request, error) {
	return s.list(ctx, dao.NewParameter("runId", runID))
}

// list clones every record matching the supplied filters. Cloning happens
// inside Range, under the store's read lock, so a concurrent mutation never
// races the copy.
func (s *service) list(ctx context.Context, parameters ...*dao.Parameter) ([]*approval.Request, error) {
	var matched []*approval.Request
	err := s.requests.Range(ctx, func(request *approval.Request) {
		attributes := map[string]string{
			"tenantId": request.TenantID,
			"runId":    request.RunID,
			"stepId":   request.StepID,
			"status":   string(request.Status),
		}
		if !criteria.Matches(attributes, parameters) {
			return
		}
		matched = append(matched, request.Clone())
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func (s *service) publishCurrent(ctx context.Context, topic, id string) {
	if current, err := s.GetRequest(ctx, id); err == nil && current != nil {
		s.publish(ctx, topic, current)
	}
}

var _ approval.Store = (*service)(nil)
