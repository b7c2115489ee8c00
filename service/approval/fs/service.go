// Package fs provides a filesystem-backed approval.Store: one JSON document
// per request, addressed through the afs abstraction so any supported scheme
// (file, mem, s3, gs) can host the data.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/viant/stepgate/internal/clock"
	"github.com/viant/stepgate/internal/idgen"
	"github.com/viant/stepgate/service/approval"
	"github.com/viant/stepgate/service/dao"
)

// Service implements approval.Store on top of a filesystem. A single lock
// serialises writes so compound mutations land atomically per request.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ approval.Store = (*Service)(nil)

// New creates a filesystem approval store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fileSystem := afs.New()
	ctx := context.Background()
	exists, _ := fileSystem.Exists(ctx, basePath)
	if !exists {
		if err := fileSystem.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)
	return &Service{basePath: basePath, fs: fileSystem}, nil
}

func (s *Service) requestPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

func (s *Service) save(ctx context.Context, request *approval.Request) error {
	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	filePath := s.requestPath(request.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save request to file %s: %w", filePath, err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*approval.Request, error) {
	filePath := s.requestPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if request exists: %w", err)
	}
	if !exists {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	request := &approval.Request{}
	if err = json.Unmarshal(data, request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request data: %w", err)
	}
	return request, nil
}

// mutate applies fn to the stored request under the write lock and persists
// the result, so compound updates become visible together.
func (s *Service) mutate(ctx context.Context, id string, allowResolved bool, fn func(*approval.Request) error) (*approval.Request, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("approval request %v: %w", id, dao.ErrNotFound)
	}
	if !allowResolved && request.ResolvedAt != nil {
		return nil, approval.ErrAlreadyResolved
	}
	if err = fn(request); err != nil {
		return nil, err
	}
	if err = s.save(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *Service) CreateRequest(ctx context.Context, request *approval.Request) (*approval.Request, error) {
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
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, stored); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

func (s *Service) GetRequest(ctx context.Context, id string) (*approval.Request, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx, id)
}

func (s *Service) GetRequestByRunAndStep(ctx context.Context, runID, stepID string) (*approval.Request, error) {
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, request := range all {
		if request.RunID == runID && request.StepID == stepID {
			return request, nil
		}
	}
	return nil, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status approval.Status) error {
	_, err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.Status = status
		return nil
	})
	return err
}

func (s *Service) AddDecision(ctx context.Context, id string, decision approval.Decision) error {
	_, err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.Decisions = append(request.Decisions, decision)
		return nil
	})
	return err
}

func (s *Service) IncrementEscalation(ctx context.Context, id string) (int, error) {
	var count int
	_, err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.EscalationCount++
		count = request.EscalationCount
		return nil
	})
	return count, err
}

func (s *Service) UpdateApprovers(ctx context.Context, id string, approvers []string) error {
	_, err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.Approvers = append([]string(nil), approvers...)
		return nil
	})
	return err
}

func (s *Service) UpdateExpiresAt(ctx context.Context, id string, expiresAt time.Time) error {
	_, err := s.mutate(ctx, id, false, func(request *approval.Request) error {
		request.ExpiresAt = &expiresAt
		return nil
	})
	return err
}

func (s *Service) Escalate(ctx context.Context, id string, approvers []string, expiresAt time.Time) (int, error) {
	var count int
	_, err := s.mutate(ctx, id, false, func(request *approval.Request) error {
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
	return count, nil
}

func (s *Service) SetResolved(ctx context.Context, id string, status approval.Status) (*approval.Request, error) {
	return s.mutate(ctx, id, true, func(request *approval.Request) error {
		if request.ResolvedAt != nil {
			return nil
		}
		resolvedAt := clock.Now()
		request.Status = status
		request.ResolvedAt = &resolvedAt
		return nil
	})
}

func (s *Service) ListPending(ctx context.Context, tenantID string) ([]*approval.Request, error) {
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*approval.Request, 0, len(all))
	for _, request := range all {
		if request.ResolvedAt != nil {
			continue
		}
		if tenantID != "" && request.TenantID != tenantID {
			continue
		}
		pending = append(pending, request)
	}
	return pending, nil
}

func (s *Service) ListByRunID(ctx context.Context, runID string) ([]*approval.Request, error) {
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*approval.Request, 0, len(all))
	for _, request := range all {
		if request.RunID == runID {
			matched = append(matched, request)
		}
	}
	return matched, nil
}

func (s *Service) list(ctx context.Context) ([]*approval.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list request files: %w", err)
	}
	var requests []*approval.Request
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		request := &approval.Request{}
		if err = json.Unmarshal(data, request); err != nil {
			continue
		}
		requests = append(requests, request)
	}
	return requests, nil
}
