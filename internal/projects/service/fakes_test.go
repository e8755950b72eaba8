package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/grayola/task-manager/internal/apperr"
	authdomain "github.com/grayola/task-manager/internal/auth/domain"
	"github.com/grayola/task-manager/internal/projects/domain"
)

// memStore mirrors the repository semantics in memory.
type memStore struct {
	mu        sync.Mutex
	projects  map[string]*domain.Project
	balances  map[string]int
	writes    int
	clock     time.Time
	listErr   error
	appendErr error
}

func newMemStore(balances map[string]int) *memStore {
	return &memStore{
		projects: map[string]*domain.Project{},
		balances: balances,
		clock:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func clone(p *domain.Project) *domain.Project {
	cp := *p
	cp.Files = append([]string{}, p.Files...)
	if p.DesignerID != nil {
		d := *p.DesignerID
		cp.DesignerID = &d
	}
	return &cp
}

func (m *memStore) CreateWithDebit(_ context.Context, p *domain.Project) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[p.ClientID]
	if !ok {
		return 0, apperr.NotFound("profile not found")
	}
	if balance < p.PointsCost {
		return balance, apperr.InsufficientCredits(balance, p.PointsCost)
	}
	now := m.tick()
	p.Files = []string{}
	p.CreatedAt, p.UpdatedAt = now, now
	m.projects[p.ID] = clone(p)
	m.balances[p.ClientID] = balance - p.PointsCost
	m.writes++
	return m.balances[p.ClientID], nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	return clone(p), nil
}

func (m *memStore) List(_ context.Context, f domain.ListFilter) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.Project{}
	for _, p := range m.projects {
		if f.ClientID != "" && p.ClientID != f.ClientID {
			continue
		}
		if f.DesignerID != "" && !p.IsAssignedTo(f.DesignerID) {
			continue
		}
		out = append(out, *clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) mutate(id string, fn func(p *domain.Project)) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	fn(p)
	p.UpdatedAt = m.tick()
	m.writes++
	return clone(p), nil
}

func (m *memStore) Assign(_ context.Context, id, designerID string) (*domain.Project, error) {
	return m.mutate(id, func(p *domain.Project) {
		d := designerID
		p.DesignerID = &d
		p.Status = domain.StatusInProgress
	})
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Project, error) {
	return m.mutate(id, func(p *domain.Project) { p.Status = status })
}

func (m *memStore) Update(_ context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	return m.mutate(id, func(p *domain.Project) {
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.PointsCost != nil {
			p.PointsCost = *patch.PointsCost
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
	})
}

func (m *memStore) AppendFiles(_ context.Context, id string, paths []string) (*domain.Project, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	return m.mutate(id, func(p *domain.Project) { p.Files = append(p.Files, paths...) })
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return apperr.NotFound("project not found")
	}
	delete(m.projects, id)
	m.writes++
	return nil
}

// memObjects records uploads; objects are never removed.
type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}}
}

func (o *memObjects) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if o.failOn != "" && string(data) == o.failOn {
		return "", apperr.Upload("upload failed", errors.New("bucket unavailable"))
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[key] = data
	return key, nil
}

func (o *memObjects) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?expires=%d", key, int(ttl.Seconds())), nil
}

type memProfiles []authdomain.Profile

func (m memProfiles) ListByRole(_ context.Context, role authdomain.Role) ([]authdomain.Profile, error) {
	var out []authdomain.Profile
	for _, p := range m {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}
