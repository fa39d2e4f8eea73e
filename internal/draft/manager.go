package draft

import (
	"context"
	"sync"
	"time"

	"github.com/culinario/backend/internal/app"
	"github.com/culinario/backend/internal/apperrors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager is the registry of open drafts.
type Manager struct {
	state *app.State
	now   func() time.Time

	mu     sync.RWMutex
	drafts map[uuid.UUID]*Draft
}

func NewManager(state *app.State) *Manager {
	return &Manager{
		state:  state,
		now:    time.Now,
		drafts: make(map[uuid.UUID]*Draft),
	}
}

// Create opens an empty draft.
func (m *Manager) Create() *Draft {
	d := newDraft(m.state, m.now)

	m.mu.Lock()
	m.drafts[d.id] = d
	n := len(m.drafts)
	m.mu.Unlock()

	m.state.Metrics.SetActiveDrafts(n)
	m.state.Logger.Debug("draft created", zap.String("draft_id", d.id.String()))
	return d
}

func (m *Manager) Get(id uuid.UUID) (*Draft, error) {
	m.mu.RLock()
	d, ok := m.drafts[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFound("draft", id.String())
	}
	return d, nil
}

// Delete discards a draft.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	_, ok := m.drafts[id]
	delete(m.drafts, id)
	n := len(m.drafts)
	m.mu.Unlock()

	if !ok {
		return apperrors.NewNotFound("draft", id.String())
	}
	m.state.Metrics.SetActiveDrafts(n)
	return nil
}

// Save saves a draft and closes it on success.
func (m *Manager) Save(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	d, err := m.Get(id)
	if err != nil {
		return uuid.Nil, err
	}
	recipeID, err := d.Save(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	_ = m.Delete(id)
	return recipeID, nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.drafts)
}

// Prune closes drafts untouched for longer than maxAge and returns how
// many were removed.
func (m *Manager) Prune(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	removed := 0
	for id, d := range m.drafts {
		if d.UpdatedAt().Before(cutoff) {
			delete(m.drafts, id)
			removed++
		}
	}
	n := len(m.drafts)
	m.mu.Unlock()

	if removed > 0 {
		m.state.Metrics.SetActiveDrafts(n)
		m.state.Logger.Info("pruned idle drafts", zap.Int("removed", removed))
	}
	return removed
}

// RunPruner prunes every interval until ctx is done.
func (m *Manager) RunPruner(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune(maxAge)
		}
	}
}
