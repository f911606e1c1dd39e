package alarms

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	"github.com/oshokin/vlarm/internal/logger"
	"github.com/oshokin/vlarm/internal/metrics"
	repo "github.com/oshokin/vlarm/internal/repository/alarms"
)

var (
	// ErrNotFound is returned for an id that is not in the collection.
	ErrNotFound = errors.New("alarm not found")
	// ErrDuplicateID is returned when a new alarm reuses a live or deleted id.
	ErrDuplicateID = errors.New("alarm id already used")
	// ErrInvalidSnooze is returned for a non-positive snooze interval.
	ErrInvalidSnooze = errors.New("snooze interval must be positive")
)

// Manager owns the alarm collection. All methods are safe for concurrent use;
// mutations are serialized.
type Manager struct {
	// repo receives the full list after each mutation. It may be nil.
	repo repo.Repository
	// metrics tracks the collection size.
	metrics *metrics.Metrics
	// newID generates identifiers for alarms created without one.
	newID func() string

	mu sync.RWMutex
	// alarms is sorted by trigger time.
	alarms []domain.Alarm
	// used holds every id ever seen, including deleted ones.
	used map[string]struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics reports the collection size to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(mgr *Manager) {
		if newID != nil {
			mgr.newID = newID
		}
	}
}

// NewManager loads the stored list from repository. A repository that has
// nothing stored yet yields an empty collection.
func NewManager(ctx context.Context, repository repo.Repository, opts ...Option) (*Manager, error) {
	m := &Manager{
		repo:  repository,
		newID: uuid.NewString,
		used:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if repository != nil {
		loaded, err := repository.Load(ctx)

		switch {
		case err == nil:
			m.alarms = loaded
		case errors.Is(err, repo.ErrNotFound):
			// Start empty.
		default:
			return nil, fmt.Errorf("load alarms: %w", err)
		}
	}

	sortByTriggerTime(m.alarms)

	for _, a := range m.alarms {
		m.used[a.ID] = struct{}{}
	}

	m.metrics.SetAlarms(len(m.alarms))

	return m, nil
}

// Create inserts a copy of a, assigning an id when it has none.
func (m *Manager) Create(ctx context.Context, a domain.Alarm) (*domain.Alarm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = m.newID()
	}

	if _, ok := m.used[a.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
	}

	next := append(slices.Clone(m.alarms), a)
	sortByTriggerTime(next)

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}

	m.used[a.ID] = struct{}{}

	logger.InfoKV(ctx, "Alarm created",
		"id", a.ID,
		"trigger_time", a.TriggerTime,
		"message", a.Message,
		"repeat_daily", a.RepeatDaily)

	return &a, nil
}

// Update applies patch to the alarm with the given id. The collection is
// re-sorted only when the trigger time changed.
func (m *Manager) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Alarm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updateLocked(ctx, id, patch)
}

// Delete removes the alarm with the given id. Its id is never reused.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := slices.Delete(slices.Clone(m.alarms), idx, idx+1)

	if err := m.commit(ctx, next); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alarm deleted", "id", id)

	return nil
}

// List returns a copy of the collection in trigger time order.
func (m *Manager) List(_ context.Context) []domain.Alarm {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.alarms)
}

// FindByID returns a copy of the alarm. Callers doing read-modify-write must
// go through Update instead of holding on to the copy.
func (m *Manager) FindByID(_ context.Context, id string) (*domain.Alarm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return m.alarms[idx].Clone(), nil
}

// Snooze defers the alarm to now+d and marks it snoozed.
func (m *Manager) Snooze(ctx context.Context, id string, now time.Time, d time.Duration) (*domain.Alarm, error) {
	if d <= 0 {
		return nil, ErrInvalidSnooze
	}

	var (
		at     = now.Add(d)
		active = true
	)

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updateLocked(ctx, id, domain.Patch{TriggerTime: &at, SnoozeActive: &active})
}

// Dismiss clears the snooze flag. The trigger time is left as is.
func (m *Manager) Dismiss(ctx context.Context, id string) (*domain.Alarm, error) {
	inactive := false

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updateLocked(ctx, id, domain.Patch{SnoozeActive: &inactive})
}

func (m *Manager) updateLocked(ctx context.Context, id string, patch domain.Patch) (*domain.Alarm, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := slices.Clone(m.alarms)
	timeChanged := patch.Apply(&next[idx])

	// Taken before sorting, which may move another alarm into idx.
	result := next[idx].Clone()

	if timeChanged {
		sortByTriggerTime(next)
	}

	if err := m.commit(ctx, next); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Alarm updated",
		"id", id,
		"trigger_time", result.TriggerTime,
		"enabled", result.IsEnabled,
		"snooze_active", result.SnoozeActive)

	return result, nil
}

// commit persists next and only then makes it the live collection, so a
// failed write leaves memory and storage in agreement.
func (m *Manager) commit(ctx context.Context, next []domain.Alarm) error {
	if m.repo != nil {
		if err := m.repo.Save(ctx, next); err != nil {
			logger.Errorf(ctx, "Failed to persist alarms: %v", err)

			return fmt.Errorf("persist alarms: %w", err)
		}
	}

	m.alarms = next
	m.metrics.SetAlarms(len(next))

	return nil
}

func (m *Manager) indexOf(id string) int {
	return slices.IndexFunc(m.alarms, func(a domain.Alarm) bool {
		return a.ID == id
	})
}

// sortByTriggerTime keeps alarms with equal times in insertion order.
func sortByTriggerTime(alarms []domain.Alarm) {
	slices.SortStableFunc(alarms, func(a, b domain.Alarm) int {
		return a.TriggerTime.Compare(b.TriggerTime)
	})
}
