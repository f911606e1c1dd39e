package alarms

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	"github.com/oshokin/vlarm/internal/metrics"
	repo "github.com/oshokin/vlarm/internal/repository/alarms"
)

var errTestStorage = errors.New("test storage error")

// failingRepository loads fine and then fails every Save.
type failingRepository struct {
	loadErr error
}

func (f *failingRepository) Load(context.Context) ([]domain.Alarm, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}

	return nil, repo.ErrNotFound
}

func (f *failingRepository) Save(context.Context, []domain.Alarm) error {
	return errTestStorage
}

func at(hour, minute int) time.Time {
	return time.Date(2025, time.October, 28, hour, minute, 0, 0, time.Local)
}

func sequentialIDs() Option {
	n := 0

	return WithIDGenerator(func() string {
		n++

		return "id-" + strconv.Itoa(n)
	})
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *repo.MemoryRepository) {
	t.Helper()

	storage := repo.NewMemoryRepository()

	m, err := NewManager(context.Background(), storage, opts...)
	require.NoError(t, err)

	return m, storage
}

// TestCreateKeepsOrder verifies that alarms come back sorted whatever the insertion order.
func TestCreateKeepsOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, storage := newTestManager(t)

	for _, h := range []int{9, 7, 23} {
		_, err := m.Create(ctx, domain.Alarm{TriggerTime: at(h, 0), IsEnabled: true})
		require.NoError(t, err)
	}

	list := m.List(ctx)
	require.Len(t, list, 3)
	require.Equal(t, at(7, 0), list[0].TriggerTime)
	require.Equal(t, at(9, 0), list[1].TriggerTime)
	require.Equal(t, at(23, 0), list[2].TriggerTime)

	stored, err := storage.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, list, stored)
	require.Equal(t, 3, storage.Saves())
}

// TestCreateAssignsUniqueIDs checks id generation and the ban on reused ids.
func TestCreateAssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestManager(t)

	a, err := m.Create(ctx, domain.Alarm{TriggerTime: at(8, 0)})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	b, err := m.Create(ctx, domain.Alarm{TriggerTime: at(8, 0)})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	_, err = m.Create(ctx, domain.Alarm{ID: a.ID, TriggerTime: at(9, 0)})
	require.ErrorIs(t, err, ErrDuplicateID)

	require.NoError(t, m.Delete(ctx, a.ID))

	_, err = m.Create(ctx, domain.Alarm{ID: a.ID, TriggerTime: at(9, 0)})
	require.ErrorIs(t, err, ErrDuplicateID)
}

// TestUpdateRoundtrip ensures an edit keeps the id and the order when the time is untouched.
func TestUpdateRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestManager(t, sequentialIDs())

	for _, h := range []int{7, 9, 23} {
		_, err := m.Create(ctx, domain.Alarm{TriggerTime: at(h, 0), IsEnabled: true})
		require.NoError(t, err)
	}

	before := m.List(ctx)

	msg := "X"
	updated, err := m.Update(ctx, "id-2", domain.Patch{Message: &msg})
	require.NoError(t, err)
	require.Equal(t, "id-2", updated.ID)

	found, err := m.FindByID(ctx, "id-2")
	require.NoError(t, err)
	require.Equal(t, "X", found.Message)
	require.Equal(t, "id-2", found.ID)

	after := m.List(ctx)
	for i := range before {
		require.Equal(t, before[i].ID, after[i].ID)
	}

	later := at(23, 30)
	_, err = m.Update(ctx, "id-1", domain.Patch{TriggerTime: &later})
	require.NoError(t, err)

	ids := make([]string, 0, 3)
	for _, a := range m.List(ctx) {
		ids = append(ids, a.ID)
	}

	require.Equal(t, []string{"id-2", "id-3", "id-1"}, ids)
}

// TestUpdateReturnsEditedAlarmAfterResort checks that moving an alarm past its
// neighbours returns the edited alarm, not the one that took its slot.
func TestUpdateReturnsEditedAlarmAfterResort(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestManager(t, sequentialIDs())

	for _, h := range []int{7, 9} {
		_, err := m.Create(ctx, domain.Alarm{TriggerTime: at(h, 0), IsEnabled: true})
		require.NoError(t, err)
	}

	later := at(10, 0)
	updated, err := m.Update(ctx, "id-1", domain.Patch{TriggerTime: &later})
	require.NoError(t, err)
	require.Equal(t, "id-1", updated.ID)
	require.Equal(t, at(10, 0), updated.TriggerTime)

	snoozed, err := m.Snooze(ctx, "id-2", at(9, 0), 2*time.Hour)
	require.NoError(t, err)
	require.Equal(t, "id-2", snoozed.ID)
	require.Equal(t, at(11, 0), snoozed.TriggerTime)
	require.True(t, snoozed.SnoozeActive)

	list := m.List(ctx)
	require.Equal(t, "id-1", list[0].ID)
	require.Equal(t, "id-2", list[1].ID)
}

// TestNotFound verifies that unknown ids are reported and nothing is fabricated.
func TestNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, storage := newTestManager(t)

	msg := "X"

	_, err := m.Update(ctx, "missing", domain.Patch{Message: &msg})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, m.Delete(ctx, "missing"), ErrNotFound)

	_, err = m.FindByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = m.Snooze(ctx, "missing", at(8, 0), time.Minute)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = m.Dismiss(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.Empty(t, m.List(ctx))
	require.Zero(t, storage.Saves())
}

// TestSnoozeAndDismiss checks the snooze flag and the deferred trigger time.
func TestSnoozeAndDismiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestManager(t, sequentialIDs())

	_, err := m.Create(ctx, domain.Alarm{TriggerTime: at(8, 0), IsEnabled: true})
	require.NoError(t, err)

	_, err = m.Snooze(ctx, "id-1", at(8, 0), 0)
	require.ErrorIs(t, err, ErrInvalidSnooze)

	snoozed, err := m.Snooze(ctx, "id-1", at(8, 0), 9*time.Minute)
	require.NoError(t, err)
	require.True(t, snoozed.SnoozeActive)
	require.Equal(t, at(8, 9), snoozed.TriggerTime)

	dismissed, err := m.Dismiss(ctx, "id-1")
	require.NoError(t, err)
	require.False(t, dismissed.SnoozeActive)
	require.Equal(t, at(8, 9), dismissed.TriggerTime)
}

// TestPersistFailureKeepsCollection verifies that a failed save leaves memory unchanged.
func TestPersistFailureKeepsCollection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	m, err := NewManager(ctx, new(failingRepository))
	require.NoError(t, err)

	_, err = m.Create(ctx, domain.Alarm{TriggerTime: at(8, 0)})
	require.ErrorIs(t, err, errTestStorage)
	require.Empty(t, m.List(ctx))

	_, err = NewManager(ctx, &failingRepository{loadErr: errTestStorage})
	require.ErrorIs(t, err, errTestStorage)
}

// TestNewManagerLoadsSorted checks that a stored list is loaded, sorted and counted.
func TestNewManagerLoadsSorted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := prometheus.NewRegistry()
	met := metrics.MustNewMetrics(reg)

	storage := repo.NewMemoryRepository(
		domain.Alarm{ID: "late", TriggerTime: at(22, 0)},
		domain.Alarm{ID: "early", TriggerTime: at(6, 0)},
	)

	m, err := NewManager(ctx, storage, WithMetrics(met))
	require.NoError(t, err)

	list := m.List(ctx)
	require.Equal(t, "early", list[0].ID)
	require.Equal(t, "late", list[1].ID)

	_, err = m.Create(ctx, domain.Alarm{ID: "early", TriggerTime: at(7, 0)})
	require.ErrorIs(t, err, ErrDuplicateID)

	require.NoError(t, m.Delete(ctx, "late"))

	expected := `
# HELP vlarm_alarms Number of alarms in the collection.
# TYPE vlarm_alarms gauge
vlarm_alarms 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "vlarm_alarms"))
}

// TestNilRepository checks that the manager works purely in memory.
func TestNilRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	m, err := NewManager(ctx, nil)
	require.NoError(t, err)

	_, err = m.Create(ctx, domain.Alarm{TriggerTime: at(8, 0)})
	require.NoError(t, err)
	require.Len(t, m.List(ctx), 1)
}
