package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDirectory struct {
	getBarberFunc         func(ctx context.Context, id string) (*model.Barber, error)
	listActiveBarbersFunc func(ctx context.Context) ([]*model.Barber, error)
}

// GetBarber falls back to the listing when no lookup is configured.
func (m *mockDirectory) GetBarber(ctx context.Context, id string) (*model.Barber, error) {
	if m.getBarberFunc != nil {
		return m.getBarberFunc(ctx, id)
	}
	listed, _ := m.listActiveBarbersFunc(ctx)
	for _, b := range listed {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, apperrors.NotFoundWithID("Barber", id)
}

func (m *mockDirectory) ListActiveBarbers(ctx context.Context) ([]*model.Barber, error) {
	return m.listActiveBarbersFunc(ctx)
}

type mockHistory struct {
	last  map[string]time.Time
	err   error
	calls int
}

func (m *mockHistory) LastAssignedAt(ctx context.Context, barberIDs []string) (map[string]time.Time, error) {
	m.calls++
	return m.last, m.err
}

func active(ids ...string) []*model.Barber {
	out := make([]*model.Barber, 0, len(ids))
	for _, id := range ids {
		out = append(out, &model.Barber{ID: id, DisplayName: "Barber " + id, Active: true})
	}
	return out
}

func newResolver(dir Directory, hist History) *Resolver {
	return NewResolver(dir, hist, logger.Discard())
}

func TestResolve_SingleActiveBarber(t *testing.T) {
	ana := &model.Barber{ID: "ana", DisplayName: "Ana", Active: true}
	dir := &mockDirectory{listActiveBarbersFunc: func(ctx context.Context) ([]*model.Barber, error) {
		return []*model.Barber{ana}, nil
	}}

	got, err := newResolver(dir, &mockHistory{}).Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Same(t, ana, got)
}

func TestResolve_NoActiveBarbersIsUnassigned(t *testing.T) {
	dir := &mockDirectory{listActiveBarbersFunc: func(ctx context.Context) ([]*model.Barber, error) {
		return nil, nil
	}}
	hist := &mockHistory{}

	got, err := newResolver(dir, hist).Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, hist.calls)
}

func TestResolve_LeastRecentlyAssigned(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		last map[string]time.Time
		want string
	}{
		{"never assigned wins", map[string]time.Time{"a": base, "b": base.Add(time.Hour)}, "c"},
		{"oldest assignment wins", map[string]time.Time{"a": base.Add(2 * time.Hour), "b": base, "c": base.Add(time.Hour)}, "b"},
		{"ties break on id", map[string]time.Time{"a": base, "b": base, "c": base}, "a"},
		{"no history at all", map[string]time.Time{}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &mockDirectory{listActiveBarbersFunc: func(ctx context.Context) ([]*model.Barber, error) {
				return active("c", "a", "b"), nil
			}}

			got, err := newResolver(dir, &mockHistory{last: tt.last}).Resolve(context.Background(), "")

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestResolve_HistoryFailure(t *testing.T) {
	dir := &mockDirectory{listActiveBarbersFunc: func(ctx context.Context) ([]*model.Barber, error) {
		return active("a"), nil
	}}

	_, err := newResolver(dir, &mockHistory{err: errors.New("mongo down")}).Resolve(context.Background(), "")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestResolve_RequestedBarber(t *testing.T) {
	barbers := map[string]*model.Barber{
		"on":  {ID: "on", Active: true},
		"off": {ID: "off", Active: false},
	}
	dir := &mockDirectory{
		getBarberFunc: func(ctx context.Context, id string) (*model.Barber, error) {
			if b, ok := barbers[id]; ok {
				return b, nil
			}
			return nil, apperrors.NotFoundWithID("Barber", id)
		},
		listActiveBarbersFunc: func(ctx context.Context) ([]*model.Barber, error) {
			t.Fatal("directory listing must not be used for an explicit request")
			return nil, nil
		},
	}
	r := newResolver(dir, &mockHistory{})

	got, err := r.Resolve(context.Background(), "on")
	require.NoError(t, err)
	assert.Equal(t, "on", got.ID)

	_, err = r.Resolve(context.Background(), "off")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidBarber))
	assert.Equal(t, "inactive", apperrors.AsAppError(err).Details["reason"])

	_, err = r.Resolve(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidBarber))
	assert.Equal(t, "not found", apperrors.AsAppError(err).Details["reason"])
}

func TestResolve_RequestedBarberLookupFailure(t *testing.T) {
	dir := &mockDirectory{getBarberFunc: func(ctx context.Context, id string) (*model.Barber, error) {
		return nil, apperrors.Internal("Failed to retrieve barber", errors.New("timeout"))
	}}

	_, err := newResolver(dir, &mockHistory{}).Resolve(context.Background(), "x")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestResolve_StaleListingIsRecheckedOnRead(t *testing.T) {
	stored := map[string]*model.Barber{
		"a": {ID: "a", Active: false},
		"b": {ID: "b", DisplayName: "Bruno", Active: true},
	}
	dir := &mockDirectory{
		listActiveBarbersFunc: func(ctx context.Context) ([]*model.Barber, error) {
			return active("a", "b", "gone"), nil
		},
		getBarberFunc: func(ctx context.Context, id string) (*model.Barber, error) {
			if b, ok := stored[id]; ok {
				return b, nil
			}
			return nil, apperrors.NotFoundWithID("Barber", id)
		},
	}
	// "gone" ranks first, then "a" which was deactivated after the list was cached.
	hist := &mockHistory{last: map[string]time.Time{
		"a": time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		"b": time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC),
	}}

	got, err := newResolver(dir, hist).Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)
	assert.Equal(t, "Bruno", got.DisplayName)
}

func TestResolve_EveryListedBarberInactiveIsUnassigned(t *testing.T) {
	dir := &mockDirectory{
		listActiveBarbersFunc: func(ctx context.Context) ([]*model.Barber, error) {
			return active("a"), nil
		},
		getBarberFunc: func(ctx context.Context, id string) (*model.Barber, error) {
			return &model.Barber{ID: id, Active: false}, nil
		},
	}

	got, err := newResolver(dir, &mockHistory{}).Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolve_RecheckFailureIsReturned(t *testing.T) {
	dir := &mockDirectory{
		listActiveBarbersFunc: func(ctx context.Context) ([]*model.Barber, error) {
			return active("a"), nil
		},
		getBarberFunc: func(ctx context.Context, id string) (*model.Barber, error) {
			return nil, apperrors.Internal("Failed to retrieve barber", errors.New("timeout"))
		},
	}

	_, err := newResolver(dir, &mockHistory{}).Resolve(context.Background(), "")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}
