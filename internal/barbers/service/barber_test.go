package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	barberserrors "barbershop/internal/barbers/errors"
	"barbershop/internal/barbers/validator"
	"barbershop/pkg/cache"
	"barbershop/pkg/client"
	"barbershop/pkg/config"
	mongotx "barbershop/pkg/db/mongo"
	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const anaUserID = "7b0c2e7a-3c56-4b8e-9a53-2f1e0d7c9a11"

type mockBarberRepository struct {
	createFunc       func(ctx context.Context, barber *model.Barber) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Barber, error)
	findByUserIDFunc func(ctx context.Context, userID string) (*model.Barber, error)
	findActiveFunc   func(ctx context.Context) ([]*model.Barber, error)
	findAllFunc      func(ctx context.Context) ([]*model.Barber, error)
	updateFunc       func(ctx context.Context, id string, update *model.BarberUpdate, at time.Time) (*model.Barber, error)
	activeCalls      int
}

func (m *mockBarberRepository) Create(ctx context.Context, barber *model.Barber) error {
	return m.createFunc(ctx, barber)
}

func (m *mockBarberRepository) FindByID(ctx context.Context, id string) (*model.Barber, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockBarberRepository) FindByUserID(ctx context.Context, userID string) (*model.Barber, error) {
	return m.findByUserIDFunc(ctx, userID)
}

func (m *mockBarberRepository) FindActive(ctx context.Context) ([]*model.Barber, error) {
	m.activeCalls++
	return m.findActiveFunc(ctx)
}

func (m *mockBarberRepository) FindAll(ctx context.Context) ([]*model.Barber, error) {
	return m.findAllFunc(ctx)
}

func (m *mockBarberRepository) Update(ctx context.Context, id string, update *model.BarberUpdate, at time.Time) (*model.Barber, error) {
	return m.updateFunc(ctx, id, update, at)
}

func (m *mockBarberRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockUserDirectory struct {
	getUserFunc func(ctx context.Context, userID string) (*client.UserProfile, error)
}

func (m *mockUserDirectory) GetUser(ctx context.Context, userID string) (*client.UserProfile, error) {
	return m.getUserFunc(ctx, userID)
}

func notFoundUser(context.Context, string) (*client.UserProfile, error) {
	return nil, client.ErrUserNotFound
}

func newTestService(repo *mockBarberRepository, users client.UserDirectory, c cache.Cache) BarberService {
	cfg := &config.Config{CacheTTL: config.DefaultCacheTTL, Log: logger.Discard()}
	return NewBarberService(repo, validator.NewBarberValidator(cfg.Log), users, c, cfg)
}

func noBarber(_ context.Context, id string) (*model.Barber, error) {
	return nil, fmt.Errorf("%w: %s", barberserrors.ErrNotFound, id)
}

func TestCreateBarber_New(t *testing.T) {
	var stored *model.Barber
	repo := &mockBarberRepository{
		findByUserIDFunc: noBarber,
		createFunc: func(ctx context.Context, barber *model.Barber) error {
			barber.ID = "65f0000000000000000000b1"
			stored = barber
			return nil
		},
	}
	users := &mockUserDirectory{getUserFunc: func(ctx context.Context, userID string) (*client.UserProfile, error) {
		return &client.UserProfile{ID: userID, FullName: "  Ana   Souza "}, nil
	}}
	svc := newTestService(repo, users, nil)

	barber, created, err := svc.CreateBarber(context.Background(), &model.CreateBarberRequest{
		UserID:      anaUserID,
		Specialties: []string{"Fades", "fades", " Beard "},
	})

	require.NoError(t, err)
	assert.True(t, created)
	assert.Same(t, stored, barber)
	assert.Equal(t, "Ana Souza", barber.DisplayName)
	assert.Equal(t, []string{"fades", "beard"}, barber.Specialties)
	assert.True(t, barber.Active)
	assert.True(t, barber.Rating.IsZero())
	assert.False(t, barber.CreatedAt.IsZero())
}

func TestCreateBarber_PlaceholderName(t *testing.T) {
	repo := &mockBarberRepository{
		findByUserIDFunc: noBarber,
		createFunc:       func(ctx context.Context, barber *model.Barber) error { return nil },
	}
	svc := newTestService(repo, &mockUserDirectory{getUserFunc: notFoundUser}, nil)

	barber, _, err := svc.CreateBarber(context.Background(), &model.CreateBarberRequest{UserID: anaUserID})

	require.NoError(t, err)
	assert.Equal(t, "Barber 7b0c2e7a", barber.DisplayName)
}

func TestCreateBarber_ExistingIsReturned(t *testing.T) {
	existing := &model.Barber{ID: "65f0000000000000000000b1", UserID: anaUserID, DisplayName: "Ana"}
	repo := &mockBarberRepository{
		findByUserIDFunc: func(ctx context.Context, userID string) (*model.Barber, error) { return existing, nil },
		createFunc: func(ctx context.Context, barber *model.Barber) error {
			t.Fatal("create must not be called for an existing barber")
			return nil
		},
	}
	svc := newTestService(repo, &mockUserDirectory{getUserFunc: notFoundUser}, nil)

	barber, created, err := svc.CreateBarber(context.Background(), &model.CreateBarberRequest{UserID: anaUserID, DisplayName: "Other"})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, existing, barber)
}

func TestCreateBarber_DuplicateRace(t *testing.T) {
	existing := &model.Barber{ID: "65f0000000000000000000b1", UserID: anaUserID, DisplayName: "Ana"}
	lookups := 0
	repo := &mockBarberRepository{
		findByUserIDFunc: func(ctx context.Context, userID string) (*model.Barber, error) {
			lookups++
			if lookups == 1 {
				return noBarber(ctx, userID)
			}
			return existing, nil
		},
		createFunc: func(ctx context.Context, barber *model.Barber) error {
			return fmt.Errorf("%w: %s", barberserrors.ErrDuplicateUser, barber.UserID)
		},
	}
	svc := newTestService(repo, &mockUserDirectory{getUserFunc: notFoundUser}, nil)

	barber, created, err := svc.CreateBarber(context.Background(), &model.CreateBarberRequest{UserID: anaUserID, DisplayName: "Ana"})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, existing, barber)
}

func TestCreateBarber_Invalid(t *testing.T) {
	svc := newTestService(&mockBarberRepository{}, &mockUserDirectory{getUserFunc: notFoundUser}, nil)

	_, _, err := svc.CreateBarber(context.Background(), &model.CreateBarberRequest{UserID: "nope"})

	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestListActiveBarbers_CachedUntilWrite(t *testing.T) {
	repo := &mockBarberRepository{
		findActiveFunc: func(ctx context.Context) ([]*model.Barber, error) {
			return []*model.Barber{{ID: "65f0000000000000000000b1", DisplayName: "Ana", Active: true}}, nil
		},
		updateFunc: func(ctx context.Context, id string, update *model.BarberUpdate, at time.Time) (*model.Barber, error) {
			return &model.Barber{ID: id, Active: *update.Active}, nil
		},
	}
	svc := newTestService(repo, &mockUserDirectory{getUserFunc: notFoundUser}, cache.NewMemory())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		barbers, err := svc.ListActiveBarbers(ctx)
		require.NoError(t, err)
		require.Len(t, barbers, 1)
		assert.Equal(t, "Ana", barbers[0].DisplayName)
	}
	assert.Equal(t, 1, repo.activeCalls)

	barber, err := svc.DeactivateBarber(ctx, "65f0000000000000000000b1")
	require.NoError(t, err)
	assert.False(t, barber.Active)

	_, err = svc.ListActiveBarbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.activeCalls)
}

func TestGetBarber_Errors(t *testing.T) {
	repo := &mockBarberRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Barber, error) {
		switch id {
		case "bad":
			return nil, fmt.Errorf("%w: %s", barberserrors.ErrInvalidID, id)
		case "boom":
			return nil, errors.New("connection reset")
		}
		return noBarber(ctx, id)
	}}
	svc := newTestService(repo, &mockUserDirectory{getUserFunc: notFoundUser}, nil)
	ctx := context.Background()

	_, err := svc.GetBarber(ctx, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = svc.GetBarber(ctx, "bad")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = svc.GetBarber(ctx, "65f0000000000000000000b9")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.GetBarber(ctx, "boom")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestUpdateBarber_NormalizesFields(t *testing.T) {
	var got *model.BarberUpdate
	repo := &mockBarberRepository{updateFunc: func(ctx context.Context, id string, update *model.BarberUpdate, at time.Time) (*model.Barber, error) {
		got = update
		return &model.Barber{ID: id}, nil
	}}
	svc := newTestService(repo, &mockUserDirectory{getUserFunc: notFoundUser}, nil)

	bio := "  Ten years   behind the chair "
	tags := []string{"Fades!", "fades"}
	_, err := svc.UpdateBarber(context.Background(), "65f0000000000000000000b1", &model.BarberUpdate{Bio: &bio, Specialties: &tags})

	require.NoError(t, err)
	assert.Equal(t, "Ten years behind the chair", *got.Bio)
	assert.Equal(t, []string{"fades"}, *got.Specialties)
	assert.Nil(t, got.Active)
}

func TestUpdateBarber_Empty(t *testing.T) {
	svc := newTestService(&mockBarberRepository{}, &mockUserDirectory{getUserFunc: notFoundUser}, nil)

	_, err := svc.UpdateBarber(context.Background(), "65f0000000000000000000b1", &model.BarberUpdate{})

	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
