package service

import (
	"context"
	"errors"

	catalogerrors "barbershop/internal/catalog/errors"
	"barbershop/internal/catalog/repository"
	"barbershop/pkg/cache"
	"barbershop/pkg/config"
	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/model"
)

const activeServicesKey = "services:active"

type CatalogService interface {
	GetService(ctx context.Context, id string) (*model.Service, error)
	ListActiveServices(ctx context.Context) ([]*model.Service, error)
}

type catalogService struct {
	repo  repository.ServiceRepository
	cache cache.Cache
	cfg   *config.Config
}

func NewCatalogService(repo repository.ServiceRepository, c cache.Cache, cfg *config.Config) CatalogService {
	if c == nil {
		c = cache.Noop{}
	}
	return &catalogService{
		repo:  repo,
		cache: c,
		cfg:   cfg,
	}
}

func (s *catalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to retrieve service", "service_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}

	return svc, nil
}

// ListActiveServices is read through the cache. The catalog has no write
// path here, so entries only age out with CacheTTL.
func (s *catalogService) ListActiveServices(ctx context.Context) ([]*model.Service, error) {
	var cached []*model.Service
	if err := s.cache.Get(ctx, activeServicesKey, &cached); err == nil {
		return cached, nil
	}

	services, err := s.repo.FindActive(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list active services", "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}

	if err := s.cache.Set(ctx, activeServicesKey, services, s.cfg.CacheTTL); err != nil {
		s.cfg.Log.Warn("Catalog cache write failed", "key", activeServicesKey, "error", err)
	}

	s.cfg.Log.Debug("Active services listed", "count", len(services))
	return services, nil
}
