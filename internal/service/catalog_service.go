package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// CatalogService lists the read-only service and specialist catalog.
type CatalogService struct {
	repo *repository.CatalogRepo
}

func NewCatalogService(repo *repository.CatalogRepo) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListServices returns services ordered by category then name.
func (s *CatalogService) ListServices(ctx context.Context) ([]model.Service, error) {
	out, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return out, nil
}

// ListSpecialists returns specialists ordered by specialties then name.
func (s *CatalogService) ListSpecialists(ctx context.Context) ([]model.Specialist, error) {
	out, err := s.repo.ListSpecialists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specialists: %w", err)
	}
	return out, nil
}
