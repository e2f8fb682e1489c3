package records

import (
	"context"

	domain "github.com/propwatch/rentroll-risk/internal/domain/records"
)

// Service exposes analysis history queries to the HTTP layer.
type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, tenant string, id domain.RecordID) (*domain.Record, error) {
	return s.repo.Get(ctx, tenant, id)
}

func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Record, error) {
	return s.repo.Paginate(ctx, tenant, page, pageSize)
}
