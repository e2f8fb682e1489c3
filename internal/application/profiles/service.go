package profiles

import (
	"context"
	"log"
	"time"

	domain "github.com/propwatch/rentroll-risk/internal/domain/profiles"
)

// Service implements the subscription/quota gate in front of the analyzer.
type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

// Check verifies the tenant may run an analysis right now.
func (s *Service) Check(ctx context.Context, tenant string) error {
	p, err := s.repo.Get(ctx, tenant)
	if err != nil {
		return err
	}
	return p.CanAnalyze(time.Now())
}

// Consume records one completed analysis against the tenant's quota.
// Called after a successful run; failures are logged, never surfaced,
// since the analysis result is already on its way to the client.
func (s *Service) Consume(ctx context.Context, tenant string) {
	if err := s.repo.IncrementUsage(ctx, tenant); err != nil {
		log.Printf("quota increment failed: tenant=%s err=%v", tenant, err)
	}
}
