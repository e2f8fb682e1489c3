package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/propwatch/rentroll-risk/internal/domain/profiles"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, tenant string) (*domain.Profile, error) {
	const q = `
SELECT tenant_id, email, is_active, trial_ends_at, analysis_quota, analyses_used, created_at
FROM tenant_profiles
WHERE tenant_id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant)

	var p domain.Profile
	var trialEndsAt sql.NullTime
	var email sql.NullString
	if err := row.Scan(&p.TenantID, &email, &p.IsActive, &trialEndsAt,
		&p.AnalysisQuota, &p.AnalysesUsed, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	p.Email = email.String
	if trialEndsAt.Valid {
		t := trialEndsAt.Time
		p.TrialEndsAt = &t
	}
	return &p, nil
}

func (r *ProfileRepository) IncrementUsage(ctx context.Context, tenant string) error {
	const q = `UPDATE tenant_profiles SET analyses_used = analyses_used + 1 WHERE tenant_id=?;`
	res, err := r.db.ExecContext(ctx, q, tenant)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
