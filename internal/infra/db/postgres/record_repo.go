package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/propwatch/rentroll-risk/internal/domain/records"
)

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Save inserts or updates an analysis history row
func (r *RecordRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO rentroll_analyses
  (id, tenant_id, property_name, file_name, file_size, artifact_url,
   total_tenants, at_risk_tenants, avg_default_probability,
   result_json, processing_time_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  property_name=EXCLUDED.property_name,
  artifact_url=EXCLUDED.artifact_url,
  total_tenants=EXCLUDED.total_tenants,
  at_risk_tenants=EXCLUDED.at_risk_tenants,
  avg_default_probability=EXCLUDED.avg_default_probability,
  result_json=EXCLUDED.result_json,
  processing_time_ms=EXCLUDED.processing_time_ms;
`
	tenant := stringOrDash(rec.TenantID)
	fileName := stringOrDash(rec.FileName)
	result := rec.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, tenant, rec.PropertyName, fileName, rec.FileSize, rec.ArtifactURL,
		rec.TotalTenants, rec.AtRiskTenants, rec.AverageProbability,
		result, rec.ProcessingTimeMs, createdAt,
	)
	return err
}

// Get by ID + tenant
func (r *RecordRepository) Get(ctx context.Context, tenant string, id domain.RecordID) (*domain.Record, error) {
	const q = `
SELECT id, tenant_id, property_name, file_name, file_size, artifact_url,
       total_tenants, at_risk_tenants, avg_default_probability,
       result_json, processing_time_ms, created_at
FROM rentroll_analyses
WHERE tenant_id=$1 AND id=$2 LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	var rec domain.Record
	if err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.PropertyName, &rec.FileName, &rec.FileSize, &rec.ArtifactURL,
		&rec.TotalTenants, &rec.AtRiskTenants, &rec.AverageProbability,
		&rec.Result, &rec.ProcessingTimeMs, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Paginate returns a page of history rows ordered by created_at desc
func (r *RecordRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, property_name, file_name, file_size, artifact_url,
       total_tenants, at_risk_tenants, avg_default_probability,
       result_json, processing_time_ms, created_at
FROM rentroll_analyses
WHERE tenant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.PropertyName, &rec.FileName, &rec.FileSize, &rec.ArtifactURL,
			&rec.TotalTenants, &rec.AtRiskTenants, &rec.AverageProbability,
			&rec.Result, &rec.ProcessingTimeMs, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
