package mysql

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
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  property_name=VALUES(property_name), artifact_url=VALUES(artifact_url),
  total_tenants=VALUES(total_tenants), at_risk_tenants=VALUES(at_risk_tenants),
  avg_default_probability=VALUES(avg_default_probability),
  result_json=VALUES(result_json), processing_time_ms=VALUES(processing_time_ms);
`
	tenant := stringOrDash(rec.TenantID)
	fileName := stringOrDash(rec.FileName)
	result := rec.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
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
WHERE tenant_id=? AND id=? LIMIT 1;
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
WHERE tenant_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
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
