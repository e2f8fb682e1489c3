package records

import "time"

// RecordID identifier type
type RecordID string

// Record is a completed analysis kept for the dashboard history view.
// Result holds the full response JSON as returned to the client.
type Record struct {
	ID                 RecordID  `json:"id"`
	TenantID           string    `json:"tenant_id"`
	PropertyName       string    `json:"property_name,omitempty"`
	FileName           string    `json:"file_name"`
	FileSize           int64     `json:"file_size"`
	ArtifactURL        string    `json:"artifact_url,omitempty"`
	TotalTenants       int       `json:"total_tenants"`
	AtRiskTenants      int       `json:"at_risk_tenants"`
	AverageProbability float64   `json:"average_default_probability"`
	Result             string    `json:"result,omitempty"`
	ProcessingTimeMs   int64     `json:"processing_time_ms"`
	CreatedAt          time.Time `json:"created_at"`
}
