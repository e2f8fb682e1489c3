package records

import "context"

// Repository port for persisting and querying analysis history
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, tenant string, id RecordID) (*Record, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Record, error)
}

// ArchiveStore port for retaining the original rent-roll document
type ArchiveStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
