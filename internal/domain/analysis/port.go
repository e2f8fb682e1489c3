package analysis

import "context"

// ContextGatherer port: optional web-search enrichment phase.
type ContextGatherer interface {
	GatherContext(ctx context.Context, req AnalysisRequest) (*MacroeconomicContext, error)
}

// DocumentUploader port: pushes the raw document to the model provider and
// returns an opaque file id. The id has no lifetime guarantee beyond the
// current request.
type DocumentUploader interface {
	UploadDocument(ctx context.Context, doc DocumentFile) (string, error)
}

// RiskModel port: one structured-output completion referencing the uploaded
// file. The adapter is responsible for schema validation of the payload.
type RiskModel interface {
	AnalyzeDocument(ctx context.Context, req AnalysisRequest, macro *MacroeconomicContext, fileID string) (*AnalysisResponse, error)
}
