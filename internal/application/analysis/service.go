package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/propwatch/rentroll-risk/internal/application"
	domain "github.com/propwatch/rentroll-risk/internal/domain/analysis"
	"github.com/propwatch/rentroll-risk/internal/domain/records"
)

// Service runs the tenant default analysis pipeline. Safe for concurrent
// use: every field is read-only configuration, all working state is
// request-scoped.
type Service struct {
	Gatherer domain.ContextGatherer
	Uploader domain.DocumentUploader
	Model    domain.RiskModel
	Records  records.Repository   // optional history store
	Archive  records.ArchiveStore // optional document archive
	Clock    application.Clock
}

// SupportedDocumentType names the document kind this analyzer accepts.
func (s *Service) SupportedDocumentType() string { return "rent_roll" }

// AnalyzeRentRoll runs the pipeline end to end:
// validate -> gather context (optional) -> upload -> analyze -> merge.
// Every stage gates the next; any failure aborts the whole request and is
// folded into the terminal AnalysisError. There is no partial result.
func (s *Service) AnalyzeRentRoll(ctx context.Context, tenant string, doc domain.DocumentFile, req domain.AnalysisRequest) (*domain.AnalysisResponse, error) {
	start := s.Clock.Now()
	log.Printf("analysis started: tenant=%s file=%s size=%d websearch=%v",
		tenant, doc.Name, doc.Size, req.IncludeWebSearch)

	if err := ValidateDocument(doc); err != nil {
		return nil, s.fail(tenant, doc.Name, err)
	}

	// Phase 1: macroeconomic enrichment, only when requested. All-or-nothing:
	// a failed search aborts the request rather than degrading to an
	// unenriched analysis.
	var macro *domain.MacroeconomicContext
	if req.IncludeWebSearch {
		m, err := s.Gatherer.GatherContext(ctx, req)
		if err != nil {
			return nil, s.fail(tenant, doc.Name, &domain.ContextGatherError{Err: err})
		}
		macro = m
		log.Printf("web search completed: tenant=%s file=%s", tenant, doc.Name)
	}

	// Phase 2: ship the document to the provider and run the structured
	// completion against it.
	fileID, err := s.Uploader.UploadDocument(ctx, doc)
	if err != nil {
		return nil, s.fail(tenant, doc.Name, err)
	}
	log.Printf("document uploaded: tenant=%s file=%s file_id=%s", tenant, doc.Name, fileID)

	resp, err := s.Model.AnalyzeDocument(ctx, req, macro, fileID)
	if err != nil {
		return nil, s.fail(tenant, doc.Name, err)
	}

	// The model echoes property info back; the request values always win.
	resp.Success = true
	resp.Error = ""
	resp.PropertyInfo.PropertyName = req.PropertyName
	resp.PropertyInfo.PropertyAddress = req.PropertyAddress
	resp.PropertyInfo.AnalysisDate = req.AnalysisDate
	resp.NormalizeSummary()
	resp.ProcessingTimeMs = s.Clock.Now().Sub(start).Milliseconds()

	log.Printf("analysis completed: tenant=%s file=%s tenants=%d at_risk=%d duration_ms=%d",
		tenant, doc.Name, resp.OverallRiskSummary.TotalTenants,
		resp.OverallRiskSummary.TotalAtRiskTenants, resp.ProcessingTimeMs)

	s.persist(ctx, tenant, doc, resp)
	return resp, nil
}

func (s *Service) fail(tenant, file string, err error) error {
	log.Printf("analysis failed: tenant=%s file=%s err=%v", tenant, file, err)
	return &domain.AnalysisError{Err: err}
}

// persist archives the document and saves a history record. Best-effort:
// the analysis already succeeded, so storage trouble is logged, not returned.
func (s *Service) persist(ctx context.Context, tenant string, doc domain.DocumentFile, resp *domain.AnalysisResponse) {
	if s.Records == nil && s.Archive == nil {
		return
	}
	id := uuid.New().String()

	var artifactURL string
	if s.Archive != nil {
		key := fmt.Sprintf("%s/%s/%s", tenant, id, doc.Name)
		url, err := s.Archive.UploadBytes(ctx, key, doc.Data, doc.MimeType)
		if err != nil {
			log.Printf("document archive failed: tenant=%s file=%s err=%v", tenant, doc.Name, err)
		} else {
			artifactURL = url
		}
	}

	if s.Records == nil {
		return
	}
	result, err := json.Marshal(resp)
	if err != nil {
		log.Printf("history marshal failed: tenant=%s err=%v", tenant, err)
		return
	}
	rec := &records.Record{
		ID:                 records.RecordID(id),
		TenantID:           tenant,
		PropertyName:       resp.PropertyInfo.PropertyName,
		FileName:           doc.Name,
		FileSize:           doc.Size,
		ArtifactURL:        artifactURL,
		TotalTenants:       resp.OverallRiskSummary.TotalTenants,
		AtRiskTenants:      resp.OverallRiskSummary.TotalAtRiskTenants,
		AverageProbability: resp.OverallRiskSummary.AverageDefaultProbability,
		Result:             string(result),
		ProcessingTimeMs:   resp.ProcessingTimeMs,
		CreatedAt:          s.Clock.Now(),
	}
	if err := s.Records.Save(ctx, rec); err != nil {
		log.Printf("history save failed: tenant=%s id=%s err=%v", tenant, id, err)
	}
}
