package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwatch/rentroll-risk/internal/application"
	appanalysis "github.com/propwatch/rentroll-risk/internal/application/analysis"
	appprofiles "github.com/propwatch/rentroll-risk/internal/application/profiles"
	apprecords "github.com/propwatch/rentroll-risk/internal/application/records"
	domain "github.com/propwatch/rentroll-risk/internal/domain/analysis"
	profdomain "github.com/propwatch/rentroll-risk/internal/domain/profiles"
	recdomain "github.com/propwatch/rentroll-risk/internal/domain/records"
)

type stubGatherer struct {
	macro  *domain.MacroeconomicContext
	err    error
	called bool
}

func (s *stubGatherer) GatherContext(ctx context.Context, req domain.AnalysisRequest) (*domain.MacroeconomicContext, error) {
	s.called = true
	return s.macro, s.err
}

type stubUploader struct {
	fileID string
	err    error
	called bool
}

func (s *stubUploader) UploadDocument(ctx context.Context, doc domain.DocumentFile) (string, error) {
	s.called = true
	return s.fileID, s.err
}

type stubModel struct {
	resp   *domain.AnalysisResponse
	err    error
	called bool
	gotReq domain.AnalysisRequest
}

func (s *stubModel) AnalyzeDocument(ctx context.Context, req domain.AnalysisRequest, macro *domain.MacroeconomicContext, fileID string) (*domain.AnalysisResponse, error) {
	s.called = true
	s.gotReq = req
	if s.resp == nil {
		return nil, s.err
	}
	cp := *s.resp
	return &cp, s.err
}

type stubRecordRepo struct {
	records map[recdomain.RecordID]*recdomain.Record
}

func (s *stubRecordRepo) Save(ctx context.Context, r *recdomain.Record) error {
	if s.records == nil {
		s.records = map[recdomain.RecordID]*recdomain.Record{}
	}
	s.records[r.ID] = r
	return nil
}

func (s *stubRecordRepo) Get(ctx context.Context, tenant string, id recdomain.RecordID) (*recdomain.Record, error) {
	r, ok := s.records[id]
	if !ok || r.TenantID != tenant {
		return nil, sql.ErrNoRows
	}
	return r, nil
}

func (s *stubRecordRepo) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*recdomain.Record, error) {
	var out []*recdomain.Record
	for _, r := range s.records {
		if r.TenantID == tenant {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubProfileRepo struct {
	profile *profdomain.Profile
	usage   int
}

func (s *stubProfileRepo) Get(ctx context.Context, tenant string) (*profdomain.Profile, error) {
	if s.profile == nil {
		return nil, profdomain.ErrProfileNotFound
	}
	return s.profile, nil
}

func (s *stubProfileRepo) IncrementUsage(ctx context.Context, tenant string) error {
	s.usage++
	return nil
}

func stubResponse() *domain.AnalysisResponse {
	return &domain.AnalysisResponse{
		PropertyInfo: domain.PropertyInfo{PropertyName: "Echoed"},
		TenantAssessments: []domain.TenantRiskAssessment{
			{RiskSeverity: domain.SeverityLow, DefaultProbability: 10},
			{RiskSeverity: domain.SeverityHigh, DefaultProbability: 80},
		},
	}
}

type fixture struct {
	handler  http.Handler
	gatherer *stubGatherer
	uploader *stubUploader
	model    *stubModel
	records  *stubRecordRepo
	profiles *stubProfileRepo
}

func newFixture(withProfiles bool) *fixture {
	f := &fixture{
		gatherer: &stubGatherer{},
		uploader: &stubUploader{fileID: "file-abc"},
		model:    &stubModel{resp: stubResponse()},
		records:  &stubRecordRepo{},
	}
	svc := &appanalysis.Service{
		Gatherer: f.gatherer,
		Uploader: f.uploader,
		Model:    f.model,
		Records:  f.records,
		Clock:    application.SystemClock{},
	}
	var profilesSvc *appprofiles.Service
	if withProfiles {
		f.profiles = &stubProfileRepo{}
		profilesSvc = appprofiles.NewService(f.profiles)
	}
	f.handler = NewRouter(svc, apprecords.NewService(f.records), profilesSvc)
	return f
}

func multipartBody(t *testing.T, fileName, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="rentRoll"; filename="%s"`, fileName)}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postAnalysis(t *testing.T, h http.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/analysis/tenant-default", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint_SmallCSVNoSearch(t *testing.T) {
	f := newFixture(false)

	csv := bytes.Repeat([]byte("101,Jane Doe,1500,current\n"), 400) // ~10KB
	body, ct := multipartBody(t, "rentroll.csv", "text/csv", csv, map[string]string{
		"propertyName":     "Sunset Apartments",
		"propertyAddress":  "500 Sunset Blvd",
		"includeWebSearch": "false",
	})

	rec := postAnalysis(t, f.handler, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "Sunset Apartments", resp.PropertyInfo.PropertyName)
	assert.Equal(t, 2, resp.OverallRiskSummary.TotalTenants)
	assert.Equal(t, 1, resp.OverallRiskSummary.TotalAtRiskTenants)
	assert.GreaterOrEqual(t, resp.ProcessingTimeMs, int64(0))

	assert.False(t, f.gatherer.called, "no web search requested")
	assert.True(t, f.uploader.called)
	assert.True(t, f.model.called)
}

func TestAnalyzeEndpoint_OversizedFile(t *testing.T) {
	f := newFixture(false)

	big := make([]byte, domain.MaxFileSize+1)
	body, ct := multipartBody(t, "rentroll.csv", "text/csv", big, nil)

	rec := postAnalysis(t, f.handler, body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "File size too large. Maximum allowed size is 25MB.")

	assert.False(t, f.uploader.called, "oversized file must never reach the provider")
	assert.False(t, f.model.called)
}

func TestAnalyzeEndpoint_UnsupportedType(t *testing.T) {
	f := newFixture(false)

	body, ct := multipartBody(t, "report.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		[]byte("not a rent roll"), nil)

	rec := postAnalysis(t, f.handler, body, ct)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "unsupported file type")

	assert.False(t, f.gatherer.called)
	assert.False(t, f.uploader.called, "rejected file must never reach the provider")
	assert.False(t, f.model.called)
}

func TestAnalyzeEndpoint_MissingFile(t *testing.T) {
	f := newFixture(false)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("propertyName", "Sunset"))
	require.NoError(t, w.Close())

	rec := postAnalysis(t, f.handler, &buf, w.FormDataContentType())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no rent roll file provided")
}

func TestAnalyzeEndpoint_WebSearchFailureAborts(t *testing.T) {
	f := newFixture(false)
	f.gatherer.err = errors.New("search unavailable")

	body, ct := multipartBody(t, "rentroll.csv", "text/csv", []byte("101,Jane\n"), map[string]string{
		"includeWebSearch": "true",
		"city":             "Austin",
		"state":            "TX",
	})

	rec := postAnalysis(t, f.handler, body, ct)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "Web search failed: search unavailable. Analysis aborted as web search was required.")
	assert.NotNil(t, resp["processingTimeMs"])

	assert.True(t, f.gatherer.called)
	assert.False(t, f.uploader.called, "no upload after a failed web search")
	assert.False(t, f.model.called)
}

func TestAnalyzeEndpoint_SearchLocationFromForm(t *testing.T) {
	f := newFixture(false)

	body, ct := multipartBody(t, "rentroll.csv", "text/csv", []byte("101,Jane\n"), map[string]string{
		"includeWebSearch": "true",
		"city":             "Austin",
		"state":            "TX",
		"zipCode":          "78701",
		"latitude":         "30.2672",
		"longitude":        "-97.7431",
		"numberOfUnits":    "24",
	})

	rec := postAnalysis(t, f.handler, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)

	got := f.model.gotReq
	require.NotNil(t, got.SearchLocation)
	assert.Equal(t, "Austin", got.SearchLocation.City)
	assert.Equal(t, "TX", got.SearchLocation.State)
	assert.Equal(t, "78701", got.SearchLocation.ZipCode)
	assert.Equal(t, "US", got.SearchLocation.Country)
	require.NotNil(t, got.SearchLocation.Latitude)
	assert.InDelta(t, 30.2672, *got.SearchLocation.Latitude, 0.0001)
	assert.Equal(t, 24, got.NumberOfUnits)
	assert.True(t, got.IncludeWebSearch)
	assert.True(t, f.gatherer.called)
}

func TestAnalyzeEndpoint_LocationOmittedWithoutCityAndState(t *testing.T) {
	f := newFixture(false)

	body, ct := multipartBody(t, "rentroll.csv", "text/csv", []byte("101,Jane\n"), map[string]string{
		"includeWebSearch": "true",
		"city":             "Austin",
	})

	rec := postAnalysis(t, f.handler, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, f.model.gotReq.SearchLocation)
}

func TestAnalyzeInfoEndpoint(t *testing.T) {
	f := newFixture(false)

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/analysis/tenant-default", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "Tenant Default Analysis API", info["message"])
	assert.Equal(t, "25MB", info["maxFileSize"])
	assert.Contains(t, info["supportedFileTypes"], ".csv")
	assert.Contains(t, info["supportedFileTypes"], ".numbers")
}

func TestRecordsEndpoints(t *testing.T) {
	f := newFixture(false)
	f.records.Save(context.Background(), &recdomain.Record{
		ID:        "11111111-1111-1111-1111-111111111111",
		TenantID:  "acme",
		FileName:  "rentroll.csv",
		CreatedAt: time.Now(),
	})

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var list []recdomain.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "rentroll.csv", list[0].FileName)
	})

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/11111111-1111-1111-1111-111111111111", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got recdomain.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "acme", got.TenantID)
	})

	t.Run("get unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/unknown", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("other tenant cannot read", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/other/analyses/11111111-1111-1111-1111-111111111111", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSubscriptionGate(t *testing.T) {
	smallCSV := []byte("101,Jane Doe,1500\n")

	t.Run("no profile", func(t *testing.T) {
		f := newFixture(true)
		body, ct := multipartBody(t, "rentroll.csv", "text/csv", smallCSV, nil)
		rec := postAnalysis(t, f.handler, body, ct)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, f.model.called)
	})

	t.Run("inactive subscription", func(t *testing.T) {
		f := newFixture(true)
		f.profiles.profile = &profdomain.Profile{TenantID: "acme", IsActive: false}
		body, ct := multipartBody(t, "rentroll.csv", "text/csv", smallCSV, nil)
		rec := postAnalysis(t, f.handler, body, ct)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("trial still open", func(t *testing.T) {
		f := newFixture(true)
		trial := time.Now().Add(24 * time.Hour)
		f.profiles.profile = &profdomain.Profile{TenantID: "acme", IsActive: false, TrialEndsAt: &trial}
		body, ct := multipartBody(t, "rentroll.csv", "text/csv", smallCSV, nil)
		rec := postAnalysis(t, f.handler, body, ct)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, f.profiles.usage, "successful run consumes quota")
	})

	t.Run("quota exhausted", func(t *testing.T) {
		f := newFixture(true)
		f.profiles.profile = &profdomain.Profile{TenantID: "acme", IsActive: true, AnalysisQuota: 5, AnalysesUsed: 5}
		body, ct := multipartBody(t, "rentroll.csv", "text/csv", smallCSV, nil)
		rec := postAnalysis(t, f.handler, body, ct)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, 0, f.profiles.usage)
	})

	t.Run("failed analysis does not consume quota", func(t *testing.T) {
		f := newFixture(true)
		f.profiles.profile = &profdomain.Profile{TenantID: "acme", IsActive: true}
		f.model.resp = nil
		f.model.err = errors.New("provider down")
		body, ct := multipartBody(t, "rentroll.csv", "text/csv", smallCSV, nil)
		rec := postAnalysis(t, f.handler, body, ct)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, 0, f.profiles.usage)
	})
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
