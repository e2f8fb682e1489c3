package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/propwatch/rentroll-risk/internal/application/analysis"
	appprofiles "github.com/propwatch/rentroll-risk/internal/application/profiles"
	apprecords "github.com/propwatch/rentroll-risk/internal/application/records"
	domain "github.com/propwatch/rentroll-risk/internal/domain/analysis"
	profdomain "github.com/propwatch/rentroll-risk/internal/domain/profiles"
	recdomain "github.com/propwatch/rentroll-risk/internal/domain/records"
	"github.com/propwatch/rentroll-risk/internal/middleware"
)

const apiVersion = "1.0.0"

// multipart parse ceiling; the 25MB document limit is enforced separately
// against the actual part size so the client gets the explicit message.
const maxMultipartMemory = 32 << 20

type Router struct {
	analysisSvc *appanalysis.Service
	recordsSvc  *apprecords.Service
	profilesSvc *appprofiles.Service
}

func NewRouter(analysisSvc *appanalysis.Service, recordsSvc *apprecords.Service, profilesSvc *appprofiles.Service) http.Handler {
	r := &Router{analysisSvc: analysisSvc, recordsSvc: recordsSvc, profilesSvc: profilesSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.LivenessHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.With(middleware.SubscriptionGate(r.profilesSvc)).
			Post("/analysis/tenant-default", r.handleAnalyze)
		rt.Get("/analysis/tenant-default", r.wrap(r.handleAnalyzeInfo))
		rt.Get("/analyses", r.wrap(r.handleListAnalyses))
		rt.Get("/analyses/{id}", r.wrap(r.handleGetAnalysis))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, profdomain.ErrQuotaExhausted):
				http.Error(w, "analysis quota exhausted", http.StatusTooManyRequests)
			case errors.Is(err, profdomain.ErrSubscriptionInactive):
				http.Error(w, "subscription inactive", http.StatusPaymentRequired)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// POST /v1/{tenant}/analysis/tenant-default
// multipart/form-data: rentRoll (file) plus property metadata fields.
// 400 for a missing or oversized file, 200 with the full report, 500 with
// {success:false, error, processingTimeMs} when the pipeline fails.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	tenant := chi.URLParam(req, "tenant")

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := req.FormFile("rentRoll")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": domain.ErrNoFile.Error()})
		return
	}
	defer file.Close()

	// Enforced before any document processing or external call
	if header.Size > domain.MaxFileSize {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "File size too large. Maximum allowed size is 25MB."})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "failed to read rent roll file: " + err.Error()})
		return
	}

	doc := domain.DocumentFile{
		Name:       header.Filename,
		MimeType:   header.Header.Get("Content-Type"),
		Size:       header.Size,
		UploadedAt: time.Now().UTC(),
		Data:       data,
	}
	areq := buildAnalysisRequest(req)

	resp, err := r.analysisSvc.AnalyzeRentRoll(req.Context(), tenant, doc, areq)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success":          false,
			"error":            err.Error(),
			"processingTimeMs": time.Since(start).Milliseconds(),
		})
		return
	}

	if r.profilesSvc != nil {
		r.profilesSvc.Consume(req.Context(), tenant)
	}

	// Route-level timing supersedes the orchestrator's: it also covers form
	// parsing and response shaping.
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	writeJSON(w, http.StatusOK, resp)
}

func buildAnalysisRequest(req *http.Request) domain.AnalysisRequest {
	form := req.FormValue

	areq := domain.AnalysisRequest{
		PropertyName:     middleware.SanitizeString(form("propertyName")),
		PropertyAddress:  middleware.SanitizeString(form("propertyAddress")),
		AnalysisDate:     time.Now().UTC().Format(time.RFC3339),
		IncludeWebSearch: form("includeWebSearch") == "true",
	}
	if units, err := strconv.Atoi(form("numberOfUnits")); err == nil && units > 0 {
		areq.NumberOfUnits = units
	}

	city := middleware.SanitizeString(form("city"))
	state := middleware.SanitizeString(form("state"))
	if city != "" && state != "" {
		loc := &domain.SearchLocation{
			City:    city,
			State:   state,
			ZipCode: middleware.SanitizeString(form("zipCode")),
			Country: "US",
		}
		lat, latErr := strconv.ParseFloat(form("latitude"), 64)
		lon, lonErr := strconv.ParseFloat(form("longitude"), 64)
		if latErr == nil && lonErr == nil && middleware.ValidateCoordinates(lat, lon) == nil {
			loc.Latitude = &lat
			loc.Longitude = &lon
		}
		areq.SearchLocation = loc
	}
	return areq
}

// GET /v1/{tenant}/analysis/tenant-default
// Static capability metadata for the upload form.
func (r *Router) handleAnalyzeInfo(w http.ResponseWriter, req *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":            "Tenant Default Analysis API",
		"supportedMethods":   []string{"POST"},
		"supportedFileTypes": appanalysis.SupportedExtensions(),
		"maxFileSize":        "25MB",
		"version":            apiVersion,
	})
	return nil
}

// GET /v1/{tenant}/analyses?page=&page_size=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	size = middleware.ValidatePageSize(size)

	list, err := r.recordsSvc.Paginate(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	rec, err := r.recordsSvc.Get(req.Context(), tenant, recdomain.RecordID(id))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rec)
	return nil
}
