package analysis

import (
	"time"
)

// RiskSeverity enum
type RiskSeverity string

const (
	SeverityLow      RiskSeverity = "low"
	SeverityMedium   RiskSeverity = "medium"
	SeverityHigh     RiskSeverity = "high"
	SeverityCritical RiskSeverity = "critical"
)

func (s RiskSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// PaymentPattern enum
type PaymentPattern string

const (
	PaymentOnTime           PaymentPattern = "on_time"
	PaymentOccasionallyLate PaymentPattern = "occasionally_late"
	PaymentFrequentlyLate   PaymentPattern = "frequently_late"
	PaymentConsistentlyLate PaymentPattern = "consistently_late"
	PaymentInArrears        PaymentPattern = "in_arrears"
	PaymentNone             PaymentPattern = "no_payment"
)

func (p PaymentPattern) Valid() bool {
	switch p {
	case PaymentOnTime, PaymentOccasionallyLate, PaymentFrequentlyLate,
		PaymentConsistentlyLate, PaymentInArrears, PaymentNone:
		return true
	}
	return false
}

// NextActionType enum
type NextActionType string

const (
	ActionMonitor           NextActionType = "monitor"
	ActionContactTenant     NextActionType = "contact_tenant"
	ActionPaymentPlan       NextActionType = "payment_plan"
	ActionFormalNotice      NextActionType = "formal_notice"
	ActionLegalConsultation NextActionType = "legal_consultation"
	ActionEvictionProcess   NextActionType = "eviction_process"
	ActionUnitPreparation   NextActionType = "unit_preparation"
)

func (a NextActionType) Valid() bool {
	switch a {
	case ActionMonitor, ActionContactTenant, ActionPaymentPlan, ActionFormalNotice,
		ActionLegalConsultation, ActionEvictionProcess, ActionUnitPreparation:
		return true
	}
	return false
}

// ActionPriority enum
type ActionPriority string

const (
	PriorityImmediate ActionPriority = "immediate"
	PriorityUrgent    ActionPriority = "urgent"
	PriorityNormal    ActionPriority = "normal"
	PriorityLow       ActionPriority = "low"
)

func (p ActionPriority) Valid() bool {
	switch p {
	case PriorityImmediate, PriorityUrgent, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// MaxFileSize is the upload ceiling enforced before any processing starts.
const MaxFileSize = 25 * 1024 * 1024 // 25MB

// DocumentFile wraps the raw rent-roll bytes plus upload metadata.
// Request-scoped: consumed once by the orchestrator, then discarded.
type DocumentFile struct {
	Name       string
	MimeType   string
	Size       int64
	UploadedAt time.Time
	Data       []byte
}

// SearchLocation narrows the macroeconomic search to a market area.
type SearchLocation struct {
	City      string   `json:"city"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zipCode,omitempty"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// AnalysisRequest carries the request metadata for one analysis run.
// Fully built before orchestration begins and never mutated afterwards.
type AnalysisRequest struct {
	PropertyName     string          `json:"propertyName"`
	PropertyAddress  string          `json:"propertyAddress"`
	AnalysisDate     string          `json:"analysisDate"`
	NumberOfUnits    int             `json:"numberOfUnits,omitempty"`
	IncludeWebSearch bool            `json:"includeWebSearch"`
	SearchLocation   *SearchLocation `json:"searchLocation,omitempty"`
}

// MacroeconomicContext is the structured result of the web-search phase.
// Numeric fields are pointers: the model reports null when no figure was found.
type MacroeconomicContext struct {
	LocalUnemploymentRate *float64 `json:"localUnemploymentRate"`
	CityUnemploymentRate  *float64 `json:"cityUnemploymentRate"`
	StateUnemploymentRate *float64 `json:"stateUnemploymentRate"`
	MedianIncomeArea      *float64 `json:"medianIncomeArea"`
	RentGrowthRate        *float64 `json:"rentGrowthRate"`
	VacancyRate           *float64 `json:"vacancyRate"`
	MajorEmployerLayoffs  []string `json:"majorEmployerLayoffs"`
	EconomicIndicators    []string `json:"economicIndicators"`
	SeasonalFactors       []string `json:"seasonalFactors"`
	IndustryTrends        []string `json:"industryTrends"`
}

// TenantInfo holds the facts extracted from the rent roll for one tenant.
type TenantInfo struct {
	TenantName      string   `json:"tenantName"`
	UnitNumber      string   `json:"unitNumber"`
	LeaseStartDate  string   `json:"leaseStartDate,omitempty"`
	LeaseEndDate    string   `json:"leaseEndDate,omitempty"`
	MonthlyRent     *float64 `json:"monthlyRent"`
	SecurityDeposit *float64 `json:"securityDeposit"`
	MoveInDate      string   `json:"moveInDate,omitempty"`
}

// FinancialIndicators are the payment signals behind an assessment.
type FinancialIndicators struct {
	CurrentArrears          float64        `json:"currentArrears"`
	TotalOutstandingBalance *float64       `json:"totalOutstandingBalance"`
	PaymentPattern          PaymentPattern `json:"paymentPattern"`
	LastPaymentDate         string         `json:"lastPaymentDate,omitempty"`
	LastPaymentAmount       *float64       `json:"lastPaymentAmount"`
	AverageMonthlyPayment   *float64       `json:"averageMonthlyPayment"`
	PaymentFrequency        string         `json:"paymentFrequency,omitempty"`
	RentToIncomeRatio       *float64       `json:"rentToIncomeRatio"`
	CreditScore             *float64       `json:"creditScore"`
}

// NextStep is one recommended action for a single tenant.
type NextStep struct {
	Action            NextActionType `json:"action"`
	Description       string         `json:"description"`
	Priority          ActionPriority `json:"priority"`
	Timeline          string         `json:"timeline"`
	EstimatedCost     *float64       `json:"estimatedCost"`
	LegalRequirements []string       `json:"legalRequirements"`
}

// TenantRiskAssessment is the model's verdict for one tenant.
type TenantRiskAssessment struct {
	TenantInfo                TenantInfo           `json:"tenantInfo"`
	RiskSeverity              RiskSeverity         `json:"riskSeverity"`
	DefaultProbability        float64              `json:"defaultProbability"`
	ProjectedDefaultTimeframe string               `json:"projectedDefaultTimeframe,omitempty"`
	FinancialIndicators       FinancialIndicators  `json:"financialIndicators"`
	MacroeconomicContext      MacroeconomicContext `json:"macroeconomicContext"`
	RiskFactors               []string             `json:"riskFactors"`
	ProtectiveFactors         []string             `json:"protectiveFactors"`
	NextSteps                 []NextStep           `json:"nextSteps"`
	Comments                  string               `json:"comments"`
	ConfidenceLevel           float64              `json:"confidenceLevel"`
	LastUpdated               string               `json:"lastUpdated"`
}

// PropertyInfo echoes the property identity on the response. The orchestrator
// always overwrites name/address/date with the original request values.
type PropertyInfo struct {
	PropertyName    string `json:"propertyName"`
	PropertyAddress string `json:"propertyAddress"`
	TotalUnits      *int   `json:"totalUnits"`
	AnalysisDate    string `json:"analysisDate"`
}

// OverallRiskSummary aggregates the per-tenant assessments.
type OverallRiskSummary struct {
	TotalTenants              int      `json:"totalTenants"`
	LowRiskCount              int      `json:"lowRiskCount"`
	MediumRiskCount           int      `json:"mediumRiskCount"`
	HighRiskCount             int      `json:"highRiskCount"`
	CriticalRiskCount         int      `json:"criticalRiskCount"`
	TotalAtRiskTenants        int      `json:"totalAtRiskTenants"`
	AverageDefaultProbability float64  `json:"averageDefaultProbability"`
	ProjectedMonthlyLoss      *float64 `json:"projectedMonthlyLoss"`
}

// RecommendedAction is a property-level action item.
type RecommendedAction struct {
	Priority        ActionPriority `json:"priority"`
	Action          string         `json:"action"`
	AffectedTenants []string       `json:"affectedTenants"`
	EstimatedCost   *float64       `json:"estimatedCost"`
	Timeline        string         `json:"timeline"`
}

// DataQuality describes how reliable the extraction was.
type DataQuality struct {
	Completeness          float64 `json:"completeness"`
	Confidence            float64 `json:"confidence"`
	DataSourceReliability string  `json:"dataSourceReliability"`
	LastWebSearchUpdate   string  `json:"lastWebSearchUpdate,omitempty"`
}

// AnalysisResponse is the full report returned to the dashboard.
type AnalysisResponse struct {
	Success              bool                   `json:"success"`
	PropertyInfo         PropertyInfo           `json:"propertyInfo"`
	TenantAssessments    []TenantRiskAssessment `json:"tenantAssessments"`
	OverallRiskSummary   OverallRiskSummary     `json:"overallRiskSummary"`
	MacroeconomicSummary MacroeconomicContext   `json:"macroeconomicSummary"`
	RecommendedActions   []RecommendedAction    `json:"recommendedActions"`
	DataQuality          DataQuality            `json:"dataQuality"`
	ProcessingTimeMs     int64                  `json:"processingTimeMs"`
	Error                string                 `json:"error,omitempty"`
}

// NormalizeSummary recomputes the overall risk summary from the assessment
// list. The model's own counts are never trusted: totalTenants must equal
// the assessment count and totalAtRiskTenants covers high + critical.
// ProjectedMonthlyLoss is kept as reported since it needs rent figures the
// summary does not carry.
func (r *AnalysisResponse) NormalizeSummary() {
	sum := OverallRiskSummary{
		TotalTenants:         len(r.TenantAssessments),
		ProjectedMonthlyLoss: r.OverallRiskSummary.ProjectedMonthlyLoss,
	}
	var probTotal float64
	for i := range r.TenantAssessments {
		a := &r.TenantAssessments[i]
		probTotal += a.DefaultProbability
		switch a.RiskSeverity {
		case SeverityLow:
			sum.LowRiskCount++
		case SeverityMedium:
			sum.MediumRiskCount++
		case SeverityHigh:
			sum.HighRiskCount++
		case SeverityCritical:
			sum.CriticalRiskCount++
		}
	}
	sum.TotalAtRiskTenants = sum.HighRiskCount + sum.CriticalRiskCount
	if sum.TotalTenants > 0 {
		sum.AverageDefaultProbability = probTotal / float64(sum.TotalTenants)
	}
	r.OverallRiskSummary = sum
}
