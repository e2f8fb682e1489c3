package prompt

import (
	"fmt"
	"strings"

	domain "github.com/propwatch/rentroll-risk/internal/domain/analysis"
)

// GetSearchSystemPrompt frames the web-search phase.
func GetSearchSystemPrompt() string {
	return `You are a real estate market analyst. Search for and analyze current economic data that could affect tenant default risk. Provide structured, accurate data based on your web search results. You must respond with one valid JSON object only (no markdown, no commentary) with exactly these fields:
{
  "localUnemploymentRate": <number|null>,
  "cityUnemploymentRate": <number|null>,
  "stateUnemploymentRate": <number|null>,
  "medianIncomeArea": <number|null>,
  "rentGrowthRate": <number|null>,
  "vacancyRate": <number|null>,
  "majorEmployerLayoffs": ["<string>"],
  "economicIndicators": ["<string>"],
  "seasonalFactors": ["<string>"],
  "industryTrends": ["<string>"]
}
Use null for figures you cannot confirm and empty arrays when nothing was found.`
}

// SearchLocationString renders the search location, falling back to a
// generic phrase when the request carried none.
func SearchLocationString(req domain.AnalysisRequest) string {
	if req.SearchLocation != nil {
		return fmt.Sprintf("%s, %s", req.SearchLocation.City, req.SearchLocation.State)
	}
	return "the property location"
}

// BuildSearchQuery enumerates the seven categories of economic data the
// enrichment phase must cover.
func BuildSearchQuery(location string) string {
	return fmt.Sprintf(`Search for current economic conditions and tenant default risk factors in %[1]s:

1. Local, city, and state unemployment rates for %[1]s
2. Median income data for %[1]s area
3. Rent growth rates and vacancy rates in %[1]s
4. Recent major employer layoffs or closures in %[1]s
5. Economic indicators affecting residential tenants in %[1]s
6. Seasonal employment patterns affecting %[1]s
7. Industry trends impacting local employment

Focus on data from the last 3 months that could impact tenant ability to pay rent.`, location)
}

// GetSystemPrompt provides strict directions and the response schema for the
// rent-roll analysis completion.
func GetSystemPrompt() string {
	return `You are an expert real estate risk analyst specializing in tenant default prediction. You analyze rent roll documents and predict which tenants are most likely to default on rent payments.

Your task:
1. Carefully examine the rent roll document (PDF, Excel, CSV, or Numbers format)
2. Extract tenant information, payment history, and financial data
3. Assess default risk for each tenant considering payment history patterns, current arrears, lease terms, and the economic conditions provided in the context
4. Generate all recommended actions dynamically based on the specific risks found; do not use generic recommendations

Be thorough and conservative in your assessments. Base everything on actual data patterns and the economic context provided.

You must produce one valid JSON object only (no markdown, no commentary, no code fences) following this schema:
{
  "success": <boolean>,
  "propertyInfo": {"propertyName": "<string>", "propertyAddress": "<string>", "totalUnits": <number|null>, "analysisDate": "<ISO 8601 datetime>"},
  "tenantAssessments": [
    {
      "tenantInfo": {"tenantName": "<string>", "unitNumber": "<string>", "leaseStartDate": "<string|null>", "leaseEndDate": "<string|null>", "monthlyRent": <number|null>, "securityDeposit": <number|null>, "moveInDate": "<string|null>"},
      "riskSeverity": "<low|medium|high|critical>",
      "defaultProbability": <number 0-100>,
      "projectedDefaultTimeframe": "<string|null>",
      "financialIndicators": {"currentArrears": <number>, "totalOutstandingBalance": <number|null>, "paymentPattern": "<on_time|occasionally_late|frequently_late|consistently_late|in_arrears|no_payment>", "lastPaymentDate": "<string|null>", "lastPaymentAmount": <number|null>, "averageMonthlyPayment": <number|null>, "paymentFrequency": "<string|null>", "rentToIncomeRatio": <number|null>, "creditScore": <number|null>},
      "macroeconomicContext": {"localUnemploymentRate": <number|null>, "cityUnemploymentRate": <number|null>, "stateUnemploymentRate": <number|null>, "medianIncomeArea": <number|null>, "rentGrowthRate": <number|null>, "vacancyRate": <number|null>, "majorEmployerLayoffs": ["<string>"], "economicIndicators": ["<string>"], "seasonalFactors": ["<string>"], "industryTrends": ["<string>"]},
      "riskFactors": ["<string>"],
      "protectiveFactors": ["<string>"],
      "nextSteps": [{"action": "<monitor|contact_tenant|payment_plan|formal_notice|legal_consultation|eviction_process|unit_preparation>", "description": "<string>", "priority": "<immediate|urgent|normal|low>", "timeline": "<string>", "estimatedCost": <number|null>, "legalRequirements": ["<string>"]}],
      "comments": "<string>",
      "confidenceLevel": <number 0-100>,
      "lastUpdated": "<ISO 8601 datetime>"
    }
  ],
  "overallRiskSummary": {"totalTenants": <number>, "lowRiskCount": <number>, "mediumRiskCount": <number>, "highRiskCount": <number>, "criticalRiskCount": <number>, "totalAtRiskTenants": <number>, "averageDefaultProbability": <number>, "projectedMonthlyLoss": <number|null>},
  "macroeconomicSummary": <same shape as macroeconomicContext>,
  "recommendedActions": [{"priority": "<immediate|urgent|normal|low>", "action": "<string>", "affectedTenants": ["<string>"], "estimatedCost": <number|null>, "timeline": "<string>"}],
  "dataQuality": {"completeness": <number 0-100>, "confidence": <number 0-100>, "dataSourceReliability": "<string>", "lastWebSearchUpdate": "<ISO 8601 datetime|null>"},
  "processingTimeMs": <number>,
  "error": null
}`
}

// BuildAnalysisPrompt interpolates the property metadata and, when present,
// every macroeconomic field into the user message. Null figures fall back to
// "Unknown" and empty lists to "None reported" style phrases so the model
// never sees holes in the context block.
func BuildAnalysisPrompt(req domain.AnalysisRequest, macro *domain.MacroeconomicContext) string {
	var b strings.Builder

	b.WriteString("Analyze this rent roll document to identify tenants at risk of defaulting on rent payments in the next 1-3 months.\n\n")
	b.WriteString("PROPERTY INFORMATION:\n")
	fmt.Fprintf(&b, "- Property Name: %s\n", orNotSpecified(req.PropertyName))
	fmt.Fprintf(&b, "- Property Address: %s\n", orNotSpecified(req.PropertyAddress))
	fmt.Fprintf(&b, "- Analysis Date: %s\n", req.AnalysisDate)
	if req.NumberOfUnits > 0 {
		fmt.Fprintf(&b, "- Number of Units: %d\n", req.NumberOfUnits)
	}

	if macro != nil {
		b.WriteString("\nMACROECONOMIC CONTEXT:\n")
		fmt.Fprintf(&b, "- Local Unemployment Rate: %s%%\n", rate(macro.LocalUnemploymentRate))
		fmt.Fprintf(&b, "- City Unemployment Rate: %s%%\n", rate(macro.CityUnemploymentRate))
		fmt.Fprintf(&b, "- State Unemployment Rate: %s%%\n", rate(macro.StateUnemploymentRate))
		fmt.Fprintf(&b, "- Median Income Area: $%s\n", rate(macro.MedianIncomeArea))
		fmt.Fprintf(&b, "- Rent Growth Rate: %s%%\n", rate(macro.RentGrowthRate))
		fmt.Fprintf(&b, "- Vacancy Rate: %s%%\n", rate(macro.VacancyRate))
		fmt.Fprintf(&b, "- Major Employer Layoffs: %s\n", list(macro.MajorEmployerLayoffs, "None reported"))
		fmt.Fprintf(&b, "- Seasonal Factors: %s\n", list(macro.SeasonalFactors, "None identified"))
		fmt.Fprintf(&b, "- Economic Indicators: %s\n", list(macro.EconomicIndicators, "No specific indicators available"))
		fmt.Fprintf(&b, "- Industry Trends: %s\n", list(macro.IndustryTrends, "No trends identified"))
	}

	b.WriteString(`
ANALYSIS REQUIREMENTS:
1. Extract all tenant information from the rent roll document
2. Assess each tenant's risk level based on payment history, arrears, and economic factors
3. Calculate default probability percentages (0-100%)
4. Consider the macroeconomic context in your risk assessments
5. Generate specific, actionable recommended actions for property management
6. Provide overall risk summary for the property
7. Include comments explaining your reasoning for each tenant

IMPORTANT:
- Analyze the actual data in the document - don't make assumptions
- Generate specific recommended actions based on the risk levels found
- Be conservative but thorough in risk assessment
- Include priority levels (immediate/urgent/normal/low) for actions
- Provide timelines for each recommended action

Provide a comprehensive analysis following the specified JSON schema.`)

	return b.String()
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

func rate(v *float64) string {
	if v == nil {
		return "Unknown"
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *v), "0"), ".")
}

func list(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "; ")
}
