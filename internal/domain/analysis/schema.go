package analysis

import "fmt"

// Validate checks a decoded model payload against the response schema:
// enum membership and 0-100 ranges for probabilities and percentages.
// Anything out of shape is a schema violation the caller surfaces as a
// parse failure.
func (r *AnalysisResponse) Validate() error {
	for i := range r.TenantAssessments {
		a := &r.TenantAssessments[i]
		if !a.RiskSeverity.Valid() {
			return fmt.Errorf("assessment %d: invalid riskSeverity %q", i, a.RiskSeverity)
		}
		if a.DefaultProbability < 0 || a.DefaultProbability > 100 {
			return fmt.Errorf("assessment %d: defaultProbability %.2f out of range 0-100", i, a.DefaultProbability)
		}
		if a.ConfidenceLevel < 0 || a.ConfidenceLevel > 100 {
			return fmt.Errorf("assessment %d: confidenceLevel %.2f out of range 0-100", i, a.ConfidenceLevel)
		}
		if !a.FinancialIndicators.PaymentPattern.Valid() {
			return fmt.Errorf("assessment %d: invalid paymentPattern %q", i, a.FinancialIndicators.PaymentPattern)
		}
		for j, step := range a.NextSteps {
			if !step.Action.Valid() {
				return fmt.Errorf("assessment %d next step %d: invalid action %q", i, j, step.Action)
			}
			if !step.Priority.Valid() {
				return fmt.Errorf("assessment %d next step %d: invalid priority %q", i, j, step.Priority)
			}
		}
	}
	for i, ra := range r.RecommendedActions {
		if !ra.Priority.Valid() {
			return fmt.Errorf("recommended action %d: invalid priority %q", i, ra.Priority)
		}
	}
	if r.DataQuality.Completeness < 0 || r.DataQuality.Completeness > 100 {
		return fmt.Errorf("dataQuality.completeness %.2f out of range 0-100", r.DataQuality.Completeness)
	}
	if r.DataQuality.Confidence < 0 || r.DataQuality.Confidence > 100 {
		return fmt.Errorf("dataQuality.confidence %.2f out of range 0-100", r.DataQuality.Confidence)
	}
	return nil
}
