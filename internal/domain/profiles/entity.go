package profiles

import "time"

// Profile mirrors the account row the billing backend keeps per tenant.
// A tenant may analyze when the subscription is active, or while the trial
// window is open, and while the monthly quota is not used up.
type Profile struct {
	TenantID      string     `json:"tenant_id"`
	Email         string     `json:"email,omitempty"`
	IsActive      bool       `json:"is_active"`
	TrialEndsAt   *time.Time `json:"trial_ends_at,omitempty"`
	AnalysisQuota int        `json:"analysis_quota"` // 0 means unlimited
	AnalysesUsed  int        `json:"analyses_used"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CanAnalyze reports whether the profile is entitled to run an analysis now.
func (p *Profile) CanAnalyze(now time.Time) error {
	if !p.IsActive {
		if p.TrialEndsAt == nil || now.After(*p.TrialEndsAt) {
			return ErrSubscriptionInactive
		}
	}
	if p.AnalysisQuota > 0 && p.AnalysesUsed >= p.AnalysisQuota {
		return ErrQuotaExhausted
	}
	return nil
}
