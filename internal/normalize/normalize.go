// Package normalize repairs the loosely-typed JSON returned by the AI
// extraction call into the canonical extraction record. The conversion is
// total: every field gets an explicit default, and any panic inside the
// conversion is recovered into a fixed failure placeholder rather than
// propagated. "Service call failed" is the orchestrator's retry problem;
// "service answered but the payload was unusable" is recovered here.
package normalize

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/collabops/brief-cli/internal/model"
)

// DefaultConfidence is assumed when the AI omits a confidence score.
const DefaultConfidence = 85.0

// Extraction converts a parsed AI response object into the canonical record.
// It never returns an error and never panics.
func Extraction(raw map[string]any) (out model.AIExtraction) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("normalize: recovered from malformed extraction payload",
				zap.Any("panic", r),
			)
			out = FailurePlaceholder()
		}
	}()

	out = model.AIExtraction{
		Status:              model.ExtractionCompleted,
		BrandInfo:           brandInfo(obj(raw, "brand_info", "brandInfo")),
		CampaignInfo:        campaignInfo(obj(raw, "campaign_info", "campaignInfo")),
		Deliverables:        deliverables(list(raw, "deliverables")),
		Timeline:            timeline(obj(raw, "timeline")),
		Budget:              budget(obj(raw, "budget")),
		BrandGuidelines:     brandGuidelines(obj(raw, "brand_guidelines", "brandGuidelines")),
		UsageRights:         usageRights(obj(raw, "usage_rights", "usageRights")),
		ContentRequirements: contentRequirements(obj(raw, "content_requirements", "contentRequirements")),
		MissingInfo:         missingInfo(list(raw, "missing_info", "missingInfo")),
	}

	factors := riskFactors(obj(raw, "risk_assessment", "riskAssessment"))
	out.RiskAssessment = model.RiskAssessment{
		OverallRisk: ComputeOverallRisk(factors),
		RiskFactors: factors,
	}

	out.ProcessingMetadata.ConfidenceScore = clampConfidence(raw)
	return out
}

// FailurePlaceholder is the canonical record used when the AI payload was
// structurally unusable. It flags a single critical deliverables gap so the
// brief surfaces for manual review instead of silently looking complete.
func FailurePlaceholder() model.AIExtraction {
	return model.AIExtraction{
		Status: model.ExtractionCompleted,
		MissingInfo: []model.MissingInfoItem{{
			ID:          model.NewQuestionID(),
			Category:    model.CategoryDeliverables,
			Description: "AI processing failed - manual review required",
			Importance:  model.ImportanceCritical,
		}},
		RiskAssessment: model.RiskAssessment{
			OverallRisk: model.RiskHigh,
			RiskFactors: []model.RiskFactor{{
				Type:     "Processing Error",
				Severity: model.RiskHigh,
			}},
		},
		ProcessingMetadata: model.ProcessingMetadata{ConfidenceScore: 0},
	}
}

// ComputeOverallRisk derives the overall level deterministically from the
// factors. High if any factor is high; medium if more than one medium factor
// or more than three factors total; low otherwise.
func ComputeOverallRisk(factors []model.RiskFactor) model.RiskLevel {
	mediums := 0
	for _, f := range factors {
		switch f.Severity {
		case model.RiskHigh:
			return model.RiskHigh
		case model.RiskMedium:
			mediums++
		}
	}
	if mediums > 1 || len(factors) > 3 {
		return model.RiskMedium
	}
	return model.RiskLow
}

// MatchCategory resolves a raw category string against the ten canonical
// tokens: exact match first (case-insensitive), then substring match against
// the token or the token with underscores replaced by spaces. Returns false
// when no token matches; the caller drops the entry.
func MatchCategory(raw string) (model.MissingInfoCategory, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return "", false
	}

	for _, cat := range model.MissingInfoCategories {
		if needle == string(cat) {
			return cat, true
		}
	}
	for _, cat := range model.MissingInfoCategories {
		token := string(cat)
		spaced := strings.ReplaceAll(token, "_", " ")
		if strings.Contains(needle, token) || strings.Contains(needle, spaced) ||
			strings.Contains(token, needle) || strings.Contains(spaced, needle) {
			return cat, true
		}
	}
	return "", false
}

func brandInfo(m map[string]any) model.BrandInfo {
	return model.BrandInfo{
		Name:          str(m, "name"),
		ContactPerson: str(m, "contact_person", "contactPerson"),
		Email:         str(m, "email"),
		Phone:         str(m, "phone"),
		Company:       str(m, "company"),
	}
}

func campaignInfo(m map[string]any) model.CampaignInfo {
	return model.CampaignInfo{
		Name:        str(m, "name"),
		Type:        str(m, "type"),
		Description: str(m, "description"),
	}
}

func deliverables(items []any) []model.Deliverable {
	out := make([]model.Deliverable, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		d := model.Deliverable{
			ID:             str(m, "id"),
			Type:           model.DeliverableType(str(m, "type")),
			Quantity:       int(num(m, "quantity")),
			Description:    str(m, "description"),
			Duration:       str(m, "duration"),
			Requirements:   strList(m, "requirements"),
			Platform:       str(m, "platform"),
			EstimatedValue: num(m, "estimated_value", "estimatedValue"),
			Status:         str(m, "status"),
		}
		if d.ID == "" {
			d.ID = model.NewQuestionID()
		}
		// Missing type defaults to other; unknown values are preserved as
		// given. Validation is the caller's concern.
		if d.Type == "" {
			d.Type = model.DeliverableOther
		}
		if d.Quantity < 1 {
			d.Quantity = 1
		}
		if d.EstimatedValue < 0 {
			d.EstimatedValue = 0
		}
		out = append(out, d)
	}
	return out
}

func timeline(m map[string]any) model.Timeline {
	return model.Timeline{
		BriefDate:        date(m, "brief_date", "briefDate"),
		ContentDeadline:  date(m, "content_deadline", "contentDeadline"),
		PostingStartDate: date(m, "posting_start_date", "postingStartDate"),
		PostingEndDate:   date(m, "posting_end_date", "postingEndDate"),
		CampaignDuration: str(m, "campaign_duration", "campaignDuration"),
		IsUrgent:         boolean(m, "is_urgent", "isUrgent"),
	}
}

func budget(m map[string]any) model.Budget {
	return model.Budget{
		Mentioned:         boolean(m, "mentioned"),
		Amount:            num(m, "amount"),
		Currency:          str(m, "currency"),
		IsRange:           boolean(m, "is_range", "isRange"),
		MinAmount:         num(m, "min_amount", "minAmount"),
		MaxAmount:         num(m, "max_amount", "maxAmount"),
		PaymentTerms:      str(m, "payment_terms", "paymentTerms"),
		AdvancePercentage: num(m, "advance_percentage", "advancePercentage"),
	}
}

func brandGuidelines(m map[string]any) model.BrandGuidelines {
	return model.BrandGuidelines{
		Hashtags:     strList(m, "hashtags"),
		Mentions:     strList(m, "mentions"),
		BrandColors:  strList(m, "brand_colors", "brandColors"),
		BrandTone:    str(m, "brand_tone", "brandTone"),
		KeyMessages:  strList(m, "key_messages", "keyMessages"),
		Restrictions: strList(m, "restrictions"),
		Styling:      str(m, "styling"),
	}
}

func usageRights(m map[string]any) model.UsageRights {
	ex := obj(m, "exclusivity")
	return model.UsageRights{
		Duration:    str(m, "duration"),
		Scope:       strList(m, "scope"),
		Territory:   str(m, "territory"),
		IsPerpetual: boolean(m, "is_perpetual", "isPerpetual"),
		Exclusivity: model.Exclusivity{
			Required: boolean(ex, "required"),
			Duration: str(ex, "duration"),
			Scope:    strList(ex, "scope"),
		},
	}
}

func contentRequirements(m map[string]any) model.ContentRequirements {
	specs := obj(m, "technical_specs", "technicalSpecs")
	return model.ContentRequirements{
		RevisionRounds:    int(num(m, "revision_rounds", "revisionRounds")),
		ApprovalProcess:   str(m, "approval_process", "approvalProcess"),
		ContentFormat:     strList(m, "content_format", "contentFormat"),
		QualityGuidelines: strList(m, "quality_guidelines", "qualityGuidelines"),
		TechnicalSpecs: model.TechnicalSpecs{
			Resolution:  str(specs, "resolution"),
			AspectRatio: str(specs, "aspect_ratio", "aspectRatio"),
			FileFormat:  strList(specs, "file_format", "fileFormat"),
		},
	}
}

func missingInfo(items []any) []model.MissingInfoItem {
	out := make([]model.MissingInfoItem, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cat, matched := MatchCategory(str(m, "category"))
		if !matched {
			// Unmatched categories are dropped, not bucketed. See the
			// normalizer tests pinning this behavior.
			zap.L().Debug("normalize: dropping unmatched missing-info category",
				zap.String("category", str(m, "category")),
			)
			continue
		}
		entry := model.MissingInfoItem{
			ID:          str(m, "id"),
			Category:    cat,
			Description: str(m, "description"),
			Importance:  importance(str(m, "importance")),
		}
		if entry.ID == "" {
			entry.ID = model.NewQuestionID()
		}
		out = append(out, entry)
	}
	return out
}

func importance(raw string) model.Importance {
	switch model.Importance(strings.ToLower(strings.TrimSpace(raw))) {
	case model.ImportanceCritical:
		return model.ImportanceCritical
	case model.ImportanceImportant:
		return model.ImportanceImportant
	case model.ImportanceNiceToHave:
		return model.ImportanceNiceToHave
	default:
		return model.ImportanceImportant
	}
}

func riskFactors(m map[string]any) []model.RiskFactor {
	items := list(m, "risk_factors", "riskFactors")
	out := make([]model.RiskFactor, 0, len(items))
	for _, item := range items {
		fm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.RiskFactor{
			Type:        str(fm, "type"),
			Description: str(fm, "description"),
			Severity:    severity(str(fm, "severity")),
		})
	}
	return out
}

func severity(raw string) model.RiskLevel {
	switch model.RiskLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case model.RiskHigh:
		return model.RiskHigh
	case model.RiskMedium:
		return model.RiskMedium
	case model.RiskLow:
		return model.RiskLow
	default:
		return model.RiskLow
	}
}

func clampConfidence(raw map[string]any) float64 {
	meta := obj(raw, "processing_metadata", "processingMetadata")
	v, ok := lookupNum(meta, "confidence_score", "confidenceScore")
	if !ok {
		v, ok = lookupNum(raw, "confidence_score", "confidenceScore")
	}
	if !ok {
		return DefaultConfidence
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// dateLayouts are tried in order when parsing AI-supplied dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
}

func date(m map[string]any, keys ...string) *time.Time {
	s := str(m, keys...)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// --- loosely-typed accessors ---

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func num(m map[string]any, keys ...string) float64 {
	v, _ := lookupNum(m, keys...)
	return v
}

func lookupNum(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
	}
	return 0, false
}

func boolean(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

func list(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if l, ok := v.([]any); ok {
				return l
			}
		}
	}
	return nil
}

func strList(m map[string]any, keys ...string) []string {
	items := list(m, keys...)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func obj(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if o, ok := v.(map[string]any); ok {
				return o
			}
		}
	}
	return nil
}
