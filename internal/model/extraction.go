package model

import "time"

// AIExtraction is the canonical extraction record for a brief. Every field
// is populated with an explicit default by the normalizer; nothing downstream
// should need a nil check beyond the date pointers.
type AIExtraction struct {
	Status              ExtractionStatus    `json:"status"`
	BrandInfo           BrandInfo           `json:"brand_info"`
	CampaignInfo        CampaignInfo        `json:"campaign_info"`
	Deliverables        []Deliverable       `json:"deliverables"`
	Timeline            Timeline            `json:"timeline"`
	Budget              Budget              `json:"budget"`
	BrandGuidelines     BrandGuidelines     `json:"brand_guidelines"`
	UsageRights         UsageRights         `json:"usage_rights"`
	ContentRequirements ContentRequirements `json:"content_requirements"`
	MissingInfo         []MissingInfoItem   `json:"missing_info"`
	RiskAssessment      RiskAssessment      `json:"risk_assessment"`
	ProcessingMetadata  ProcessingMetadata  `json:"processing_metadata"`
}

// BrandInfo identifies the brand behind the collaboration.
type BrandInfo struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Company       string `json:"company"`
}

// CampaignInfo describes the campaign the brief belongs to.
type CampaignInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// DeliverableType enumerates the content formats a brief can ask for.
type DeliverableType string

const (
	DeliverableInstagramPost      DeliverableType = "instagram_post"
	DeliverableInstagramReel      DeliverableType = "instagram_reel"
	DeliverableInstagramStory     DeliverableType = "instagram_story"
	DeliverableInstagramLive      DeliverableType = "instagram_live"
	DeliverableInstagramCarousel  DeliverableType = "instagram_carousel"
	DeliverableYouTubeVideo       DeliverableType = "youtube_video"
	DeliverableYouTubeShort       DeliverableType = "youtube_short"
	DeliverableYouTubeLive        DeliverableType = "youtube_live"
	DeliverableYouTubeIntegration DeliverableType = "youtube_integration"
	DeliverableLinkedInPost       DeliverableType = "linkedin_post"
	DeliverableLinkedInArticle    DeliverableType = "linkedin_article"
	DeliverableLinkedInVideo      DeliverableType = "linkedin_video"
	DeliverableTwitterPost        DeliverableType = "twitter_post"
	DeliverableTwitterThread      DeliverableType = "twitter_thread"
	DeliverableTwitterSpace       DeliverableType = "twitter_space"
	DeliverableBlogPost           DeliverableType = "blog_post"
	DeliverablePodcastEpisode     DeliverableType = "podcast_episode"
	DeliverableUGCVideo           DeliverableType = "ugc_video"
	DeliverableUGCPhoto           DeliverableType = "ugc_photo"
	DeliverableProductReview      DeliverableType = "product_review"
	DeliverableUnboxing           DeliverableType = "unboxing_video"
	DeliverableGiveaway           DeliverableType = "giveaway"
	DeliverableEventAppearance    DeliverableType = "event_appearance"
	DeliverableAmbassadorship     DeliverableType = "brand_ambassadorship"
	DeliverableOther              DeliverableType = "other"
)

// DeliverableTypes lists all recognized deliverable types.
var DeliverableTypes = []DeliverableType{
	DeliverableInstagramPost, DeliverableInstagramReel, DeliverableInstagramStory,
	DeliverableInstagramLive, DeliverableInstagramCarousel,
	DeliverableYouTubeVideo, DeliverableYouTubeShort, DeliverableYouTubeLive,
	DeliverableYouTubeIntegration,
	DeliverableLinkedInPost, DeliverableLinkedInArticle, DeliverableLinkedInVideo,
	DeliverableTwitterPost, DeliverableTwitterThread, DeliverableTwitterSpace,
	DeliverableBlogPost, DeliverablePodcastEpisode,
	DeliverableUGCVideo, DeliverableUGCPhoto,
	DeliverableProductReview, DeliverableUnboxing, DeliverableGiveaway,
	DeliverableEventAppearance, DeliverableAmbassadorship, DeliverableOther,
}

// Deliverable is one requested content item. Deliverables are addressed by a
// stable generated ID rather than slice position.
type Deliverable struct {
	ID             string          `json:"id"`
	Type           DeliverableType `json:"type"`
	Quantity       int             `json:"quantity"`
	Description    string          `json:"description"`
	Duration       string          `json:"duration"`
	Requirements   []string        `json:"requirements"`
	Platform       string          `json:"platform"`
	EstimatedValue float64         `json:"estimated_value"`
	Status         string          `json:"status,omitempty"`
}

// Timeline holds the campaign schedule extracted from the brief.
type Timeline struct {
	BriefDate        *time.Time `json:"brief_date,omitempty"`
	ContentDeadline  *time.Time `json:"content_deadline,omitempty"`
	PostingStartDate *time.Time `json:"posting_start_date,omitempty"`
	PostingEndDate   *time.Time `json:"posting_end_date,omitempty"`
	CampaignDuration string     `json:"campaign_duration"`
	IsUrgent         bool       `json:"is_urgent"`
}

// Budget holds the commercial terms mentioned in the brief.
type Budget struct {
	Mentioned         bool    `json:"mentioned"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	IsRange           bool    `json:"is_range"`
	MinAmount         float64 `json:"min_amount"`
	MaxAmount         float64 `json:"max_amount"`
	PaymentTerms      string  `json:"payment_terms"`
	AdvancePercentage float64 `json:"advance_percentage"`
}

// BrandGuidelines captures brand-side content constraints.
type BrandGuidelines struct {
	Hashtags     []string `json:"hashtags"`
	Mentions     []string `json:"mentions"`
	BrandColors  []string `json:"brand_colors"`
	BrandTone    string   `json:"brand_tone"`
	KeyMessages  []string `json:"key_messages"`
	Restrictions []string `json:"restrictions"`
	Styling      string   `json:"styling"`
}

// UsageRights captures licensing terms for the produced content.
type UsageRights struct {
	Duration    string      `json:"duration"`
	Scope       []string    `json:"scope"`
	Territory   string      `json:"territory"`
	IsPerpetual bool        `json:"is_perpetual"`
	Exclusivity Exclusivity `json:"exclusivity"`
}

// Exclusivity captures category-exclusivity demands.
type Exclusivity struct {
	Required bool     `json:"required"`
	Duration string   `json:"duration"`
	Scope    []string `json:"scope"`
}

// ContentRequirements captures production and approval constraints.
type ContentRequirements struct {
	RevisionRounds     int            `json:"revision_rounds"`
	ApprovalProcess    string         `json:"approval_process"`
	ContentFormat      []string       `json:"content_format"`
	QualityGuidelines  []string       `json:"quality_guidelines"`
	TechnicalSpecs     TechnicalSpecs `json:"technical_specs"`
}

// TechnicalSpecs captures resolution/format requirements.
type TechnicalSpecs struct {
	Resolution  string   `json:"resolution"`
	AspectRatio string   `json:"aspect_ratio"`
	FileFormat  []string `json:"file_format"`
}

// MissingInfoCategory enumerates the canonical gap categories.
type MissingInfoCategory string

const (
	CategoryBudget              MissingInfoCategory = "budget"
	CategoryTimeline            MissingInfoCategory = "timeline"
	CategoryDeliverables        MissingInfoCategory = "deliverables"
	CategoryBrandGuidelines     MissingInfoCategory = "brand_guidelines"
	CategoryUsageRights         MissingInfoCategory = "usage_rights"
	CategoryPaymentTerms        MissingInfoCategory = "payment_terms"
	CategoryContentRequirements MissingInfoCategory = "content_requirements"
	CategoryExclusivity         MissingInfoCategory = "exclusivity"
	CategoryContactInfo         MissingInfoCategory = "contact_info"
	CategoryCampaignGoals       MissingInfoCategory = "campaign_goals"
)

// MissingInfoCategories lists the ten canonical category tokens in their
// fixed order.
var MissingInfoCategories = []MissingInfoCategory{
	CategoryBudget, CategoryTimeline, CategoryDeliverables,
	CategoryBrandGuidelines, CategoryUsageRights, CategoryPaymentTerms,
	CategoryContentRequirements, CategoryExclusivity, CategoryContactInfo,
	CategoryCampaignGoals,
}

// MissingInfoItem flags a gap in the brief. Items are addressed by a stable
// generated ID.
type MissingInfoItem struct {
	ID          string              `json:"id"`
	Category    MissingInfoCategory `json:"category"`
	Description string              `json:"description"`
	Importance  Importance          `json:"importance"`
}

// RiskAssessment aggregates per-factor risks into an overall level. The
// overall level is always recomputed from the factors, never trusted from
// the AI output.
type RiskAssessment struct {
	OverallRisk RiskLevel    `json:"overall_risk"`
	RiskFactors []RiskFactor `json:"risk_factors"`
}

// RiskFactor is a single identified risk.
type RiskFactor struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    RiskLevel `json:"severity"`
}

// ProcessingMetadata records how the extraction was produced.
type ProcessingMetadata struct {
	ModelUsed         string  `json:"model_used"`
	TokensUsed        int     `json:"tokens_used"`
	ProcessingTimeMS  int64   `json:"processing_time_ms"`
	ConfidenceScore   float64 `json:"confidence_score"`
	ExtractionVersion string  `json:"extraction_version"`
	RetryCount        int     `json:"retry_count"`
	LastError         string  `json:"last_error,omitempty"`
}

// CriticalMissing returns the critical-importance subset of missing info.
func (e *AIExtraction) CriticalMissing() []MissingInfoItem {
	var out []MissingInfoItem
	for _, m := range e.MissingInfo {
		if m.Importance == ImportanceCritical {
			out = append(out, m)
		}
	}
	return out
}
