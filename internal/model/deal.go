package model

import "time"

// Platform is the social platform a deal primarily targets.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
)

// DealStage is the lifecycle stage a draft deal starts in.
const DealStagePitched = "pitched"

// DraftDeal is the deal-creation payload produced by converting a ready
// brief. It is handed to the Deal-creation collaborator as-is.
type DraftDeal struct {
	BrandName     string         `json:"brand_name"`
	ContactPerson string         `json:"contact_person"`
	ContactEmail  string         `json:"contact_email"`
	CampaignName  string         `json:"campaign_name"`
	Platform      Platform       `json:"platform"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency,omitempty"`
	GSTApplicable bool           `json:"gst_applicable"`
	TDSApplicable bool           `json:"tds_applicable"`
	Deliverables  []Deliverable  `json:"deliverables"`
	Timeline      DealTimeline   `json:"timeline"`
	Stage         string         `json:"stage"`
	Priority      string         `json:"priority"` // "high" or "medium"
	BriefRef      BriefReference `json:"brief_reference"`
}

// DealTimeline holds the deal schedule seeded from the brief extraction.
type DealTimeline struct {
	PitchedDate      time.Time  `json:"pitched_date"`
	ResponseDeadline time.Time  `json:"response_deadline"`
	ContentDeadline  *time.Time `json:"content_deadline,omitempty"`
	LiveDate         *time.Time `json:"live_date,omitempty"`
}

// BriefReference links a created deal back to its source brief.
type BriefReference struct {
	BriefID        string     `json:"brief_id"`
	ExtractionDate *time.Time `json:"extraction_date,omitempty"`
}

// ConversionOverrides carries creator-supplied edits applied during
// conversion. A nil/zero field means "use the extracted value".
type ConversionOverrides struct {
	BrandName        string     `json:"brand_name,omitempty"`
	CampaignName     string     `json:"campaign_name,omitempty"`
	Platform         Platform   `json:"platform,omitempty"`
	Amount           *float64   `json:"amount,omitempty"`
	GSTApplicable    *bool      `json:"gst_applicable,omitempty"`
	TDSApplicable    *bool      `json:"tds_applicable,omitempty"`
	ResponseDeadline *time.Time `json:"response_deadline,omitempty"`
}

// IsEmpty reports whether no override was supplied. An empty override set
// makes the conversion a one-click conversion.
func (o *ConversionOverrides) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.BrandName == "" && o.CampaignName == "" && o.Platform == "" &&
		o.Amount == nil && o.GSTApplicable == nil && o.TDSApplicable == nil &&
		o.ResponseDeadline == nil
}
