// Package convert maps a ready brief's extraction into a draft deal.
package convert

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/scorer"
	"github.com/collabops/brief-cli/internal/store"
)

// Conversion precondition errors.
var (
	ErrAlreadyConverted = eris.New("convert: brief already converted")
	ErrNotReady         = eris.New("convert: brief not ready for deal")
)

// responseWindow is the default brand response deadline from pitch time.
const responseWindow = 7 * 24 * time.Hour

// DealCreator is the external collaborator that accepts a draft deal and
// returns the created deal's identifier.
type DealCreator interface {
	CreateDeal(ctx context.Context, deal *model.DraftDeal) (string, error)
}

// platformPriority is the explicit tie-break order for the majority vote.
var platformPriority = []model.Platform{
	model.PlatformInstagram,
	model.PlatformYouTube,
	model.PlatformLinkedIn,
	model.PlatformTwitter,
}

// PrimaryPlatform classifies each deliverable type by prefix and returns the
// most frequent platform. Unrecognized or empty types count as instagram, and
// an empty deliverable list yields instagram. Ties are broken by the fixed
// priority order instagram > youtube > linkedin > twitter.
func PrimaryPlatform(deliverables []model.Deliverable) model.Platform {
	if len(deliverables) == 0 {
		return model.PlatformInstagram
	}

	counts := make(map[model.Platform]int, 4)
	for _, d := range deliverables {
		counts[classifyPlatform(d.Type)]++
	}

	best := model.PlatformInstagram
	bestCount := -1
	for _, p := range platformPriority {
		if counts[p] > bestCount {
			best = p
			bestCount = counts[p]
		}
	}
	return best
}

func classifyPlatform(t model.DeliverableType) model.Platform {
	s := strings.ToLower(string(t))
	switch {
	case strings.HasPrefix(s, "youtube"):
		return model.PlatformYouTube
	case strings.HasPrefix(s, "linkedin"):
		return model.PlatformLinkedIn
	case strings.HasPrefix(s, "twitter"):
		return model.PlatformTwitter
	default:
		return model.PlatformInstagram
	}
}

// Build maps a brief into a draft deal, enforcing the conversion
// preconditions in order: already-converted first, then readiness. Overrides
// take precedence over extracted values, which take precedence over the
// listed defaults. Build does not mutate the brief.
func Build(b *model.Brief, overrides *model.ConversionOverrides, now time.Time) (*model.DraftDeal, error) {
	if b.DealConversion.IsConverted {
		return nil, ErrAlreadyConverted
	}
	if !scorer.IsReadyForDeal(b) {
		return nil, ErrNotReady
	}

	e := &b.AIExtraction

	var ov model.ConversionOverrides
	if overrides != nil {
		ov = *overrides
	}

	brandName := ov.BrandName
	if brandName == "" {
		brandName = e.BrandInfo.Name
	}
	if brandName == "" {
		brandName = "Brand Name Required"
	}

	campaignName := ov.CampaignName
	if campaignName == "" {
		campaignName = e.CampaignInfo.Name
	}
	if campaignName == "" {
		campaignName = "Campaign from Brief"
	}

	platform := ov.Platform
	if platform == "" {
		platform = PrimaryPlatform(e.Deliverables)
	}

	amount := scorer.EstimatedValue(b)
	if ov.Amount != nil {
		amount = *ov.Amount
	}

	gst := true
	if ov.GSTApplicable != nil {
		gst = *ov.GSTApplicable
	}
	tds := false
	if ov.TDSApplicable != nil {
		tds = *ov.TDSApplicable
	}

	responseDeadline := now.Add(responseWindow)
	if ov.ResponseDeadline != nil {
		responseDeadline = *ov.ResponseDeadline
	}

	deliverables := make([]model.Deliverable, len(e.Deliverables))
	for i, d := range e.Deliverables {
		d.Status = "pending"
		deliverables[i] = d
	}

	priority := "medium"
	if e.Timeline.IsUrgent {
		priority = "high"
	}

	return &model.DraftDeal{
		BrandName:     brandName,
		ContactPerson: e.BrandInfo.ContactPerson,
		ContactEmail:  e.BrandInfo.Email,
		CampaignName:  campaignName,
		Platform:      platform,
		Amount:        amount,
		Currency:      e.Budget.Currency,
		GSTApplicable: gst,
		TDSApplicable: tds,
		Deliverables:  deliverables,
		Timeline: model.DealTimeline{
			PitchedDate:      now.UTC(),
			ResponseDeadline: responseDeadline.UTC(),
			ContentDeadline:  e.Timeline.ContentDeadline,
			LiveDate:         e.Timeline.PostingStartDate,
		},
		Stage:    model.DealStagePitched,
		Priority: priority,
		BriefRef: model.BriefReference{
			BriefID:        b.BriefID,
			ExtractionDate: b.LastProcessedAt,
		},
	}, nil
}

// Converter runs the full conversion: build the draft, hand it to the deal
// collaborator, and record the write-once conversion on the brief.
type Converter struct {
	store   store.Store
	creator DealCreator
}

// NewConverter creates a Converter.
func NewConverter(s store.Store, creator DealCreator) *Converter {
	return &Converter{store: s, creator: creator}
}

// Convert converts the brief identified by (creatorID, briefID). The
// converted flag is claimed atomically in the store before the brief document
// is rewritten, so a second conversion attempt fails with ErrAlreadyConverted
// even under concurrency.
func (c *Converter) Convert(ctx context.Context, creatorID, briefID string, overrides *model.ConversionOverrides) (*model.DraftDeal, error) {
	b, err := c.store.GetBrief(ctx, creatorID, briefID)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: load brief %s", briefID)
	}

	now := time.Now()
	deal, err := Build(b, overrides, now)
	if err != nil {
		return nil, err
	}

	claimed, err := c.store.MarkConverted(ctx, creatorID, briefID)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: claim conversion %s", briefID)
	}
	if !claimed {
		return nil, ErrAlreadyConverted
	}

	dealID, err := c.creator.CreateDeal(ctx, deal)
	if err != nil {
		// Release the claim so the brief stays convertible; the conversion
		// must either fully commit or leave no persisted change.
		if unmarkErr := c.store.UnmarkConverted(ctx, creatorID, briefID); unmarkErr != nil {
			zap.L().Error("failed to release conversion claim",
				zap.String("brief_id", briefID),
				zap.Error(unmarkErr),
			)
		}
		return nil, eris.Wrapf(err, "convert: create deal for brief %s", briefID)
	}

	method := model.ConversionOneClick
	if !overrides.IsEmpty() {
		method = model.ConversionManualEdit
	}
	convertedAt := now.UTC()
	b.DealConversion = model.DealConversion{
		IsConverted:      true,
		DealID:           dealID,
		ConvertedAt:      &convertedAt,
		ConversionMethod: method,
	}
	b.Status = model.BriefStatusConverted

	if err := c.store.SaveBrief(ctx, b); err != nil {
		return nil, eris.Wrapf(err, "convert: save brief %s", briefID)
	}

	zap.L().Info("brief converted to deal",
		zap.String("brief_id", briefID),
		zap.String("deal_id", dealID),
		zap.String("method", string(method)),
		zap.Float64("amount", deal.Amount),
	)
	return deal, nil
}
