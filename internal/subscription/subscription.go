// Package subscription enforces plan entitlements: whether a creator may run
// AI extraction at all, and how many briefs they may create per calendar
// month. Checks run before any AI spend.
package subscription

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/collabops/brief-cli/internal/store"
)

// Tier identifies a subscription plan.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
	TierStudio  Tier = "studio"
)

var (
	// ErrQuotaExceeded is returned when the creator hit their monthly brief limit.
	ErrQuotaExceeded = eris.New("subscription: monthly brief quota exceeded")
	// ErrAIUnavailable is returned when the plan does not include AI extraction.
	ErrAIUnavailable = eris.New("subscription: plan does not include AI extraction")
)

// Plan describes what a tier entitles a creator to.
type Plan struct {
	Tier          Tier
	AIExtraction  bool
	MonthlyBriefs int // 0 means unlimited
}

var plans = map[Tier]Plan{
	TierFree:    {Tier: TierFree, AIExtraction: false, MonthlyBriefs: 5},
	TierStarter: {Tier: TierStarter, AIExtraction: true, MonthlyBriefs: 25},
	TierPro:     {Tier: TierPro, AIExtraction: true, MonthlyBriefs: 100},
	TierStudio:  {Tier: TierStudio, AIExtraction: true, MonthlyBriefs: 0},
}

// PlanFor resolves a tier string to its plan. Unknown or empty tiers fall
// back to the free plan.
func PlanFor(tier string) Plan {
	p, ok := plans[Tier(strings.ToLower(strings.TrimSpace(tier)))]
	if !ok {
		return plans[TierFree]
	}
	return p
}

// Gate answers entitlement questions against the store.
type Gate struct {
	store store.Store
}

// NewGate creates a subscription gate backed by the brief store.
func NewGate(st store.Store) *Gate {
	return &Gate{store: st}
}

// CheckCreate verifies the creator is under their monthly brief quota.
// Soft-deleted briefs still count; deleting does not refund quota.
func (g *Gate) CheckCreate(ctx context.Context, creatorID, tier string, now time.Time) error {
	plan := PlanFor(tier)
	if plan.MonthlyBriefs <= 0 {
		return nil
	}

	n, err := g.store.CountBriefsSince(ctx, creatorID, monthStart(now))
	if err != nil {
		return eris.Wrap(err, "subscription: count briefs")
	}
	if n >= plan.MonthlyBriefs {
		return ErrQuotaExceeded
	}
	return nil
}

// CheckExtraction verifies the plan includes AI extraction.
func (g *Gate) CheckExtraction(tier string) error {
	if !PlanFor(tier).AIExtraction {
		return ErrAIUnavailable
	}
	return nil
}

func monthStart(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}
