package subscription

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/store"
)

func TestPlanFor(t *testing.T) {
	assert.Equal(t, TierFree, PlanFor("free").Tier)
	assert.Equal(t, 25, PlanFor("starter").MonthlyBriefs)
	assert.True(t, PlanFor("pro").AIExtraction)
	assert.Equal(t, 0, PlanFor("studio").MonthlyBriefs)

	// Case and whitespace are forgiven; unknown tiers fall back to free.
	assert.Equal(t, TierPro, PlanFor(" Pro ").Tier)
	assert.Equal(t, TierFree, PlanFor("enterprise").Tier)
	assert.Equal(t, TierFree, PlanFor("").Tier)
}

func TestCheckExtraction(t *testing.T) {
	g := NewGate(nil)
	assert.ErrorIs(t, g.CheckExtraction("free"), ErrAIUnavailable)
	assert.NoError(t, g.CheckExtraction("starter"))
	assert.NoError(t, g.CheckExtraction("studio"))
}

func newGate(t *testing.T) (*Gate, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "briefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return NewGate(st), st
}

func seed(t *testing.T, st store.Store, creatorID string, n int, createdAt time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		b := model.NewBrief(creatorID, model.InputTextPaste, model.OriginalContent{Text: "brief"}, "free", createdAt)
		require.NoError(t, st.CreateBrief(context.Background(), b))
	}
}

func TestCheckCreate_QuotaWindow(t *testing.T) {
	ctx := context.Background()
	g, st := newGate(t)
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	// Four briefs this month, one from last month.
	seed(t, st, "creator-1", 4, now.AddDate(0, 0, -3))
	seed(t, st, "creator-1", 1, now.AddDate(0, -1, 0))

	require.NoError(t, g.CheckCreate(ctx, "creator-1", "free", now))

	seed(t, st, "creator-1", 1, now)
	assert.ErrorIs(t, g.CheckCreate(ctx, "creator-1", "free", now), ErrQuotaExceeded)

	// A bigger plan still has headroom; unlimited never trips.
	assert.NoError(t, g.CheckCreate(ctx, "creator-1", "starter", now))
	assert.NoError(t, g.CheckCreate(ctx, "creator-1", "studio", now))
}

func TestCheckCreate_DeletedBriefsStillCount(t *testing.T) {
	ctx := context.Background()
	g, st := newGate(t)
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 5; i++ {
		b := model.NewBrief("creator-1", model.InputTextPaste, model.OriginalContent{Text: "brief"}, "free", now)
		require.NoError(t, st.CreateBrief(ctx, b))
		ids = append(ids, b.BriefID)
	}
	require.NoError(t, st.SoftDelete(ctx, "creator-1", ids[0]))

	assert.ErrorIs(t, g.CheckCreate(ctx, "creator-1", "free", now), ErrQuotaExceeded)
}

func TestMonthStart(t *testing.T) {
	got := monthStart(time.Date(2026, 8, 28, 23, 45, 0, 0, time.FixedZone("IST", 5*3600+1800)))
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), got)
}
