package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabops/brief-cli/internal/model"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "briefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testBrief(creatorID string, status model.ExtractionStatus) *model.Brief {
	now := time.Now().UTC().Truncate(time.Second)
	b := model.NewBrief(creatorID, model.InputTextPaste, model.OriginalContent{Text: "collab brief"}, "pro", now)
	b.AIExtraction.Status = status
	return b
}

func TestSQLite_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	b := testBrief("creator-1", model.ExtractionPending)
	b.Tags = []string{"fashion", "paid"}
	require.NoError(t, st.CreateBrief(ctx, b))

	got, err := st.GetBrief(ctx, "creator-1", b.BriefID)
	require.NoError(t, err)
	assert.Equal(t, b.BriefID, got.BriefID)
	assert.Equal(t, b.OriginalContent.Text, got.OriginalContent.Text)
	assert.Equal(t, b.Tags, got.Tags)
	assert.Equal(t, model.BriefStatusDraft, got.Status)
}

func TestSQLite_GetNotFound(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	_, err := st.GetBrief(ctx, "creator-1", "BRF-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ListFilters(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	ready := testBrief("creator-1", model.ExtractionCompleted)
	ready.Status = model.BriefStatusReadyForDeal
	draft := testBrief("creator-1", model.ExtractionPending)
	other := testBrief("creator-2", model.ExtractionPending)
	require.NoError(t, st.CreateBrief(ctx, ready))
	require.NoError(t, st.CreateBrief(ctx, draft))
	require.NoError(t, st.CreateBrief(ctx, other))

	all, err := st.ListBriefs(ctx, "creator-1", BriefFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	readyOnly, err := st.ListBriefs(ctx, "creator-1", BriefFilter{Status: model.BriefStatusReadyForDeal})
	require.NoError(t, err)
	require.Len(t, readyOnly, 1)
	assert.Equal(t, ready.BriefID, readyOnly[0].BriefID)

	require.NoError(t, st.SoftDelete(ctx, "creator-1", draft.BriefID))

	afterDelete, err := st.ListBriefs(ctx, "creator-1", BriefFilter{})
	require.NoError(t, err)
	assert.Len(t, afterDelete, 1)

	withDeleted, err := st.ListBriefs(ctx, "creator-1", BriefFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, withDeleted, 2)
}

func TestSQLite_SaveBriefRewritesDocument(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	b := testBrief("creator-1", model.ExtractionPending)
	require.NoError(t, st.CreateBrief(ctx, b))

	b.Status = model.BriefStatusNeedsClarification
	b.AIExtraction.Status = model.ExtractionCompleted
	b.CreatorNotes = "asked about budget"
	require.NoError(t, st.SaveBrief(ctx, b))

	got, err := st.GetBrief(ctx, "creator-1", b.BriefID)
	require.NoError(t, err)
	assert.Equal(t, model.BriefStatusNeedsClarification, got.Status)
	assert.Equal(t, model.ExtractionCompleted, got.AIExtraction.Status)
	assert.Equal(t, "asked about budget", got.CreatorNotes)

	missing := testBrief("creator-1", model.ExtractionPending)
	assert.ErrorIs(t, st.SaveBrief(ctx, missing), ErrNotFound)
}

func TestSQLite_TryStartExtractionGate(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	pending := testBrief("creator-1", model.ExtractionPending)
	require.NoError(t, st.CreateBrief(ctx, pending))

	claimed, err := st.TryStartExtraction(ctx, "creator-1", pending.BriefID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Second claim sees processing and is refused.
	claimed, err = st.TryStartExtraction(ctx, "creator-1", pending.BriefID)
	require.NoError(t, err)
	assert.False(t, claimed)

	// A failed run can be re-armed.
	failed := testBrief("creator-1", model.ExtractionFailed)
	require.NoError(t, st.CreateBrief(ctx, failed))
	claimed, err = st.TryStartExtraction(ctx, "creator-1", failed.BriefID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// A completed run is never re-armed.
	done := testBrief("creator-1", model.ExtractionCompleted)
	require.NoError(t, st.CreateBrief(ctx, done))
	claimed, err = st.TryStartExtraction(ctx, "creator-1", done.BriefID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestSQLite_MarkConvertedOnce(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	b := testBrief("creator-1", model.ExtractionCompleted)
	require.NoError(t, st.CreateBrief(ctx, b))

	claimed, err := st.MarkConverted(ctx, "creator-1", b.BriefID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = st.MarkConverted(ctx, "creator-1", b.BriefID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestSQLite_UnmarkConvertedReleasesClaim(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	b := testBrief("creator-1", model.ExtractionCompleted)
	require.NoError(t, st.CreateBrief(ctx, b))

	claimed, err := st.MarkConverted(ctx, "creator-1", b.BriefID)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, st.UnmarkConverted(ctx, "creator-1", b.BriefID))

	// The claim is available again after release.
	claimed, err = st.MarkConverted(ctx, "creator-1", b.BriefID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Releasing a brief that holds no claim is an error.
	unclaimed := testBrief("creator-1", model.ExtractionPending)
	require.NoError(t, st.CreateBrief(ctx, unclaimed))
	assert.ErrorIs(t, st.UnmarkConverted(ctx, "creator-1", unclaimed.BriefID), ErrNotFound)
}

func TestSQLite_SoftDeleteGuards(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	b := testBrief("creator-1", model.ExtractionCompleted)
	require.NoError(t, st.CreateBrief(ctx, b))

	_, err := st.MarkConverted(ctx, "creator-1", b.BriefID)
	require.NoError(t, err)
	assert.ErrorIs(t, st.SoftDelete(ctx, "creator-1", b.BriefID), ErrBriefConverted)

	assert.ErrorIs(t, st.SoftDelete(ctx, "creator-1", "BRF-missing"), ErrNotFound)

	deletable := testBrief("creator-1", model.ExtractionPending)
	require.NoError(t, st.CreateBrief(ctx, deletable))
	require.NoError(t, st.SoftDelete(ctx, "creator-1", deletable.BriefID))

	_, err = st.GetBrief(ctx, "creator-1", deletable.BriefID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_IncrementViews(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	b := testBrief("creator-1", model.ExtractionPending)
	require.NoError(t, st.CreateBrief(ctx, b))

	require.NoError(t, st.IncrementViews(ctx, "creator-1", b.BriefID))
	require.NoError(t, st.IncrementViews(ctx, "creator-1", b.BriefID))

	got, err := st.GetBrief(ctx, "creator-1", b.BriefID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)

	assert.ErrorIs(t, st.IncrementViews(ctx, "creator-1", "BRF-missing"), ErrNotFound)
}

func TestSQLite_CountBriefsSince(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	old := testBrief("creator-1", model.ExtractionPending)
	old.CreatedAt = time.Now().UTC().AddDate(0, -2, 0)
	recent := testBrief("creator-1", model.ExtractionPending)
	require.NoError(t, st.CreateBrief(ctx, old))
	require.NoError(t, st.CreateBrief(ctx, recent))

	monthAgo := time.Now().UTC().AddDate(0, -1, 0)
	n, err := st.CountBriefsSince(ctx, "creator-1", monthAgo)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Soft-deleted briefs still count toward the quota window.
	require.NoError(t, st.SoftDelete(ctx, "creator-1", recent.BriefID))
	n, err = st.CountBriefsSince(ctx, "creator-1", monthAgo)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
