package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/collabops/brief-cli/internal/model"
)

// Sentinel errors shared by both drivers.
var (
	// ErrNotFound is returned when a brief does not exist or is soft-deleted.
	ErrNotFound = eris.New("store: brief not found")
	// ErrBriefConverted is returned when deleting a converted brief.
	ErrBriefConverted = eris.New("store: converted briefs cannot be deleted")
)

// BriefFilter specifies criteria for listing briefs.
type BriefFilter struct {
	Status           model.BriefStatus      `json:"status,omitempty"`
	ExtractionStatus model.ExtractionStatus `json:"extraction_status,omitempty"`
	IncludeDeleted   bool                   `json:"include_deleted,omitempty"`
	Limit            int                    `json:"limit,omitempty"`
	Offset           int                    `json:"offset,omitempty"`
}

// Store defines the persistence interface for briefs. Briefs are stored as
// JSON documents keyed by (creator_id, brief_id), with a few denormalized
// columns for filtering and for the atomic state guards.
type Store interface {
	CreateBrief(ctx context.Context, b *model.Brief) error
	GetBrief(ctx context.Context, creatorID, briefID string) (*model.Brief, error)
	ListBriefs(ctx context.Context, creatorID string, filter BriefFilter) ([]model.Brief, error)

	// SaveBrief rewrites the whole brief document and refreshes the
	// denormalized columns.
	SaveBrief(ctx context.Context, b *model.Brief) error

	// TryStartExtraction atomically transitions the persisted extraction
	// status from pending or failed to processing. Returns false when the
	// guard was not claimed (another run is in flight, or the extraction
	// already completed). This is the sole entry gate for starting an
	// extraction run.
	TryStartExtraction(ctx context.Context, creatorID, briefID string) (bool, error)

	// MarkConverted atomically claims the write-once converted flag.
	// Returns false if the brief was already converted.
	MarkConverted(ctx context.Context, creatorID, briefID string) (bool, error)

	// UnmarkConverted releases a converted claim whose deal creation failed,
	// so the brief can be converted again. Only the holder of a successful
	// MarkConverted may call it, and only before the brief document is
	// rewritten with the conversion.
	UnmarkConverted(ctx context.Context, creatorID, briefID string) error

	// SoftDelete marks a brief deleted. Converted briefs cannot be deleted;
	// the call fails with ErrBriefConverted.
	SoftDelete(ctx context.Context, creatorID, briefID string) error

	IncrementViews(ctx context.Context, creatorID, briefID string) error

	// CountBriefsSince counts a creator's briefs created at or after the
	// given instant, soft-deleted ones included. Used for quota checks.
	CountBriefsSince(ctx context.Context, creatorID string, since time.Time) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
