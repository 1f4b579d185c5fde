package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxBriefLength is the maximum accepted length of pasted brief text.
const MaxBriefLength = 50000

// ExtractionVersion identifies the extraction schema stamped into
// ProcessingMetadata. Bump when the canonical record shape changes.
const ExtractionVersion = "2.1"

// BriefStatus represents the overall state of a brief.
type BriefStatus string

const (
	BriefStatusDraft              BriefStatus = "draft"
	BriefStatusAnalyzed           BriefStatus = "analyzed"
	BriefStatusNeedsClarification BriefStatus = "needs_clarification"
	BriefStatusReadyForDeal       BriefStatus = "ready_for_deal"
	BriefStatusConverted          BriefStatus = "converted"
	BriefStatusArchived           BriefStatus = "archived"
)

// ExtractionStatus represents the state of the AI extraction for a brief.
// Transitions only move forward: pending -> processing -> completed|failed.
// A failed extraction may be re-armed to processing by the CAS start gate.
type ExtractionStatus string

const (
	ExtractionPending    ExtractionStatus = "pending"
	ExtractionProcessing ExtractionStatus = "processing"
	ExtractionCompleted  ExtractionStatus = "completed"
	ExtractionFailed     ExtractionStatus = "failed"
)

// InputType describes how the brief content was supplied.
type InputType string

const (
	InputTextPaste  InputType = "text_paste"
	InputFileUpload InputType = "file_upload"
)

// ConversionMethod records how a brief became a deal.
type ConversionMethod string

const (
	ConversionOneClick   ConversionMethod = "one_click"
	ConversionManualEdit ConversionMethod = "manual_edit"
)

// Importance ranks a missing-info gap.
type Importance string

const (
	ImportanceCritical   Importance = "critical"
	ImportanceImportant  Importance = "important"
	ImportanceNiceToHave Importance = "nice_to_have"
)

// RiskLevel is the severity scale shared by risk factors and overall risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Brief is a creator-submitted brand-collaboration document awaiting
// structured extraction and, eventually, deal conversion.
type Brief struct {
	CreatorID        string           `json:"creator_id"`
	BriefID          string           `json:"brief_id"`
	InputType        InputType        `json:"input_type"`
	OriginalContent  OriginalContent  `json:"original_content"`
	AIExtraction     AIExtraction     `json:"ai_extraction"`
	Clarifications   Clarifications   `json:"clarifications"`
	DealConversion   DealConversion   `json:"deal_conversion"`
	Status           BriefStatus      `json:"status"`
	Tags             []string         `json:"tags,omitempty"`
	CreatorNotes     string           `json:"creator_notes,omitempty"`
	SubscriptionTier string           `json:"subscription_tier"`
	Deleted          bool             `json:"deleted"`
	ViewCount        int              `json:"view_count"`
	LastProcessedAt  *time.Time       `json:"last_processed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// OriginalContent holds the raw brief text and, for uploads, file metadata.
type OriginalContent struct {
	Text string        `json:"text"`
	File *FileMetadata `json:"file,omitempty"`
}

// FileMetadata describes an uploaded brief document.
type FileMetadata struct {
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// DealConversion records the write-once conversion outcome of a brief.
type DealConversion struct {
	IsConverted      bool             `json:"is_converted"`
	DealID           string           `json:"deal_id,omitempty"`
	ConvertedAt      *time.Time       `json:"converted_at,omitempty"`
	ConversionMethod ConversionMethod `json:"conversion_method,omitempty"`
}

// Clarifications holds questions the creator can send back to the brand.
type Clarifications struct {
	SuggestedQuestions []ClarificationQuestion `json:"suggested_questions,omitempty"`
	CustomQuestions    []ClarificationQuestion `json:"custom_questions,omitempty"`
	Email              *ClarificationEmail     `json:"email,omitempty"`
}

// ClarificationQuestion is a single prompt resolving a missing-info gap.
type ClarificationQuestion struct {
	ID         string              `json:"id"`
	Category   MissingInfoCategory `json:"category,omitempty"`
	Question   string              `json:"question"`
	Priority   string              `json:"priority"` // "high" or "medium"
	IsAnswered bool                `json:"is_answered"`
	Answer     string              `json:"answer,omitempty"`
}

// ClarificationEmail is the rendered template handed to the mail collaborator.
type ClarificationEmail struct {
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewBriefID generates a human-readable brief identifier, e.g.
// BRF-20260828-1a2b3c4d.
func NewBriefID(now time.Time) string {
	short := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("BRF-%s-%s", now.UTC().Format("20060102"), short)
}

// NewQuestionID generates a stable id for a clarification question.
func NewQuestionID() string {
	return uuid.New().String()
}

// NewBrief constructs a draft brief with a pending extraction record.
func NewBrief(creatorID string, inputType InputType, content OriginalContent, tier string, now time.Time) *Brief {
	return &Brief{
		CreatorID:        creatorID,
		BriefID:          NewBriefID(now),
		InputType:        inputType,
		OriginalContent:  content,
		AIExtraction:     AIExtraction{Status: ExtractionPending},
		Status:           BriefStatusDraft,
		SubscriptionTier: tier,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
}
