// Package briefs is the application service for brief intake and curation:
// validation, subscription gating, persistence, and kicking off background
// extraction.
package briefs

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collabops/brief-cli/internal/clarify"
	"github.com/collabops/brief-cli/internal/extraction"
	"github.com/collabops/brief-cli/internal/lifecycle"
	"github.com/collabops/brief-cli/internal/mailer"
	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/store"
	"github.com/collabops/brief-cli/internal/subscription"
	"github.com/collabops/brief-cli/internal/textextract"
)

var (
	// ErrEmptyBrief is returned when the submitted content has no text.
	ErrEmptyBrief = eris.New("briefs: brief content is empty")
	// ErrBriefTooLong is returned when the text exceeds the accepted length.
	ErrBriefTooLong = eris.New("briefs: brief content exceeds maximum length")
	// ErrNoQuestions is returned when there is nothing to ask the brand.
	ErrNoQuestions = eris.New("briefs: no unanswered clarification questions")
	// ErrQuestionNotFound is returned for an unknown clarification question id.
	ErrQuestionNotFound = eris.New("briefs: clarification question not found")
)

// Service coordinates brief intake and curation.
type Service struct {
	store     store.Store
	gate      *subscription.Gate
	extractor *textextract.Extractor
	runner    *extraction.Runner
	mailer    mailer.Mailer
}

// NewService wires the brief service.
func NewService(st store.Store, gate *subscription.Gate, ex *textextract.Extractor, runner *extraction.Runner, m mailer.Mailer) *Service {
	return &Service{store: st, gate: gate, extractor: ex, runner: runner, mailer: m}
}

// CreateFromText ingests a pasted brief. The subscription gate runs before
// anything is stored or any AI budget is spent. On plans with AI extraction
// the run is enqueued in the background; on others the brief stays pending
// for manual review.
func (s *Service) CreateFromText(ctx context.Context, creatorID, tier, text string) (*model.Brief, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyBrief
	}
	// The limit is in characters, not bytes.
	if utf8.RuneCountInString(text) > model.MaxBriefLength {
		return nil, ErrBriefTooLong
	}

	return s.create(ctx, creatorID, tier, model.InputTextPaste, model.OriginalContent{Text: text})
}

// CreateFromFile ingests an uploaded brief document.
func (s *Service) CreateFromFile(ctx context.Context, creatorID, tier, filename string, data []byte) (*model.Brief, error) {
	text, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(text) > model.MaxBriefLength {
		return nil, ErrBriefTooLong
	}

	content := model.OriginalContent{
		Text: text,
		File: &model.FileMetadata{
			Name:      filename,
			MimeType:  mimeTypeFor(filename),
			SizeBytes: int64(len(data)),
		},
	}
	return s.create(ctx, creatorID, tier, model.InputFileUpload, content)
}

func (s *Service) create(ctx context.Context, creatorID, tier string, inputType model.InputType, content model.OriginalContent) (*model.Brief, error) {
	now := time.Now().UTC()
	if err := s.gate.CheckCreate(ctx, creatorID, tier, now); err != nil {
		return nil, err
	}

	b := model.NewBrief(creatorID, inputType, content, tier, now)
	if err := s.store.CreateBrief(ctx, b); err != nil {
		return nil, err
	}

	if err := s.gate.CheckExtraction(tier); err == nil {
		s.runner.Enqueue(creatorID, b.BriefID)
	} else {
		zap.L().Info("extraction skipped for plan",
			zap.String("brief_id", b.BriefID),
			zap.String("tier", tier),
		)
	}

	zap.L().Info("brief created",
		zap.String("creator_id", creatorID),
		zap.String("brief_id", b.BriefID),
		zap.String("input_type", string(inputType)),
		zap.Int("content_length", len(content.Text)),
	)
	return b, nil
}

// Get loads a brief. When countView is set the view counter is bumped, as
// the read endpoints do.
func (s *Service) Get(ctx context.Context, creatorID, briefID string, countView bool) (*model.Brief, error) {
	b, err := s.store.GetBrief(ctx, creatorID, briefID)
	if err != nil {
		return nil, err
	}
	if countView {
		if err := s.store.IncrementViews(ctx, creatorID, briefID); err != nil {
			return nil, err
		}
		b.ViewCount++
	}
	return b, nil
}

// List returns the creator's briefs matching the filter.
func (s *Service) List(ctx context.Context, creatorID string, filter store.BriefFilter) ([]model.Brief, error) {
	return s.store.ListBriefs(ctx, creatorID, filter)
}

// Delete soft-deletes a brief. Converted briefs are kept for the deal's
// audit trail and cannot be deleted.
func (s *Service) Delete(ctx context.Context, creatorID, briefID string) error {
	return s.store.SoftDelete(ctx, creatorID, briefID)
}

// Archive moves a brief to archived.
func (s *Service) Archive(ctx context.Context, creatorID, briefID string) error {
	return s.transition(ctx, creatorID, briefID, model.BriefStatusArchived)
}

// MarkReviewed records a manual review on plans without AI extraction,
// moving a draft brief to analyzed.
func (s *Service) MarkReviewed(ctx context.Context, creatorID, briefID string) error {
	return s.transition(ctx, creatorID, briefID, model.BriefStatusAnalyzed)
}

func (s *Service) transition(ctx context.Context, creatorID, briefID string, to model.BriefStatus) error {
	b, err := s.store.GetBrief(ctx, creatorID, briefID)
	if err != nil {
		return err
	}
	if err := lifecycle.Apply(b, to); err != nil {
		return err
	}
	return s.store.SaveBrief(ctx, b)
}

// Reanalyze re-runs extraction for a brief whose previous run failed. The
// persisted status gate decides whether the run actually starts.
func (s *Service) Reanalyze(ctx context.Context, creatorID, briefID, tier string) error {
	if err := s.gate.CheckExtraction(tier); err != nil {
		return err
	}
	if _, err := s.store.GetBrief(ctx, creatorID, briefID); err != nil {
		return err
	}
	s.runner.Enqueue(creatorID, briefID)
	return nil
}

// UpdateMeta replaces the brief's tags and creator notes.
func (s *Service) UpdateMeta(ctx context.Context, creatorID, briefID string, tags []string, notes string) (*model.Brief, error) {
	b, err := s.store.GetBrief(ctx, creatorID, briefID)
	if err != nil {
		return nil, err
	}
	b.Tags = tags
	b.CreatorNotes = notes
	if err := s.store.SaveBrief(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// AnswerQuestion records the brand's answer to a clarification question.
func (s *Service) AnswerQuestion(ctx context.Context, creatorID, briefID, questionID, answer string) (*model.Brief, error) {
	b, err := s.store.GetBrief(ctx, creatorID, briefID)
	if err != nil {
		return nil, err
	}

	if !answerQuestion(b.Clarifications.SuggestedQuestions, questionID, answer) &&
		!answerQuestion(b.Clarifications.CustomQuestions, questionID, answer) {
		return nil, ErrQuestionNotFound
	}

	if err := s.store.SaveBrief(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func answerQuestion(questions []model.ClarificationQuestion, questionID, answer string) bool {
	for i := range questions {
		if questions[i].ID == questionID {
			questions[i].IsAnswered = true
			questions[i].Answer = answer
			return true
		}
	}
	return false
}

// AddCustomQuestion appends a creator-authored clarification question.
func (s *Service) AddCustomQuestion(ctx context.Context, creatorID, briefID, question string) (*model.Brief, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrNoQuestions
	}

	b, err := s.store.GetBrief(ctx, creatorID, briefID)
	if err != nil {
		return nil, err
	}
	b.Clarifications.CustomQuestions = append(b.Clarifications.CustomQuestions, model.ClarificationQuestion{
		ID:       model.NewQuestionID(),
		Question: question,
		Priority: "medium",
	})
	if err := s.store.SaveBrief(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SendClarifications renders the clarification email from the unanswered
// questions and delivers it to the brand contact. The rendered email is
// persisted on the brief.
func (s *Service) SendClarifications(ctx context.Context, creatorID, briefID, to, creatorName string) (*model.ClarificationEmail, error) {
	b, err := s.store.GetBrief(ctx, creatorID, briefID)
	if err != nil {
		return nil, err
	}

	email := clarify.BuildEmail(b, creatorName, time.Now().UTC())
	if email == nil {
		return nil, ErrNoQuestions
	}

	if to == "" {
		to = b.AIExtraction.BrandInfo.Email
	}
	if err := s.mailer.Send(ctx, mailer.OutboundEmail{
		To:      to,
		BriefID: briefID,
		Subject: email.Subject,
		Body:    email.Body,
		SentAt:  email.GeneratedAt,
	}); err != nil {
		return nil, err
	}

	if err := s.store.SaveBrief(ctx, b); err != nil {
		return nil, err
	}
	return email, nil
}

func mimeTypeFor(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filenameExt(filename), ".")) {
	case "pdf":
		return "application/pdf"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "md", "markdown":
		return "text/markdown"
	default:
		return "text/plain"
	}
}

func filenameExt(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}
