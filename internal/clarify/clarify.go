// Package clarify turns unresolved missing-info entries into the questions a
// creator can send back to the brand, and renders the clarification email.
package clarify

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/scorer"
)

// questionTemplates maps each canonical missing-info category to its
// clarification question.
var questionTemplates = map[model.MissingInfoCategory]string{
	model.CategoryBudget:              "What is the total budget allocated for this collaboration, and is it negotiable?",
	model.CategoryTimeline:            "What are the exact content submission and posting deadlines for this campaign?",
	model.CategoryDeliverables:        "Could you confirm the exact deliverables expected, including quantity and format for each?",
	model.CategoryBrandGuidelines:     "Do you have brand guidelines (hashtags, mentions, tone, visual style) we should follow?",
	model.CategoryUsageRights:         "For how long and on which channels will you use the content, and is the usage exclusive?",
	model.CategoryPaymentTerms:        "What are the payment terms, and is an advance payment possible?",
	model.CategoryContentRequirements: "Are there specific technical requirements (resolution, aspect ratio, file format) for the content?",
	model.CategoryExclusivity:         "Does this collaboration require category exclusivity, and if so, for how long?",
	model.CategoryContactInfo:         "Who is the point of contact for this campaign, and what is the best way to reach them?",
	model.CategoryCampaignGoals:       "What are the primary goals and success metrics for this campaign?",
}

// Standard questions appended after the generated ones, always in this order.
const (
	standardRevisionQuestion    = "How many revision rounds are included, and what does the approval process look like?"
	standardExclusivityQuestion = "Are there any exclusivity restrictions we should be aware of before committing?"
)

// BuildQuestions produces one question per missing-info entry, in entry
// order, followed by the two fixed standard questions.
func BuildQuestions(missing []model.MissingInfoItem) []model.ClarificationQuestion {
	questions := make([]model.ClarificationQuestion, 0, len(missing)+2)

	for _, m := range missing {
		text, ok := questionTemplates[m.Category]
		if !ok {
			text = fmt.Sprintf("Could you provide more details about: %s", m.Description)
		}
		priority := "medium"
		if m.Importance == model.ImportanceCritical {
			priority = "high"
		}
		questions = append(questions, model.ClarificationQuestion{
			ID:       model.NewQuestionID(),
			Category: m.Category,
			Question: text,
			Priority: priority,
		})
	}

	questions = append(questions,
		model.ClarificationQuestion{
			ID:       model.NewQuestionID(),
			Question: standardRevisionQuestion,
			Priority: "medium",
		},
		model.ClarificationQuestion{
			ID:       model.NewQuestionID(),
			Question: standardExclusivityQuestion,
			Priority: "medium",
		},
	)
	return questions
}

// BuildEmail renders the clarification email for a brief and persists it onto
// the brief's clarifications. Returns nil when every suggested question has
// already been answered (or none exist).
func BuildEmail(b *model.Brief, creatorName string, now time.Time) *model.ClarificationEmail {
	var open []model.ClarificationQuestion
	for _, q := range b.Clarifications.SuggestedQuestions {
		if !q.IsAnswered {
			open = append(open, q)
		}
	}
	if len(open) == 0 {
		return nil
	}

	brand := b.AIExtraction.BrandInfo.Name
	if brand == "" {
		brand = "Brand"
	}
	if creatorName == "" {
		creatorName = b.CreatorID
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s team,\n\n", brand)
	fmt.Fprintf(&body, "Thank you for the collaboration brief. Before %s can confirm the deliverables, a few details need clarification:\n\n", creatorName)
	for i, q := range open {
		fmt.Fprintf(&body, "%d. %s\n", i+1, q.Question)
	}

	if value := scorer.EstimatedValue(b); value > 0 {
		p := message.NewPrinter(language.English)
		currency := b.AIExtraction.Budget.Currency
		if currency == "" {
			currency = "INR"
		}
		fmt.Fprintf(&body, "\nEstimated scope value so far: %s %s\n",
			currency, p.Sprint(number.Decimal(value)))
	}

	fmt.Fprintf(&body, "\nLooking forward to your response.\n\nBest regards,\n%s\n", creatorName)

	email := &model.ClarificationEmail{
		Subject:     fmt.Sprintf("Collaboration Clarifications - %s", brand),
		Body:        body.String(),
		GeneratedAt: now.UTC(),
	}
	b.Clarifications.Email = email
	return email
}
