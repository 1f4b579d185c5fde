package extraction

import (
	"fmt"
	"strings"

	"github.com/collabops/brief-cli/internal/model"
)

// systemPrompt instructs the model to extract collaboration terms and to
// flag what the brief does not say rather than invent it.
const systemPrompt = `You are an assistant that extracts structured collaboration terms from brand briefs sent to content creators.

Extract only what the brief actually states. When a critical detail (budget, deadlines, deliverables, usage rights, payment terms) is absent or ambiguous, record it under missing_info instead of guessing. Respond with a single JSON object and nothing else: no markdown fencing, no commentary.`

// promptShape carries the response schema. The normalizer tolerates missing
// or loosely typed fields, so the schema here is guidance for the model, not
// a contract. The type and category lists are filled in from the canonical
// model enums; %%s is the brief slot.
const promptShape = `Analyze the following brand collaboration brief and return a JSON object with this shape:

{
  "brand_info": {"name": "", "contact_person": "", "email": "", "phone": "", "company": ""},
  "campaign_info": {"name": "", "type": "", "description": ""},
  "deliverables": [{"type": "instagram_reel", "quantity": 1, "description": "", "duration": "", "requirements": [], "platform": "", "estimated_value": 0}],
  "timeline": {"brief_date": "", "content_deadline": "", "posting_start_date": "", "posting_end_date": "", "campaign_duration": "", "is_urgent": false},
  "budget": {"mentioned": false, "amount": 0, "currency": "INR", "is_range": false, "min_amount": 0, "max_amount": 0, "payment_terms": "", "advance_percentage": 0},
  "brand_guidelines": {"hashtags": [], "mentions": [], "brand_colors": [], "brand_tone": "", "key_messages": [], "restrictions": [], "styling": ""},
  "usage_rights": {"duration": "", "scope": [], "territory": "", "is_perpetual": false, "exclusivity": {"required": false, "duration": "", "scope": []}},
  "content_requirements": {"revision_rounds": 0, "approval_process": "", "content_format": [], "quality_guidelines": [], "technical_specs": {"resolution": "", "aspect_ratio": "", "file_format": []}},
  "missing_info": [{"category": "budget", "description": "", "importance": "critical"}],
  "risk_assessment": {"risk_factors": [{"type": "", "description": "", "severity": "low"}]},
  "confidence_score": 85
}

Dates use YYYY-MM-DD.

Deliverable types: %s.

Missing info categories: %s. Importance: critical, important, nice_to_have. Severity: low, medium, high.

Brief:
---
%%s
---`

// userPromptTemplate is built from the canonical enums so the prompt and the
// model package cannot drift apart.
var userPromptTemplate = fmt.Sprintf(promptShape,
	joinList(model.DeliverableTypes),
	joinList(model.MissingInfoCategories),
)

func joinList[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
