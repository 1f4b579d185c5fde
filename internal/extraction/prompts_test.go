package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/collabops/brief-cli/internal/model"
)

func TestUserPromptCarriesCanonicalEnums(t *testing.T) {
	for _, dt := range model.DeliverableTypes {
		assert.Contains(t, userPromptTemplate, string(dt))
	}
	for _, c := range model.MissingInfoCategories {
		assert.Contains(t, userPromptTemplate, string(c))
	}

	// One %s slot remains for the brief text.
	assert.Equal(t, 1, strings.Count(userPromptTemplate, "%s"))
}
