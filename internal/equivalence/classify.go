package equivalence

import (
	"strings"

	"github.com/noah-isme/equivalence-api/internal/models"
)

// Tokens are matched as lower-case substrings of the status column.
// Pending tokens are checked first: the prompt asks for "Não Equivalente" on
// pending rows, and that cell also contains "equivalente".
var (
	pendingTokens    = []string{"não", "nao", "pendente"}
	equivalentTokens = []string{"equivalente", "sim"}
)

// Classify maps a status cell to a subject status. needsReview is true when
// no token matched and the row fell back to pending.
func Classify(status string) (result models.SubjectStatus, needsReview bool) {
	s := strings.ToLower(strings.TrimSpace(status))
	if containsAny(s, pendingTokens) {
		return models.SubjectStatusPending, false
	}
	if containsAny(s, equivalentTokens) {
		return models.SubjectStatusEquivalent, false
	}
	return models.SubjectStatusPending, true
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
