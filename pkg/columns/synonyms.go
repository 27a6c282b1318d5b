package columns

import (
	"strings"

	"github.com/aster-data/aster/pkg/models"
)

// Header synonym tables. Matching is case-insensitive substring matching
// against the header cell text.
var (
	phoneSynonyms = []string{
		"phone", "mobile", "contact", "tel", "cell", "hp",
		"telefon", // Malay
		"电话",      // Chinese
	}

	identifierSynonyms = []string{
		"id", "uen", "s/n", "serial", "ref", "code",
	}

	attributeSynonyms = map[models.AttributeKind][]string{
		models.AttributeCompanyName:     {"company", "name", "organisation", "organization", "business"},
		models.AttributePhysicalAddress: {"address", "addr", "location", "地址"},
		models.AttributeEmail:           {"email", "e-mail", "mail"},
		models.AttributeWebsite:         {"website", "web", "url", "site"},
	}
)

func headerMatches(header string, synonyms []string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return false
	}
	for _, syn := range synonyms {
		if strings.Contains(h, syn) {
			return true
		}
	}
	return false
}
