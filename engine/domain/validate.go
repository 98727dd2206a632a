package domain

import "strings"

// ValidateSiteDocument checks a corpus record before ingestion. Only the
// site name is mandatory; every other field is optional and defaults to its
// zero value, so loosely filled records still index.
func ValidateSiteDocument(doc SiteDocument) error {
	if strings.TrimSpace(doc.Site) == "" {
		return NewValidationError("site", doc.Site, ErrMissingSite)
	}
	return nil
}

// ValidateTurn checks a conversation turn loaded from the persistence
// collaborator before it is admitted into the in-memory history window.
func ValidateTurn(t ConversationTurn) error {
	if t.Role != RoleUser && t.Role != RoleAssistant {
		return NewValidationError("role", t.Role, ErrBadRole)
	}
	return nil
}
