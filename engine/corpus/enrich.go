package corpus

import (
	"fmt"
	"strings"

	"github.com/carthago-ai/carthago/engine/domain"
)

// Enrich flattens a site record into French sentences in a fixed order,
// named entities first so they dominate the embedding. Empty fields are
// skipped silently. The output is never shown to users; it exists purely to
// maximize embedding signal, and is deterministic for identical input.
func Enrich(doc domain.SiteDocument) string {
	parts := make([]string, 0, 10)

	if doc.Site != "" {
		parts = append(parts, fmt.Sprintf("Site archéologique: %s.", doc.Site))
	}
	if doc.Ville != "" {
		parts = append(parts, fmt.Sprintf("Situé à %s, Tunisie.", doc.Ville))
	}
	if doc.Description != "" {
		parts = append(parts, doc.Description)
	}
	if doc.Periode != "" {
		parts = append(parts, fmt.Sprintf("Période historique: %s.", doc.Periode))
	}
	if doc.Statut != "" {
		if doc.Statut == domain.StatutUNESCO {
			parts = append(parts, "Ce site est inscrit au patrimoine mondial de l'UNESCO.")
		} else {
			parts = append(parts, fmt.Sprintf("Statut: %s.", doc.Statut))
		}
	}
	if doc.Coordonnees != "" {
		parts = append(parts, fmt.Sprintf("Coordonnées GPS: %s.", doc.Coordonnees))
	}
	if doc.Details != "" {
		parts = append(parts, doc.Details)
	}
	if len(doc.Monuments) > 0 {
		parts = append(parts, fmt.Sprintf("Principaux monuments: %s.", strings.Join(doc.Monuments, ", ")))
	}
	if doc.Horaires != "" {
		parts = append(parts, fmt.Sprintf("Horaires: %s.", doc.Horaires))
	}
	if doc.Tarif != "" {
		parts = append(parts, fmt.Sprintf("Tarif: %s.", doc.Tarif))
	}

	return strings.Join(parts, " ")
}
