package corpus

import (
	"strings"
	"testing"

	"github.com/carthago-ai/carthago/engine/domain"
)

func fullDoc() domain.SiteDocument {
	return domain.SiteDocument{
		ID:          "carthage",
		Site:        "Carthage",
		Ville:       "Tunis",
		Description: "Cité antique fondée par les Phéniciens.",
		Periode:     "Punique et romaine",
		Statut:      "UNESCO",
		Coordonnees: "36.8528, 10.3233",
		Details:     "Détruite puis reconstruite par Rome.",
		Monuments:   []string{"Thermes d'Antonin", "Tophet"},
		Horaires:    "8h-17h",
		Tarif:       "12 DT",
	}
}

func TestEnrich_FieldOrder(t *testing.T) {
	text := Enrich(fullDoc())

	markers := []string{
		"Site archéologique: Carthage.",
		"Situé à Tunis, Tunisie.",
		"Cité antique fondée par les Phéniciens.",
		"Période historique: Punique et romaine.",
		"patrimoine mondial de l'UNESCO",
		"Coordonnées GPS: 36.8528, 10.3233.",
		"Détruite puis reconstruite par Rome.",
		"Principaux monuments: Thermes d'Antonin, Tophet.",
		"Horaires: 8h-17h.",
		"Tarif: 12 DT.",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(text, m)
		if idx < 0 {
			t.Fatalf("missing %q in enriched text:\n%s", m, text)
		}
		if idx <= last {
			t.Fatalf("%q out of order in enriched text", m)
		}
		last = idx
	}
}

func TestEnrich_NonUNESCOStatus(t *testing.T) {
	doc := fullDoc()
	doc.Statut = "classé"
	text := Enrich(doc)
	if !strings.Contains(text, "Statut: classé.") {
		t.Errorf("expected plain statut sentence, got: %s", text)
	}
	if strings.Contains(text, "UNESCO") {
		t.Errorf("unexpected UNESCO sentence for non-UNESCO site")
	}
}

func TestEnrich_SkipsEmptyFields(t *testing.T) {
	text := Enrich(domain.SiteDocument{Site: "Dougga"})
	if text != "Site archéologique: Dougga." {
		t.Errorf("unexpected enrichment of sparse record: %q", text)
	}
}

func TestEnrich_EmptyDocument(t *testing.T) {
	if text := Enrich(domain.SiteDocument{}); text != "" {
		t.Errorf("expected empty text for empty record, got %q", text)
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	doc := fullDoc()
	if Enrich(doc) != Enrich(doc) {
		t.Error("enrichment is not deterministic")
	}
}
