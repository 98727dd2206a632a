// Package domain holds the core data model shared by the ingestion and
// answering pipelines: the archaeological site record, conversation turns,
// and validation applied at corpus-ingestion time.
package domain

// SiteDocument is one structured archaeological site record, as read from
// the line-delimited JSON corpus. It is immutable input to ingestion; one
// record per site.
type SiteDocument struct {
	ID          string   `json:"id,omitempty"`
	Site        string   `json:"site"`
	Ville       string   `json:"ville,omitempty"`
	Description string   `json:"description,omitempty"`
	Periode     string   `json:"periode,omitempty"`
	Statut      string   `json:"statut,omitempty"`
	Coordonnees string   `json:"coordonnees,omitempty"`
	Details     string   `json:"details,omitempty"`
	Monuments   []string `json:"monuments,omitempty"`
	Horaires    string   `json:"horaires,omitempty"`
	Tarif       string   `json:"tarif,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// StatutUNESCO marks a site inscribed on the UNESCO World Heritage list.
const StatutUNESCO = "UNESCO"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is a single message in a chat session, either side.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
