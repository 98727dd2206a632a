package rag

import (
	"fmt"
	"strings"

	"github.com/carthago-ai/carthago/engine/domain"
	"github.com/carthago-ai/carthago/pkg/ollama"
)

// systemPrompt enforces grounding discipline: answer only from the supplied
// context, admit gaps instead of inventing, respond in French, cite sites.
const systemPrompt = `Tu es un assistant expert spécialisé sur les sites archéologiques de Tunisie.

RÈGLES IMPORTANTES:
1. Réponds UNIQUEMENT avec les informations du CONTEXTE fourni
2. Si l'information n'est pas dans le contexte, dis clairement: "Je n'ai pas cette information dans ma base de données."
3. Ne jamais inventer ou supposer des informations
4. Réponds en français de manière claire et professionnelle
5. Structure tes réponses avec des paragraphes si nécessaire
6. Mentionne les sources (sites) quand tu donnes des informations
7. Si on te demande des coordonnées ou localisations, fournis-les si disponibles`

// BuildMessages assembles the generation prompt: the system instruction,
// the last maxHistory turns verbatim, then one user message carrying the
// retrieved context (and optional graph block) with the literal question.
// History is advisory context for coherence; it is windowed, never
// re-summarized.
func BuildMessages(query, contextText, graphContext string, history []domain.ConversationTurn, maxHistory int) []ollama.Message {
	messages := make([]ollama.Message, 0, len(history)+2)
	messages = append(messages, ollama.Message{Role: "system", Content: systemPrompt})

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	for _, turn := range history {
		messages = append(messages, ollama.Message{Role: turn.Role, Content: turn.Content})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CONTEXTE (Base de données des sites archéologiques tunisiens):\n%s\n", contextText)
	if graphContext != "" {
		fmt.Fprintf(&b, "\n%s\n", graphContext)
	}
	fmt.Fprintf(&b, "\nQUESTION: %s\n\n", query)
	b.WriteString("Réponds de manière précise et informative en te basant uniquement sur le contexte ci-dessus.")

	messages = append(messages, ollama.Message{Role: domain.RoleUser, Content: b.String()})
	return messages
}
