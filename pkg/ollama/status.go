package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// statusTimeout bounds the liveness probe; it should answer instantly when
// the service is up.
const statusTimeout = 5 * time.Second

// Service statuses.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusError   = "error"
)

// ServiceStatus reports generation-service liveness and model availability.
type ServiceStatus struct {
	Status         string   `json:"status"`
	Message        string   `json:"message,omitempty"`
	Models         []string `json:"models,omitempty"`
	CurrentModel   string   `json:"current_model"`
	ModelAvailable bool     `json:"model_available"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Status probes /api/tags and reports whether the service is reachable and
// the configured chat model is pulled. It never returns an error: failures
// fold into the status fields so health surfaces always render.
func (c *ChatClient) Status(ctx context.Context) ServiceStatus {
	st := ServiceStatus{CurrentModel: c.model}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		st.Status = StatusError
		st.Message = err.Error()
		return st
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Connection refusal means the service is down; a timeout or any
		// other transport failure is a distinct, reportable condition.
		if classifyTransport(err) == KindTimeout {
			st.Status = StatusError
			st.Message = err.Error()
			return st
		}
		st.Status = StatusOffline
		st.Message = "le service de génération n'est pas en cours d'exécution"
		return st
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		st.Status = StatusError
		st.Message = resp.Status
		return st
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		st.Status = StatusError
		st.Message = err.Error()
		return st
	}

	st.Status = StatusOnline
	for _, m := range tags.Models {
		st.Models = append(st.Models, m.Name)
		if strings.Contains(m.Name, c.model) {
			st.ModelAvailable = true
		}
	}
	return st
}
