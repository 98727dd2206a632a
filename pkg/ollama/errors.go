package ollama

import "fmt"

// ErrorKind classifies generation-service failures so callers can pick the
// right user-facing remedy without parsing error strings.
type ErrorKind string

const (
	// KindModelMissing: the service is up but the model is not pulled.
	KindModelMissing ErrorKind = "model_missing"
	// KindBadStatus: any other non-success HTTP status.
	KindBadStatus ErrorKind = "bad_status"
	// KindUnreachable: connection-level failure, service likely not running.
	KindUnreachable ErrorKind = "unreachable"
	// KindTimeout: the call exceeded its hard deadline and was abandoned.
	KindTimeout ErrorKind = "timeout"
)

// ServiceError is a classified generation-service failure. LatencyMs is the
// wall-clock time spent before the failure surfaced; zero for connection
// failures and timeouts where no useful measurement exists.
type ServiceError struct {
	Kind      ErrorKind
	Model     string
	Status    int
	LatencyMs int64
	Err       error
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case KindModelMissing:
		return fmt.Sprintf("ollama: model %q not found", e.Model)
	case KindBadStatus:
		return fmt.Sprintf("ollama: unexpected status %d", e.Status)
	case KindUnreachable:
		return fmt.Sprintf("ollama: unreachable: %v", e.Err)
	case KindTimeout:
		return fmt.Sprintf("ollama: timed out: %v", e.Err)
	}
	return fmt.Sprintf("ollama: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
