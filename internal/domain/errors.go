package domain

import "fmt"

// Sentinel errors for the client.
var (
	ErrNotAuthenticated = fmt.Errorf("not authenticated with Garmin")
	ErrSessionExpired   = fmt.Errorf("server-side session expired")
	ErrTurnInFlight     = fmt.Errorf("a turn is already streaming")
	ErrBackend          = fmt.Errorf("backend error")
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
	ErrHistoryStore     = fmt.Errorf("history store failed")
)

// DomainError wraps a sentinel error with operation context.
type DomainError struct {
	Op     string // operation name (e.g., "Client.Ask")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
