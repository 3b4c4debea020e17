package shared

// DomainError is a business-rule violation with a stable machine code.
// Handlers map the code to an HTTP status; the message is safe to show
// to API clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

// NewDomainError builds a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinel errors shared across domains. Services wrap these with
// fmt.Errorf("...: %w", ...) so callers can test with errors.Is.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another operation")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Authentication required")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Insufficient permissions")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	ErrInsufficientStock  = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrSessionAlreadyOpen = NewDomainError("SESSION_ALREADY_OPEN", "A cash session is already open for this store")
	ErrApprovalRequired   = NewDomainError("APPROVAL_REQUIRED", "Manager approval is required for this operation")
	ErrInvalidPin         = NewDomainError("INVALID_PIN", "Invalid approval PIN")
	ErrProformaExpired    = NewDomainError("PROFORMA_EXPIRED", "Proforma has expired")
	ErrNoOpenSession      = NewDomainError("NO_OPEN_SESSION", "No cash session is open for this store")
)
