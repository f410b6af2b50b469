package shared

// DomainError is an error with a stable machine-readable code. The
// HTTP layer maps codes onto status codes without inspecting messages.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrInvalidState signals an operation attempted against an entity
// whose current state forbids it
var ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
