package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden     ErrorType = "FORBIDDEN"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
	ErrorTypeConfiguration ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeIntegrity     ErrorType = "INTEGRITY_ERROR"
	ErrorTypeConnection    ErrorType = "CONNECTION_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeTenantNotFound         ErrorCode = "TENANT_NOT_FOUND"
	ErrCodeTenantConfigNotFound   ErrorCode = "TENANT_DB_CONFIG_NOT_FOUND"
	ErrCodeTenantInactive         ErrorCode = "TENANT_INACTIVE"
	ErrCodeTenantAlreadyExists    ErrorCode = "TENANT_ALREADY_EXISTS"
	ErrCodeConnectionFailed       ErrorCode = "CONNECTION_FAILED"
	ErrCodeEncryptionSecretUnset  ErrorCode = "ENCRYPTION_SECRET_UNSET"
	ErrCodeCredentialTampered     ErrorCode = "CREDENTIAL_TAMPERED"
	ErrCodeNoTenantConnection     ErrorCode = "NO_TENANT_CONNECTION"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodePrincipalNotFound  ErrorCode = "PRINCIPAL_NOT_FOUND"
	ErrCodePrincipalInactive  ErrorCode = "PRINCIPAL_INACTIVE"
	ErrCodePermissionDenied   ErrorCode = "PERMISSION_DENIED"

	ErrCodeCropNotFound ErrorCode = "CROP_NOT_FOUND"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewConfigurationError marks operator-level misconfiguration. Fatal for the
// operation, never retried, and must stand out from ordinary auth failures
// in the logs.
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConfiguration,
		Code:       ErrCodeEncryptionSecretUnset,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewIntegrityError marks a stored credential that failed authenticated
// decryption: tampered, corrupted, or encrypted under a rotated secret.
func NewIntegrityError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeIntegrity,
		Code:       ErrCodeCredentialTampered,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewConnectionError marks a transient connection-open failure. Never cached,
// so the next request retries from scratch.
func NewConnectionError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeConnection,
		Code:       ErrCodeConnectionFailed,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrTenantNotFound       = NewNotFoundError("tenant not found", ErrCodeTenantNotFound)
	ErrTenantConfigNotFound = NewNotFoundError("tenant database configuration not found", ErrCodeTenantConfigNotFound)
	ErrTenantInactive       = NewForbiddenError("tenant is deactivated", ErrCodeTenantInactive)
	ErrTenantAlreadyExists  = NewConflictError("tenant with this subdomain already exists", ErrCodeTenantAlreadyExists)

	ErrEncryptionSecretUnset = NewConfigurationError("credential encryption secret is not configured")
	ErrCredentialTampered    = NewIntegrityError("stored credential failed integrity verification")

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrPrincipalNotFound  = NewUnauthorizedError("principal does not exist", ErrCodePrincipalNotFound)
	ErrPrincipalInactive  = NewUnauthorizedError("principal is inactive", ErrCodePrincipalInactive)
	ErrNoTenantConnection = NewUnauthorizedError("no tenant database attached to this request", ErrCodeNoTenantConnection)

	ErrCropNotFound = NewNotFoundError("crop not found", ErrCodeCropNotFound)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
