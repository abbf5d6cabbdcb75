package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType classifies failures for logging and user display
type ErrorType string

const (
	// ErrorTypeInput covers failures caught before any network call, such as
	// missing attachments. Non-retryable, the user must supply more input.
	ErrorTypeInput ErrorType = "input"
	// ErrorTypeExternal covers reasoning-service failures (timeout, network,
	// quota). Surfaced to the user as a generic message, no automatic retry.
	ErrorTypeExternal ErrorType = "external_api"
	// ErrorTypeContract covers responses that arrived but violated the output
	// contract. Displayed like an external failure but logged distinctly,
	// since it indicates contract drift.
	ErrorTypeContract ErrorType = "contract"
	// ErrorTypePersistence covers best-effort storage failures. Logged, never
	// surfaced, never blocks the analysis flow.
	ErrorTypePersistence ErrorType = "persistence"
	ErrorTypePermission  ErrorType = "permission"
	ErrorTypePayment     ErrorType = "payment"
	ErrorTypeInternal    ErrorType = "internal"
)

// AppError carries a typed application error with structured context
type AppError struct {
	Type     ErrorType
	Code     string
	Message  string
	Internal error
	Context  map[string]interface{}
	Source   string
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches AppErrors by type and code so wrapped instances compare equal
// to the predefined sentinels
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext attaches a key/value pair to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)

	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  fmt.Sprintf("%s:%d", file, line),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into an AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)

	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   fmt.Sprintf("%s:%d", file, line),
		Context:  make(map[string]interface{}),
	}
}

// Handler logs errors according to their type
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
		return
	}
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeInput, ErrorTypePermission:
		h.logger.WarnContext(ctx, "Rejected request", err.LogFields()...)
	case ErrorTypePersistence:
		// Best-effort path: worth an error line but the flow continues.
		h.logger.ErrorContext(ctx, "Persistence failure", err.LogFields()...)
	case ErrorTypeContract:
		// Contract drift deserves its own message so it can be alerted on
		// separately from plain service outages.
		h.logger.ErrorContext(ctx, "Reasoning contract violation", err.LogFields()...)
	case ErrorTypeExternal, ErrorTypePayment, ErrorTypeInternal:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

// Predefined errors
var (
	ErrNoReportAttachments = New(ErrorTypeInput, "NO_REPORTS", "At least one lab report attachment is required")
	ErrNoFoodAttachments   = New(ErrorTypeInput, "NO_FOOD", "At least one food attachment is required")
	ErrUnsupportedMedia    = New(ErrorTypeInput, "UNSUPPORTED_MEDIA", "File type is not accepted for this upload")
	ErrEmptyResponse       = New(ErrorTypeContract, "EMPTY_RESPONSE", "Reasoning service returned no text payload")
	ErrMalformedResponse   = New(ErrorTypeContract, "MALFORMED_RESPONSE", "Reasoning service response violates the result contract")
	ErrServiceFailure      = New(ErrorTypeExternal, "SERVICE_FAILURE", "Reasoning service call failed")
	ErrCreditsExhausted    = New(ErrorTypePermission, "NO_CREDITS", "Analysis credits exhausted")
	ErrAnalysisInFlight    = New(ErrorTypePermission, "IN_FLIGHT", "An analysis is already in progress for this session")
	ErrStaleResponse       = New(ErrorTypeInternal, "STALE_RESPONSE", "Response generation does not match the current session")
	ErrPersistence         = New(ErrorTypePersistence, "PERSISTENCE", "Storage operation failed")
	ErrPaymentRejected     = New(ErrorTypePayment, "PAYMENT_REJECTED", "Transaction could not be verified")
)

// NewInputError builds an input-stage validation error
func NewInputError(message string) *AppError {
	return New(ErrorTypeInput, "INVALID_INPUT", message)
}

// NewServiceError wraps a reasoning-service failure
func NewServiceError(err error, provider string) *AppError {
	return Wrap(err, ErrorTypeExternal, "SERVICE_FAILURE", fmt.Sprintf("%s call failed", provider)).
		WithContext("provider", provider)
}

// NewContractError wraps a malformed-response failure
func NewContractError(err error, reason string) *AppError {
	return Wrap(err, ErrorTypeContract, "MALFORMED_RESPONSE", reason)
}

// NewPersistenceError wraps a storage failure
func NewPersistenceError(err error) *AppError {
	return Wrap(err, ErrorTypePersistence, "PERSISTENCE", "Storage operation failed")
}
