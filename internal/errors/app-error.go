package app_error

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Kind string

const (
	KindValidation      Kind = "validation"
	KindDuplicateKey    Kind = "duplicate_key"
	KindOperationFailed Kind = "operation_failed"
	KindUnclassified    Kind = "unclassified"
)

const (
	validationLabel      = "Validation Error"
	operationFailedMsg   = "It wasn't possible to save the user, please try again"
	unclassifiedErrorMsg = "Internal Server Error"
)

// StatusCoder is implemented by failures that declare their own HTTP status.
type StatusCoder interface {
	StatusCode() int
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code    int          `json:"-"`
	Kind    Kind         `json:"-"`
	Message string       `json:"message"`
	Field   string       `json:"field,omitempty"`
	Details []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
	Stack   []byte       `json:"-"`
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	StatusCode int          `json:"statusCode"`
	Error      string       `json:"error"`
	Details    []FieldError `json:"details,omitempty"`
	Stack      string       `json:"stack,omitempty"`
	Message    string       `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode prefers the declared code and falls back to the kind's status.
func (e *AppError) StatusCode() int {
	if e.Code != 0 {
		return e.Code
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindDuplicateKey:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (e *AppError) Response(exposeStack bool) ErrorResponse {
	status := e.StatusCode()
	label := http.StatusText(status)
	if e.Kind == KindValidation {
		label = validationLabel
	}
	if label == "" {
		label = unclassifiedErrorMsg
	}

	resp := ErrorResponse{
		StatusCode: status,
		Error:      label,
		Details:    e.Details,
		Message:    e.Message,
	}
	if resp.Message == "" {
		resp.Message = label
	}
	if exposeStack && e.Err != nil {
		resp.Stack = fmt.Sprintf("%v\n%s", e.Err, e.Stack)
	}
	return resp
}

func (e *AppError) JSON(w http.ResponseWriter, exposeStack bool) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	return json.NewEncoder(w).Encode(e.Response(exposeStack))
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindUnclassified,
		Message: msg,
		Field:   field,
	}
}

func NewValidationError(msg string, details []FieldError) *AppError {
	if msg == "" {
		msg = validationLabel
	}
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: msg,
		Details: details,
	}
}

func NewDuplicateKeyError(field, value string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindDuplicateKey,
		Message: fmt.Sprintf("A user with %s %s already exists", field, value),
		Field:   field,
		Err:     cause,
	}
}

func NewOperationFailedError(field string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindOperationFailed,
		Message: operationFailedMsg,
		Field:   field,
		Err:     cause,
		Stack:   debug.Stack(),
	}
}

func NewUnclassifiedError(field string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindUnclassified,
		Message: unclassifiedErrorMsg,
		Field:   field,
		Err:     cause,
		Stack:   debug.Stack(),
	}
}

// FromError classifies an arbitrary failure. A self-declared status code wins
// over the validation and fallback rules.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		status := coder.StatusCode()
		msg := err.Error()
		if status >= http.StatusInternalServerError {
			msg = unclassifiedErrorMsg
		}
		return &AppError{Code: status, Kind: KindUnclassified, Message: msg, Err: err, Stack: debug.Stack()}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return NewValidationError("", FromValidationErrors(verrs))
	}

	return NewUnclassifiedError("", err)
}

// FromValidationErrors turns validator output into one entry per failing field.
func FromValidationErrors(verrs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: describeTag(fe),
		})
	}
	return details
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
