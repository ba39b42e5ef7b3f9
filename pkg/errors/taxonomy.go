package errors

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind represents the category of a generation failure
type Kind string

const (
	KindValidation       Kind = "validation"
	KindPermissionDenied Kind = "permission_denied"
	KindQuotaExceeded    Kind = "quota_exceeded"
	KindNetwork          Kind = "network"
	KindServer           Kind = "server"
	KindTimeout          Kind = "timeout"
	KindUnknown          Kind = "unknown"
)

// Machine codes attached to classified errors
const (
	CodeCancelled        = "cancelled"
	CodePermissionDenied = "permission-denied"
	CodeUnauthenticated  = "unauthenticated"
	CodeInvalidArgument  = "invalid-argument"
	CodeQuotaExceeded    = "quota-exceeded"
	CodeResourceExhaust  = "resource-exhausted"
	CodeDeadlineExceeded = "deadline-exceeded"
	CodeMissingField     = "missing-required"
	CodeAlreadyRunning   = "already-generating"
	CodePanic            = "panic"
)

const timeoutGuidance = "The itinerary took too long to generate. Try shortening the trip duration or simplifying special requests."

// GenerationError is the single error shape returned to callers of the orchestrator
type GenerationError struct {
	Kind          Kind      `json:"kind"`
	Message       string    `json:"message"`
	Code          string    `json:"code,omitempty"`
	UserMessage   string    `json:"user_message,omitempty"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
	Cause         error     `json:"-"`
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	return e.Message
}

// Unwrap exposes the wrapped cause
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Fatal reports whether the error must abort without further retries
func (e *GenerationError) Fatal() bool {
	switch e.Kind {
	case KindValidation, KindPermissionDenied, KindQuotaExceeded:
		return true
	case KindTimeout:
		return e.Code == CodeDeadlineExceeded
	case KindUnknown:
		return e.Code == CodeCancelled
	default:
		return false
	}
}

// New creates a new GenerationError
func New(kind Kind, message string) *GenerationError {
	return &GenerationError{
		Kind:          kind,
		Message:       message,
		Timestamp:     time.Now(),
		CorrelationID: uuid.New().String(),
	}
}

// NewWithCode creates a GenerationError carrying a machine code
func NewWithCode(kind Kind, code, message string) *GenerationError {
	err := New(kind, message)
	err.Code = code
	if kind == KindTimeout {
		err.UserMessage = timeoutGuidance
	}
	return err
}

// Validation creates a validation error for a missing or malformed field
func Validation(message string) *GenerationError {
	return NewWithCode(KindValidation, CodeMissingField, message)
}

// Cancelled creates the error reported when the caller cancels a run
func Cancelled() *GenerationError {
	return NewWithCode(KindUnknown, CodeCancelled, "operation was cancelled")
}

// Wrap tags err with kind, keeping the original as the cause
func Wrap(err error, kind Kind) *GenerationError {
	if err == nil {
		return nil
	}
	out := New(kind, err.Error())
	out.Cause = err
	if kind == KindTimeout {
		out.UserMessage = timeoutGuidance
	}
	return out
}

// As extracts a GenerationError from err's chain
func As(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if stderrors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// IsCancelled reports whether err represents a cancelled operation
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	if genErr, ok := As(err); ok {
		return genErr.Kind == KindUnknown && genErr.Code == CodeCancelled
	}
	return stderrors.Is(err, context.Canceled)
}

// KindOf returns the kind of err, or KindUnknown
func KindOf(err error) Kind {
	if genErr, ok := As(err); ok {
		return genErr.Kind
	}
	return KindUnknown
}

// Classify inspects err's message and code and returns a GenerationError.
// Permission, quota, hard-deadline and cancellation problems are recognised
// regardless of defaultKind; anything else is tagged defaultKind.
func Classify(err error, defaultKind Kind) *GenerationError {
	if err == nil {
		return nil
	}

	if genErr, ok := As(err); ok && genErr.Kind != KindUnknown && genErr.Kind != defaultKind {
		if genErr.Fatal() || genErr.Kind == KindTimeout {
			return genErr
		}
	}
	if IsCancelled(err) {
		out := Cancelled()
		out.Cause = err
		return out
	}

	text := normalizeMessage(err.Error())
	if genErr, ok := As(err); ok && genErr.Code != "" {
		text = genErr.Code + " " + text
	}

	switch {
	case containsAny(text, CodePermissionDenied, CodeUnauthenticated, CodeInvalidArgument):
		return classified(err, KindPermissionDenied, matchedCode(text, CodePermissionDenied, CodeUnauthenticated, CodeInvalidArgument))
	case containsAny(text, CodeQuotaExceeded, CodeResourceExhaust):
		return classified(err, KindQuotaExceeded, matchedCode(text, CodeQuotaExceeded, CodeResourceExhaust))
	case strings.Contains(text, CodeDeadlineExceeded):
		return classified(err, KindTimeout, CodeDeadlineExceeded)
	}

	if genErr, ok := As(err); ok && genErr.Kind == defaultKind {
		return genErr
	}
	return classified(err, defaultKind, "")
}

func classified(err error, kind Kind, code string) *GenerationError {
	out := Wrap(err, kind)
	out.Code = code
	if genErr, ok := As(err); ok && code == "" {
		out.Code = genErr.Code
	}
	return out
}

// normalizeMessage lowercases and folds "PERMISSION_DENIED" and
// "permission denied" into "permission-denied".
func normalizeMessage(msg string) string {
	msg = strings.ToLower(msg)
	msg = strings.ReplaceAll(msg, "_", "-")
	for _, code := range []string{CodePermissionDenied, CodeInvalidArgument, CodeQuotaExceeded, CodeResourceExhaust, CodeDeadlineExceeded} {
		msg = strings.ReplaceAll(msg, strings.ReplaceAll(code, "-", " "), code)
	}
	return msg
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func matchedCode(text string, codes ...string) string {
	for _, c := range codes {
		if strings.Contains(text, c) {
			return c
		}
	}
	return ""
}

// Normalize converts any error into a GenerationError for the caller.
func Normalize(err error) *GenerationError {
	if err == nil {
		return nil
	}
	if genErr, ok := As(err); ok {
		return genErr
	}
	return Classify(err, KindUnknown)
}
