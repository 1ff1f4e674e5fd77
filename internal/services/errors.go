package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrModerationRejected = errors.New("moderation rejected")
	ErrExternalService    = errors.New("external service error")
	ErrConflict           = errors.New("version conflict")
	ErrNotFound           = errors.New("not found")
	ErrTransport          = errors.New("transport error")
)

// Taxonomy labels reported by Kind.
const (
	KindValidation         = "validation"
	KindModerationRejected = "moderation_rejected"
	KindExternalService    = "external_service"
	KindConflict           = "conflict"
	KindNotFound           = "not_found"
	KindTransport          = "transport"
	KindUnknown            = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ServiceError reports a failed call to a named external collaborator.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// External wraps err as a failure of the named collaborator.
func External(service, operation string, err error) error {
	return &ServiceError{Service: strings.TrimSpace(service), Operation: strings.TrimSpace(operation), Err: err}
}

func (e *ServiceError) Error() string {
	detail := buildDetail(e.Service, e.Operation, "")
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrExternalService, detail)
	}
	return fmt.Sprintf("%s: %s: %v", ErrExternalService, detail, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrExternalService }

// FailedService returns the collaborator name carried by err, if any.
func FailedService(err error) (string, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Service != "" {
		return svcErr.Service, true
	}
	return "", false
}

// Kind maps err to its taxonomy label.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrModerationRejected):
		return KindModerationRejected
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrExternalService):
		return KindExternalService
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}

// Retryable reports whether the invoking transport may redeliver the event.
// Validation failures and moderation rejections are terminal.
func Retryable(err error) bool {
	switch Kind(err) {
	case KindExternalService, KindConflict, KindTransport:
		return true
	default:
		return false
	}
}

// Details summarizes err for operator-facing output.
type Details struct {
	Kind    string
	Service string
	Message string
}

// Describe extracts Details from err.
func Describe(err error) Details {
	if err == nil {
		return Details{}
	}
	service, _ := FailedService(err)
	return Details{Kind: Kind(err), Service: service, Message: strings.TrimSpace(err.Error())}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
