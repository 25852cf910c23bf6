package turn

import (
	"errors"
	"net/http"

	"github.com/aiox-platform/travelbot/internal/api"
)

// Kind classifies a turn failure.
type Kind string

const (
	KindMalformedInput             Kind = "MalformedInput"
	KindUnsupportedChannel         Kind = "UnsupportedChannel"
	KindMissingConversationID      Kind = "MissingConversationId"
	KindNoInputProvided            Kind = "NoInputProvided"
	KindAmbiguousInput             Kind = "AmbiguousInput"
	KindUnsupportedAttachmentCount Kind = "UnsupportedAttachmentCount"
	KindUnsupportedAttachmentType  Kind = "UnsupportedAttachmentType"

	KindConfiguration          Kind = "ConfigurationError"
	KindAttachmentFetch        Kind = "AttachmentFetchError"
	KindModelInvocation        Kind = "ModelInvocationError"
	KindModelResponseMalformed Kind = "ModelResponseMalformed"

	// Degradable kinds. They are logged and never abort a turn.
	KindTranscriptionUnavailable Kind = "TranscriptionUnavailable"
	KindDescriptionUnavailable   Kind = "DescriptionUnavailable"
	KindTranscode                Kind = "TranscodeError"
	KindSearchUnavailable        Kind = "SearchUnavailable"
	KindDeliveryFailed           Kind = "DeliveryFailed"
	KindPersistenceFailed        Kind = "PersistenceFailed"
)

var kindStatus = map[Kind]int{
	KindMalformedInput:             http.StatusBadRequest,
	KindUnsupportedChannel:         http.StatusBadRequest,
	KindMissingConversationID:      http.StatusBadRequest,
	KindNoInputProvided:            http.StatusBadRequest,
	KindAmbiguousInput:             http.StatusBadRequest,
	KindUnsupportedAttachmentCount: http.StatusBadRequest,
	KindUnsupportedAttachmentType:  http.StatusBadRequest,
	KindConfiguration:              http.StatusInternalServerError,
	KindAttachmentFetch:            http.StatusInternalServerError,
	KindModelInvocation:            http.StatusInternalServerError,
	KindModelResponseMalformed:     http.StatusInternalServerError,
}

// Status returns the HTTP status a failure of this kind is reported with.
func (k Kind) Status() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified turn failure. Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or "" if err is not a turn error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// toAppError maps any pipeline error onto the HTTP error type.
func toAppError(err error) *api.AppError {
	var te *Error
	if errors.As(err, &te) {
		return &api.AppError{Code: te.Kind.Status(), Message: te.Message}
	}
	return api.ErrInternalServer
}
