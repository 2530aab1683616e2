package core

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	FHIRErrorBadInput            = "FHIR_BAD_INPUT"
	FHIRErrorNotFound            = "FHIR_NOT_FOUND"
	FHIRErrorStorageFailed       = "FHIR_STORAGE_FAILED"
	FHIRErrorSerializationFailed = "FHIR_SERIALIZATION_FAILED"
	FHIRErrorInternal            = "FHIR_INTERNAL_ERROR"
)

// MapError wraps an error in the module's go-errors envelope, classifying it
// by message shape when it is not already enveloped.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case goerrors.Is(err, ErrCuratedNotFound), goerrors.Is(err, ErrPayloadNotFound):
		return newFHIRError(err.Error(), goerrors.CategoryNotFound, FHIRErrorNotFound)
	case goerrors.Is(err, ErrInvalidSource):
		return newFHIRError(err.Error(), goerrors.CategoryBadInput, FHIRErrorBadInput)
	case strings.Contains(msg, "not a fhir bundle"),
		strings.Contains(msg, "missing resourcetype"),
		strings.Contains(msg, "empty xml"),
		strings.Contains(msg, "missing package path"),
		strings.Contains(msg, "invalid archive"):
		return newFHIRError(err.Error(), goerrors.CategoryBadInput, FHIRErrorBadInput)
	case strings.Contains(msg, "unknown fields"), strings.Contains(msg, "unsupported resource type"):
		return newFHIRError(err.Error(), goerrors.CategoryOperation, FHIRErrorSerializationFailed)
	case strings.Contains(msg, "constraint"), strings.Contains(msg, "database"), strings.Contains(msg, "sql"):
		return newFHIRError(err.Error(), goerrors.CategoryOperation, FHIRErrorStorageFailed)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureEnvelope(mapped)
}

func newFHIRError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return FHIRErrorBadInput
	case goerrors.CategoryNotFound:
		return FHIRErrorNotFound
	case goerrors.CategoryOperation:
		return FHIRErrorStorageFailed
	default:
		return FHIRErrorInternal
	}
}
