package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/fmatten/fhir-mdr/core"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.FHIRErrorInternal)
}

func queryInvalidInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.FHIRErrorBadInput)
}
