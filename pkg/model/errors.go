package model

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags classify failures by required handling, not by origin package.
// The orchestrator's per-operation policy and the CLI's status mapping both
// key off these tags.
var (
	// TagValidation marks malformed or missing input, rejected before any
	// store interaction.
	TagValidation = goerr.NewTag("validation")

	// TagNotFound marks an update/delete/get whose target does not exist for
	// the given owner.
	TagNotFound = goerr.NewTag("not_found")

	// TagStore marks a content store failure. Always fatal to the operation.
	TagStore = goerr.NewTag("store")

	// TagIndex marks a vector index or embedding failure. Fatal on create,
	// swallowed and logged on update/delete.
	TagIndex = goerr.NewTag("index")
)

// HasTag reports whether any error in the chain carries the tag; goerr merges
// tags across the cause chain, so a tag survives wrapping at usecase
// boundaries.
var HasTag = goerr.HasTag

// HTTPStatus maps an error to the status code of the JSON boundary envelope:
// 400 for validation, 404 for not found, 500 for store/index/unknown failures.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case HasTag(err, TagValidation):
		return http.StatusBadRequest
	case HasTag(err, TagNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
