package api

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/objects"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/server/biz"
	"github.com/looplj/adminhub/internal/storage"
)

var errInvalidConflictStrategy = errors.New("conflict strategy must be skip, overwrite or error")

// JSONError returns a JSON error response and adds the error to gin context for access logging.
func JSONError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, objects.NewErrorResponse(http.StatusText(status), err.Error()))
}

// RespondError maps a service error onto the wire contract: denials are 403,
// unknown lists and unreadable items are 404, validation failures are 400
// with per-field messages, evaluation faults and everything else are 500
// with the details kept in the log.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, payload := classifyError(err)
	if status == http.StatusInternalServerError {
		log.Error(c.Request.Context(), "request failed", log.Cause(err))
	}

	c.JSON(status, objects.ErrorResponse{Error: payload})
}

// classifyError resolves the status and public payload of a service error.
// Internal detail stays out of the payload.
func classifyError(err error) (int, objects.Error) {
	if fieldErrs := schema.FieldErrors(err); len(fieldErrs) > 0 {
		fields := make([]objects.FieldError, len(fieldErrs))
		for i, fe := range fieldErrs {
			fields[i] = objects.FieldError{Field: fe.Field, Message: fe.Message}
		}

		return http.StatusBadRequest, objects.Error{
			Type:    http.StatusText(http.StatusBadRequest),
			Message: "Invalid input",
			Fields:  fields,
		}
	}

	switch {
	case errors.Is(err, biz.ErrUnknownList), errors.Is(err, storage.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, objects.Error{
			Type:    http.StatusText(http.StatusNotFound),
			Message: "Not found",
		}

	case access.IsEvaluationFailure(err):
		return http.StatusInternalServerError, objects.Error{
			Type:    http.StatusText(http.StatusInternalServerError),
			Message: "Access evaluation failed",
		}

	case access.IsDenied(err):
		return http.StatusForbidden, objects.Error{
			Type:    http.StatusText(http.StatusForbidden),
			Message: "Access denied",
		}

	default:
		return http.StatusInternalServerError, objects.Error{
			Type:    http.StatusText(http.StatusInternalServerError),
			Message: "Internal server error",
		}
	}
}
