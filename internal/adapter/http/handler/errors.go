package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
)

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// failedValidationResponse returns 422 UnprocessableEntity status.
// The request was well-formed but its content cannot be processed; repeating
// it unchanged will fail the same way.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	errorResponse(w, http.StatusUnprocessableEntity, errors)
}

// badRequestResponse returns 400 BadRequest status.
func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

func internalErrorResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusInternalServerError, message)
}

// serviceErrorResponse renders a service error with its status code. State
// conflicts carry a machine readable reason next to the message.
func serviceErrorResponse(w http.ResponseWriter, err error) {
	status := GetCode(err)
	if status == http.StatusInternalServerError {
		internalErrorResponse(w, "the server encountered a problem and could not process your request")
		return
	}

	env := envelope{"error": err.Error()}
	if reason := types.RejectReason(err); reason != "" {
		env["reason"] = reason
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// logServiceError logs client-caused failures at Warn and everything else at Error.
func logServiceError(ctx context.Context, l logger.Logger, msg string, err error) {
	if GetCode(err) < http.StatusInternalServerError {
		l.Warn(wrap.ErrorCtx(ctx, err), msg, "error", err.Error())
		return
	}
	l.Error(wrap.ErrorCtx(ctx, err), msg, err)
}
