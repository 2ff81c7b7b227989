package handlers

import (
	"net/http"

	"github.com/gourl/msid/internal/services"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CodeInvalidRequest marks a body or query that could not be read.
const CodeInvalidRequest = "INVALID_REQUEST"

// mapErrorToResponse maps service errors to HTTP status codes and error responses.
func mapErrorToResponse(err error) (int, ErrorResponse) {
	code := services.ErrorCode(err)
	switch code {
	case services.CodeProfileNotFound:
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: code}
	case services.CodeProfileExists:
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: code}
	case services.CodeInternal:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  code,
		}
	default:
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: code}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, resp := mapErrorToResponse(err)
	writeJSON(w, status, resp)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: message,
		Code:  CodeInvalidRequest,
	})
}
