package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context, e.g. the session state after a failure
}

// Error codes returned by the console API.
const (
	CodeInvalidReference = "invalid_reference"
	CodeInvalidState     = "invalid_state"
	CodePending          = "pending"
	CodeStale            = "stale"
	CodeFetchFailed      = "fetch_failed"
	CodeCommitFailed     = "commit_failed"
	CodeNotReviewable    = "not_reviewable"
)

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondCoded sends an error with a machine-readable code and optional details.
func respondCoded(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Code: code, Details: details})
}

// --- Parameter Parsing ---

// parseIntQuery reads a non-negative integer query parameter, falling back to def when absent.
// Responds with 400 and returns false on a malformed value.
func parseIntQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}
