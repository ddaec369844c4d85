package output

import (
	"time"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/overview"
)

// ErrorResponse is the standard JSON error format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"` // Remediation hint (suggested fix command)
}

// NewError creates a new error response
func NewError(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// NewErrorWithCode creates a new error response with a code
func NewErrorWithCode(code, msg string) ErrorResponse {
	return ErrorResponse{Error: msg, Code: code}
}

// NewErrorWithHint creates a new error response with a remediation hint
func NewErrorWithHint(msg, hint string) ErrorResponse {
	return ErrorResponse{Error: msg, Hint: hint}
}

// SuccessResponse is a simple success indicator
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

// NewSuccess creates a success response
func NewSuccess(msg string) SuccessResponse {
	return SuccessResponse{Success: true, Message: msg}
}

// TimestampedResponse adds a timestamp to any response
type TimestampedResponse struct {
	GeneratedAt time.Time `json:"generated_at"`
}

// NewTimestamped creates a timestamped response base
func NewTimestamped() TimestampedResponse {
	return TimestampedResponse{GeneratedAt: Timestamp()}
}

// StatusResponse is the output format for the status command
type StatusResponse struct {
	TimestampedResponse
	Servers []overview.ServerSummary `json:"servers"`
	Counts  map[account.Kind]int     `json:"counts"`
	Total   int                      `json:"total"`
}

// VersionResponse is the output format for version command
type VersionResponse struct {
	TimestampedResponse
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuiltAt   string `json:"built_at,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}
