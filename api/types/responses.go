package types

// Status constants for API responses
const (
	StatusOK         = "ok"
	StatusError      = "error"
	StatusProcessing = "processing"
	StatusFailed     = "failed"
	StatusQueued     = "queued"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`  // One of the Status constants above
	Message string `json:"message"` // Human-readable message
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// ListResponse wraps paginated collections
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`           // Number of results in this response
	Total int64       `json:"total,omitempty"` // Total available results (if known)
	Page  int         `json:"page,omitempty"`
	Limit int         `json:"limit,omitempty"`
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	BaseResponse
	Version  string                 `json:"version,omitempty"`
	Services map[string]interface{} `json:"services,omitempty"`
}

// TokenResponse for login and registration
type TokenResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// JobStatusResponse for async job inspection
type JobStatusResponse struct {
	BaseResponse
	JobID    uint        `json:"job_id"`
	Type     string      `json:"type"`
	Progress int         `json:"progress,omitempty"` // 0-100
	Error    string      `json:"error,omitempty"`
	Result   interface{} `json:"result,omitempty"`
}
