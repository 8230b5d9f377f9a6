package models

// Result is the uniform success/failure envelope returned by every API
// endpoint. ErrorCode carries the taxonomy code (404, 422, 500) which is not
// always the same as the HTTP status of the response.
type Result struct {
	IsSuccess    bool   `json:"isSuccess"`
	Value        any    `json:"value,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	ErrorCode    int    `json:"errorCode,omitempty"`
}

// Success wraps a payload in a successful envelope.
func Success(value any) Result {
	return Result{IsSuccess: true, Value: value}
}

// Failure builds a failed envelope with a human-readable message.
func Failure(message string, code int) Result {
	return Result{IsSuccess: false, ErrorMessage: message, ErrorCode: code}
}

// PaginatedData bundles one page of contractors with paging bookkeeping.
type PaginatedData struct {
	Data       []Contractor `json:"data"`
	Page       int          `json:"page"`
	Count      int          `json:"count"`
	TotalCount int64        `json:"totalCount"`
	TotalPages int          `json:"totalPages"`
}
