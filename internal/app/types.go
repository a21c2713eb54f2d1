package app

import "sort"

// HeaderMap maps a lower-cased column name to its zero-based column index
type HeaderMap map[string]int

// Width returns the number of columns needed to hold every mapped header
func (h HeaderMap) Width() int {
	width := 0
	for _, idx := range h {
		if idx+1 > width {
			width = idx + 1
		}
	}
	return width
}

// Ordered returns the header names sorted by column index
func (h HeaderMap) Ordered() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if h[names[i]] == h[names[j]] {
			return names[i] < names[j]
		}
		return h[names[i]] < h[names[j]]
	})
	return names
}

// Record is a single data row keyed by header name
type Record map[string]interface{}

// Criteria holds column-value pairs a record must match exactly
type Criteria map[string]interface{}

// AppendResult is the payload returned after rows are appended
type AppendResult struct {
	StartRow int `json:"startRow"`
}

// Response is the uniform envelope returned by every sheet operation
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// NewResponse builds an envelope; success is derived from the status code
func NewResponse(statusCode int, data interface{}, message string) *Response {
	if statusCode == 0 {
		statusCode = 200
	}
	if message == "" {
		message = "Success"
	}
	return &Response{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	}
}

// ErrorResponse converts an error into a failed envelope
func ErrorResponse(err error) *Response {
	return NewResponse(StatusCodeOf(err), nil, err.Error())
}
