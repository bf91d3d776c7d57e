package response

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FileResult reports the outcome of one uploaded file inside a batch.
type FileResult struct {
	File    string `json:"file"`
	Status  string `json:"status"`
	Records int    `json:"records"`
	Removed int    `json:"removed"`
	Error   string `json:"error,omitempty"`
}
