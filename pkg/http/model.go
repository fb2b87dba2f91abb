package http

// DetailResponse is the error envelope: {"detail": ...}.
// Detail is a message string, or a list of ValidationError for rejected bodies.
type DetailResponse struct {
	Detail interface{} `json:"detail"`
}

// StatusResponse is returned by the root liveness route.
type StatusResponse struct {
	Status string `json:"status" example:"Edelweiss backend running"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"symbol"`
	Message string                 `json:"message,omitempty" example:"symbol is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
