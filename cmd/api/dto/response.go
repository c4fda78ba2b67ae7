package dto

// ErrorResponseDTO is the shared error response shape.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"invalid_token"`
}

// MessageResponseDTO is the shared simple-message response shape.
type MessageResponseDTO struct {
	Message string `json:"message" example:"result cleared"`
}
