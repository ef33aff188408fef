package dto

// TokenRequest is the body of POST /jwt
type TokenRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the single error envelope of the API
type ErrorResponse struct {
	Message string `json:"message"`
}
