package models

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the signup request body
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the account as returned by the session validation endpoint
type User struct {
	ID       uint   `json:"ID"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ValidateResponse represents the response from the session validation endpoint
type ValidateResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}
