package models

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterResponse mirrors the registration status record. Notice carries the
// "check your inbox" prompt when the verification email went out.
type RegisterResponse struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
	Notice  string `json:"notice,omitempty"`
}

type VerifyResponse struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}
