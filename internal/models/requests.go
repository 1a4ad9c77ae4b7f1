package models

// RegisterRequest is the registration form payload, bound from either a
// form post or a JSON body.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
