package dto

import "github.com/docuhub/docuhub-api/internal/models"

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	FullName string          `json:"fullName" validate:"required,min=2,max=120"`
	Role     models.UserRole `json:"role" validate:"required"`
}

// UpdateUserRequest carries partial account edits. Nil fields are left
// untouched.
type UpdateUserRequest struct {
	FullName *string          `json:"fullName" validate:"omitempty,min=2,max=120"`
	Role     *models.UserRole `json:"role"`
	Active   *bool            `json:"active"`
}
