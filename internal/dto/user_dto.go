package dto

// RoleUpdateRequest switches the caller's own role between the two closed
// values. An absent role leaves the profile untouched.
type RoleUpdateRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=trainee trainer"`
}
